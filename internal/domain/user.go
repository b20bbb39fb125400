package domain

type User struct {
	ID          string `db:"id"`
	Username    string `db:"username"`
	Email       string `db:"email"`
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	PhoneNumber string `db:"phone_number"`
	Hash        string `db:"password_hash"`
	Role        string `db:"role"`
}
