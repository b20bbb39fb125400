package domain

// CartOwner identifies who a cart line belongs to: a registered user or an
// anonymous session key. Exactly one side is set.
type CartOwner struct {
	UserID     string
	SessionKey string
}

func UserOwner(userID string) CartOwner { return CartOwner{UserID: userID} }

func SessionOwner(sessionKey string) CartOwner { return CartOwner{SessionKey: sessionKey} }

func (o CartOwner) Anonymous() bool { return o.UserID == "" }

func (o CartOwner) Valid() bool {
	return (o.UserID != "") != (o.SessionKey != "")
}
