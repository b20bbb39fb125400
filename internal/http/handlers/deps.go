package handlers

import (
	"storefront/internal/config"
	"storefront/internal/payments"
	"storefront/internal/repos"
	"storefront/internal/services"

	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
)

type Deps struct {
	CatalogHandler *CatalogHandler
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	ProfileHandler *ProfileHandler
	AdminHandler   *AdminHandler
	WebhookHandler *WebhookHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, views *html.Engine, auth *services.AuthService, gw payments.Gateway) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	checkoutSvc := services.NewCheckoutService(cartRepo, orderRepo, gw, cfg.Domain, cfg.Currency)

	return &Deps{
		CatalogHandler: &CatalogHandler{Catalog: catalogSvc},
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		CartHandler:    &CartHandler{Cart: cartSvc, Views: views},
		OrderHandler:   &OrderHandler{Cart: cartSvc, Checkout: checkoutSvc, Orders: orderRepo, Auth: auth},
		ProfileHandler: &ProfileHandler{Auth: auth, Orders: orderRepo},
		AdminHandler:   &AdminHandler{Orders: orderRepo, Prods: prodRepo},
		WebhookHandler: &WebhookHandler{Orders: orderRepo},
	}
}
