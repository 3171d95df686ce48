package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abdalwely/online-store/internal/session"
)

type Deps struct {
	Logger         *log.Logger
	ServiceName    string
	AllowOrigins   []string
	RequestTimeout time.Duration
	MaxUploadBytes int64

	Stores    Stores
	Catalog   Catalog
	Carts     Carts
	Wishlists Wishlists
	Coupons   Coupons
	Checkout  Checkout
	Orders    Orders
	Customers Customers
	Identity  Identity
	Platform  Platform
	Stats     Stats
	Assets    Assets
}

type Handler struct {
	logger      *log.Logger
	serviceName string
	maxUpload   int64

	stores    Stores
	catalog   Catalog
	carts     Carts
	wishlists Wishlists
	coupons   Coupons
	checkout  Checkout
	orders    Orders
	customers Customers
	identity  Identity
	platform  Platform
	stats     Stats
	assets    Assets
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		logger:      d.Logger,
		serviceName: d.ServiceName,
		maxUpload:   d.MaxUploadBytes,
		stores:      d.Stores,
		catalog:     d.Catalog,
		carts:       d.Carts,
		wishlists:   d.Wishlists,
		coupons:     d.Coupons,
		checkout:    d.Checkout,
		orders:      d.Orders,
		customers:   d.Customers,
		identity:    d.Identity,
		platform:    d.Platform,
		stats:       d.Stats,
		assets:      d.Assets,
	}
}

func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(CorrelationID)
	r.Use(CORS(d.AllowOrigins))
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", h.Health)
	r.Get("/assets/{assetID}", h.GetAsset)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.withSession)

		r.Route("/storefront", func(r chi.Router) {
			r.Use(h.storefront)

			r.Get("/", h.Storefront)
			r.Get("/products", h.Products)
			r.Get("/products/{productID}", h.Product)
			r.Get("/categories", h.Categories)

			r.Get("/cart", h.GetCart)
			r.Post("/cart", h.AddToCart)
			r.Delete("/cart", h.ClearCart)
			r.Patch("/cart/items/{index}", h.ChangeCartQuantity)
			r.Delete("/cart/items/{index}", h.RemoveCartItem)

			r.Get("/wishlist", h.Wishlist)
			r.Post("/wishlist/{productID}", h.ToggleWishlist)

			r.Post("/coupons/preview", h.PreviewCoupon)
			r.Post("/checkout", h.Checkout)

			r.Get("/orders", h.OrderHistory)
			r.Get("/orders/{orderID}", h.CustomerOrder)
			r.Post("/orders/{orderID}/reorder", h.Reorder)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/traders", h.SignUpTrader)
			r.With(h.storefront).Post("/customers", h.SignUpCustomer)
			r.Post("/sessions", h.SignIn)
			r.Delete("/sessions", h.SignOut)
			r.Get("/me", h.Me)
		})

		r.Route("/trader", func(r chi.Router) {
			r.Use(h.requireRole(session.RoleTrader))

			r.Get("/settings", h.TraderSettings)
			r.Put("/settings", h.UpdateTraderSettings)

			r.Get("/products", h.TraderProducts)
			r.Post("/products", h.CreateProduct)
			r.Get("/products/{productID}", h.TraderProduct)
			r.Put("/products/{productID}", h.UpdateProduct)
			r.Delete("/products/{productID}", h.DeleteProduct)
			r.Post("/products/{productID}/stock", h.SetStock)

			r.Get("/orders", h.TraderOrders)
			r.Get("/orders/{orderID}", h.TraderOrder)
			r.Patch("/orders/{orderID}/status", h.UpdateOrderStatus)

			r.Get("/coupons", h.TraderCoupons)
			r.Post("/coupons", h.CreateCoupon)
			r.Delete("/coupons/{code}", h.DeleteCoupon)
			r.Put("/coupons/{code}/status", h.SetCouponStatus)

			r.Get("/customers", h.TraderCustomers)
			r.Get("/customers/{accountID}", h.TraderCustomer)
			r.Get("/stats", h.TraderStats)
			r.Post("/assets", h.UploadAsset)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireRole(session.RoleAdmin))

			r.Get("/stores", h.AdminStores)
			r.Post("/stores/{storeID}/toggle", h.ToggleStore)

			r.Get("/templates", h.Templates)
			r.Put("/templates/{templateID}", h.SaveTemplate)
			r.Delete("/templates/{templateID}", h.DeleteTemplate)

			r.Get("/plans", h.Plans)
			r.Put("/plans/{planID}", h.SavePlan)
			r.Delete("/plans/{planID}", h.DeletePlan)

			r.Get("/users", h.Users)
		})
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": h.serviceName})
}
