package httpapi

import (
	"context"
	"io"

	"github.com/abdalwely/online-store/internal/analytics"
	"github.com/abdalwely/online-store/internal/assets"
	"github.com/abdalwely/online-store/internal/cart"
	"github.com/abdalwely/online-store/internal/checkout"
	"github.com/abdalwely/online-store/internal/coupon"
	"github.com/abdalwely/online-store/internal/customer"
	"github.com/abdalwely/online-store/internal/identity"
	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/platform"
	"github.com/abdalwely/online-store/internal/pricing"
	"github.com/abdalwely/online-store/internal/product"
	"github.com/abdalwely/online-store/internal/session"
	"github.com/abdalwely/online-store/internal/tenant"
)

type Stores interface {
	ForStorefront(ctx context.Context, id string) (tenant.Store, error)
	Get(ctx context.Context, id string) (tenant.Store, error)
	List(ctx context.Context) ([]tenant.Store, error)
	ToggleStatus(ctx context.Context, id string) (tenant.Store, error)
	UpdateAppearance(ctx context.Context, id string, a tenant.Appearance) (tenant.Store, error)
}

type Catalog interface {
	Browse(ctx context.Context, storeID string, f product.Filter) ([]product.Product, error)
	ListAll(ctx context.Context, storeID string, f product.Filter) ([]product.Product, error)
	Get(ctx context.Context, storeID, id string) (product.Product, error)
	GetVisible(ctx context.Context, storeID, id string) (product.Product, error)
	Categories(ctx context.Context, storeID string) ([]product.Category, error)
	Create(ctx context.Context, storeID string, p product.Product) (product.Product, error)
	Update(ctx context.Context, storeID, id string, p product.Product) (product.Product, error)
	Delete(ctx context.Context, storeID, id string) error
	SetStock(ctx context.Context, storeID, id string, stock int) error
}

type Carts interface {
	Get(ctx context.Context, sess *session.Session) (cart.Cart, error)
	AddItem(ctx context.Context, sess *session.Session, productID string, quantity int, v cart.Variant) (cart.Cart, error)
	ChangeQuantity(ctx context.Context, sess *session.Session, index, delta int) (cart.Cart, error)
	RemoveItem(ctx context.Context, sess *session.Session, index int) (cart.Cart, error)
	Clear(ctx context.Context, sess *session.Session) (cart.Cart, error)
	Reorder(ctx context.Context, sess *session.Session, o order.Order) (cart.Cart, []cart.Skipped, error)
}

type Wishlists interface {
	Toggle(ctx context.Context, sess *session.Session, productID string) (bool, error)
	Products(ctx context.Context, sess *session.Session) ([]product.Product, error)
}

type Coupons interface {
	List(ctx context.Context, storeID string) ([]coupon.Coupon, error)
	Add(ctx context.Context, storeID string, c coupon.Coupon) (coupon.Coupon, error)
	Delete(ctx context.Context, storeID, code string) error
	SetStatus(ctx context.Context, storeID, code, status string) error
}

type Checkout interface {
	Preview(ctx context.Context, sess *session.Session, store tenant.Store, code string) (pricing.Breakdown, error)
	Submit(ctx context.Context, sess *session.Session, store tenant.Store, req checkout.Request) (checkout.Result, error)
}

type Orders interface {
	ListForStore(ctx context.Context, storeID string, status order.Status) ([]order.Order, error)
	GetForStore(ctx context.Context, storeID, id string) (order.Order, error)
	History(ctx context.Context, sess *session.Session) ([]order.Order, error)
	GetForCustomer(ctx context.Context, sess *session.Session, id string) (order.Order, error)
	UpdateStatus(ctx context.Context, sess *session.Session, storeID, id string, next order.Status) (order.Order, error)
}

type Customers interface {
	List(ctx context.Context, storeID string) ([]customer.Customer, error)
	Get(ctx context.Context, storeID, accountID string) (customer.Customer, error)
}

type Identity interface {
	SignUpTrader(ctx context.Context, in identity.TraderSignUp) (identity.Result, error)
	SignUpCustomer(ctx context.Context, sess *session.Session, in identity.CustomerSignUp) (identity.Result, error)
	SignIn(ctx context.Context, sess *session.Session, in identity.Credentials) (identity.Result, error)
	SignOut(ctx context.Context, sess *session.Session) error
	Authenticate(ctx context.Context, token string) (session.Actor, error)
	Users(ctx context.Context) ([]identity.Account, error)
}

type Platform interface {
	Templates(ctx context.Context) ([]platform.Template, error)
	Plans(ctx context.Context) ([]platform.Plan, error)
	SaveTemplate(ctx context.Context, t platform.Template) error
	DeleteTemplate(ctx context.Context, id string) error
	SavePlan(ctx context.Context, p platform.Plan) error
	DeletePlan(ctx context.Context, id string) error
}

type Stats interface {
	Stats(ctx context.Context, storeID string) (analytics.Stats, error)
}

type Assets interface {
	Upload(ctx context.Context, storeID, filename string, r io.Reader) (assets.Asset, error)
	Open(ctx context.Context, id string) (assets.Blob, error)
}
