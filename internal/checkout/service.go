// Package checkout turns a shopper's cart into an order.
//
// Stock reservation, coupon redemption, the order insert and the customer
// counters share one database transaction; rolling it back undoes every step
// of a failed attempt. The cart is cleared and order.created is published
// only after the commit.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abdalwely/online-store/internal/cart"
	"github.com/abdalwely/online-store/internal/coupon"
	"github.com/abdalwely/online-store/internal/customer"
	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/pricing"
	"github.com/abdalwely/online-store/internal/session"
	"github.com/abdalwely/online-store/internal/tenant"
)

const defaultPaymentMethod = "cod"

type Carts interface {
	Get(ctx context.Context, sess *session.Session) (cart.Cart, error)
	Discard(ctx context.Context, storeID, owner string) error
}

type Coupons interface {
	Evaluate(ctx context.Context, storeID, code string, subtotal float64, enabled bool) (coupon.Quote, error)
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, o order.Order) error
}

type Request struct {
	Shipping       order.ShippingAddress `json:"shippingAddress"`
	PaymentMethod  string                `json:"paymentMethod"`
	Notes          string                `json:"notes"`
	CouponCode     string                `json:"couponCode"`
	IdempotencyKey string                `json:"-"`
}

type Result struct {
	Order order.Order
	// Replayed is set when the idempotency key matched an existing order.
	Replayed bool
	States   []State
}

type Service struct {
	repo      Repository
	carts     Carts
	coupons   Coupons
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

func NewService(repo Repository, carts Carts, coupons Coupons, publisher Publisher, logger *log.Logger) *Service {
	return &Service{repo: repo, carts: carts, coupons: coupons, publisher: publisher, logger: logger, now: time.Now}
}

// Preview prices the shopper's cart with an optional coupon, without writing anything.
func (s *Service) Preview(ctx context.Context, sess *session.Session, store tenant.Store, code string) (pricing.Breakdown, error) {
	c, err := s.carts.Get(ctx, sess)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	if c.Empty() {
		return pricing.Breakdown{}, ErrEmptyCart
	}
	_, b, err := s.price(ctx, store, c, code)
	return b, err
}

func (s *Service) price(ctx context.Context, store tenant.Store, c cart.Cart, code string) (coupon.Quote, pricing.Breakdown, error) {
	lines := c.Lines()
	var q coupon.Quote
	if strings.TrimSpace(code) != "" {
		var err error
		q, err = s.coupons.Evaluate(ctx, store.ID, code, pricing.Subtotal(lines), store.Settings.EnableCoupons)
		if err != nil {
			return coupon.Quote{}, pricing.Breakdown{}, err
		}
	}
	return q, pricing.Calculate(lines, store.Settings.PricingRules(), q.PricingDiscount()), nil
}

// Submit places the order. Every precondition is checked before the first write.
func (s *Service) Submit(ctx context.Context, sess *session.Session, store tenant.Store, req Request) (Result, error) {
	if !sess.CustomerOfStore() || sess.StoreID != store.ID {
		return Result{}, ErrNotSignedIn
	}
	c, err := s.carts.Get(ctx, sess)
	if err != nil {
		return Result{}, err
	}
	if c.Empty() {
		return Result{}, ErrEmptyCart
	}
	if missing := req.Shipping.Missing(); len(missing) > 0 {
		return Result{}, &MissingFieldsError{Fields: missing}
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = defaultPaymentMethod
	}
	if !store.Settings.AcceptsPayment(method) {
		return Result{}, ErrUnsupportedPayment
	}

	quote, totals, err := s.price(ctx, store, c, req.CouponCode)
	if err != nil {
		return Result{}, err
	}

	o := s.newOrder(sess, store, c, req, method, totals)
	return s.run(ctx, sess, o, c, quote)
}

func (s *Service) newOrder(sess *session.Session, store tenant.Store, c cart.Cart, req Request, method string, totals pricing.Breakdown) order.Order {
	now := s.now().UTC()
	items := make([]order.Item, len(c.Items))
	for i, it := range c.Items {
		items[i] = order.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
		}
	}
	phone := sess.Actor.Phone
	if phone == "" {
		phone = req.Shipping.Phone
	}
	return order.Order{
		ID:             uuid.NewString(),
		StoreID:        store.ID,
		CustomerID:     sess.Actor.AccountID,
		CustomerName:   sess.Actor.Name,
		CustomerEmail:  sess.Actor.Email,
		CustomerPhone:  phone,
		Shipping:       req.Shipping,
		Items:          items,
		Breakdown:      totals,
		PaymentMethod:  method,
		Notes:          strings.TrimSpace(req.Notes),
		Status:         order.StatusPending,
		IdempotencyKey: strings.TrimSpace(req.IdempotencyKey),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *Service) run(ctx context.Context, sess *session.Session, o order.Order, c cart.Cart, quote coupon.Quote) (Result, error) {
	sg := newSaga()

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if o.IdempotencyKey != "" {
		existing, err := tx.FindOrderByIdempotencyKey(ctx, o.StoreID, o.IdempotencyKey)
		if err == nil {
			return Result{Order: existing, Replayed: true, States: sg.trail}, nil
		}
		if !errors.Is(err, order.ErrNotFound) {
			return Result{}, err
		}
	}

	fail := func(err error) (Result, error) {
		sg.fail()
		s.logger.Printf("checkout failed store=%s order=%s trail=%v: %v", o.StoreID, o.ID, sg.trail, err)
		return Result{States: sg.trail}, err
	}

	depleted, err := tx.ReserveStock(ctx, o.StoreID, reservation(o))
	if err != nil {
		return fail(err)
	}
	if len(depleted) > 0 {
		return fail(&InsufficientStockError{Lines: named(depleted, o)})
	}
	if err := sg.advance(StateStockReserved); err != nil {
		return fail(err)
	}

	if quote.Stored {
		if err := tx.RedeemCoupon(ctx, o.StoreID, quote.Code); err != nil {
			return fail(err)
		}
	}
	if err := tx.InsertOrder(ctx, o); err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			return s.replay(ctx, o)
		}
		return fail(err)
	}
	if err := sg.advance(StateOrderCommitted); err != nil {
		return fail(err)
	}

	if err := tx.RecordCustomerOrder(ctx, customer.Customer{
		StoreID:   o.StoreID,
		AccountID: o.CustomerID,
		Name:      o.CustomerName,
		Email:     o.CustomerEmail,
		Phone:     o.CustomerPhone,
	}, o.Total); err != nil {
		return fail(err)
	}
	if err := sg.advance(StateCustomerStatsUpdated); err != nil {
		return fail(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fail(fmt.Errorf("commit: %w", err))
	}
	committed = true
	s.logger.Printf("order placed store=%s order=%s total=%.2f", o.StoreID, o.ID, o.Total)

	if err := s.carts.Discard(ctx, o.StoreID, c.OwnerID); err != nil {
		s.logger.Printf("clear cart after order=%s: %v", o.ID, err)
	} else {
		_ = sg.advance(StateCartCleared)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, o); err != nil {
			s.logger.Printf("publish order.created failed order=%s: %v", o.ID, err)
		}
	}
	return Result{Order: o, States: sg.trail}, nil
}

// replay returns the order a concurrent submission with the same key created.
func (s *Service) replay(ctx context.Context, o order.Order) (Result, error) {
	existing, err := s.repo.FindOrderByIdempotencyKey(ctx, o.StoreID, o.IdempotencyKey)
	if err != nil {
		return Result{}, fmt.Errorf("load submitted order: %w", err)
	}
	return Result{Order: existing, Replayed: true, States: []State{StateInitiated}}, nil
}

func reservation(o order.Order) []Line {
	units := o.Units()
	lines := make([]Line, 0, len(units))
	for id, qty := range units {
		lines = append(lines, Line{ProductID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

func named(depleted []DepletedLine, o order.Order) []DepletedLine {
	names := make(map[string]string, len(o.Items))
	for _, it := range o.Items {
		names[it.ProductID] = it.Name
	}
	out := make([]DepletedLine, len(depleted))
	for i, d := range depleted {
		d.Name = names[d.ProductID]
		out[i] = d
	}
	return out
}
