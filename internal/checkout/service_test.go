package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdalwely/online-store/internal/cart"
	"github.com/abdalwely/online-store/internal/coupon"
	"github.com/abdalwely/online-store/internal/customer"
	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/session"
	"github.com/abdalwely/online-store/internal/tenant"
)

// memDB applies a transaction's writes only on commit.
type memDB struct {
	mu        sync.Mutex
	stock     map[string]int
	orders    map[string]order.Order
	spent     map[string]float64
	redeemed  map[string]int
	begins    int
	commits   int
	rollbacks int

	// hideKeys makes in-transaction lookups miss, as a concurrent submission would.
	hideKeys bool
}

func newMemDB(stock map[string]int) *memDB {
	return &memDB{stock: stock, orders: map[string]order.Order{}, spent: map[string]float64{}, redeemed: map[string]int{}}
}

func (m *memDB) Begin(ctx context.Context) (Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begins++
	return &memTx{db: m, stock: map[string]int{}}, nil
}

func (m *memDB) FindOrderByIdempotencyKey(ctx context.Context, storeID, key string) (order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.StoreID == storeID && o.IdempotencyKey == key {
			return o, nil
		}
	}
	return order.Order{}, order.ErrNotFound
}

func (m *memDB) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type memTx struct {
	db       *memDB
	stock    map[string]int
	order    *order.Order
	customer *customer.Customer
	amount   float64
	coupon   string
}

func (t *memTx) FindOrderByIdempotencyKey(ctx context.Context, storeID, key string) (order.Order, error) {
	if t.db.hideKeys {
		return order.Order{}, order.ErrNotFound
	}
	return t.db.FindOrderByIdempotencyKey(ctx, storeID, key)
}

func (t *memTx) ReserveStock(ctx context.Context, storeID string, lines []Line) ([]DepletedLine, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	var depleted []DepletedLine
	for _, l := range lines {
		if avail := t.db.stock[l.ProductID]; avail < l.Quantity {
			depleted = append(depleted, DepletedLine{ProductID: l.ProductID, Requested: l.Quantity, Available: avail})
		}
	}
	if len(depleted) > 0 {
		return depleted, nil
	}
	for _, l := range lines {
		t.stock[l.ProductID] -= l.Quantity
	}
	return nil, nil
}

func (t *memTx) RedeemCoupon(ctx context.Context, storeID, code string) error {
	t.coupon = code
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, o order.Order) error {
	if o.IdempotencyKey != "" {
		if _, err := t.db.FindOrderByIdempotencyKey(ctx, o.StoreID, o.IdempotencyKey); err == nil {
			return ErrDuplicateSubmission
		}
	}
	t.order = &o
	return nil
}

func (t *memTx) RecordCustomerOrder(ctx context.Context, c customer.Customer, amount float64) error {
	t.customer = &c
	t.amount = amount
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.commits++
	for id, delta := range t.stock {
		t.db.stock[id] += delta
	}
	if t.order != nil {
		t.db.orders[t.order.ID] = *t.order
	}
	if t.customer != nil {
		t.db.spent[t.customer.AccountID] += t.amount
	}
	if t.coupon != "" {
		t.db.redeemed[t.coupon]++
	}
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.rollbacks++
	return nil
}

type memCarts struct {
	carts      map[string]cart.Cart
	discardErr error
}

func (m *memCarts) Get(ctx context.Context, sess *session.Session) (cart.Cart, error) {
	c, ok := m.carts[sess.CartOwner()]
	if !ok {
		return cart.New(sess.StoreID, sess.CartOwner()), nil
	}
	return c, nil
}

func (m *memCarts) Discard(ctx context.Context, storeID, owner string) error {
	if m.discardErr != nil {
		return m.discardErr
	}
	delete(m.carts, owner)
	return nil
}

type noStoredCoupons struct{}

func (noStoredCoupons) Get(ctx context.Context, storeID, code string) (coupon.Coupon, error) {
	return coupon.Coupon{}, coupon.ErrNotFound
}
func (noStoredCoupons) List(ctx context.Context, storeID string) ([]coupon.Coupon, error) {
	return nil, nil
}
func (noStoredCoupons) Create(ctx context.Context, c coupon.Coupon) (bool, error) { return true, nil }
func (noStoredCoupons) Delete(ctx context.Context, storeID, code string) error   { return nil }
func (noStoredCoupons) SetStatus(ctx context.Context, storeID, code, status string) error {
	return nil
}

type recordingPublisher struct {
	created []string
	err     error
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, o order.Order) error {
	p.created = append(p.created, o.ID)
	return p.err
}

type fixture struct {
	svc   *Service
	db    *memDB
	carts *memCarts
	pub   *recordingPublisher
	store tenant.Store
}

func newFixture(stock map[string]int) fixture {
	db := newMemDB(stock)
	carts := &memCarts{carts: map[string]cart.Cart{}}
	pub := &recordingPublisher{}

	store := tenant.DemoStore("demo-store")
	store.Settings.PaymentMethods = []string{"cod"}

	return fixture{
		svc:   NewService(db, carts, coupon.NewService(noStoredCoupons{}), pub, log.New(io.Discard, "", 0)),
		db:    db,
		carts: carts,
		pub:   pub,
		store: store,
	}
}

func shopper() *session.Session {
	return &session.Session{
		StoreID:   "demo-store",
		VisitorID: "v1",
		Actor:     &session.Actor{AccountID: "c1", Name: "Sara", Email: "sara@example.com", Role: session.RoleCustomer, StoreID: "demo-store"},
	}
}

func (f fixture) fill(items ...cart.Item) {
	c := cart.New("demo-store", "c1")
	c.Items = append(c.Items, items...)
	f.carts.carts["c1"] = c
}

var address = order.ShippingAddress{Name: "Sara", Phone: "0500000000", Address: "King Fahd Rd", City: "Riyadh"}

func TestSubmitFreeShipping(t *testing.T) {
	f := newFixture(map[string]int{"a": 5, "b": 5})
	f.fill(cart.Item{ProductID: "a", Name: "A", Price: 120, Quantity: 2}, cart.Item{ProductID: "b", Name: "B", Price: 50, Quantity: 1})

	res, err := f.svc.Submit(context.Background(), shopper(), f.store, Request{Shipping: address})
	require.NoError(t, err)

	o := res.Order
	assert.Equal(t, 290.0, o.Subtotal)
	assert.Equal(t, 0.0, o.ShippingCost)
	assert.Equal(t, 290.0, o.Total)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "cod", o.PaymentMethod)
	assert.Equal(t, "0500000000", o.CustomerPhone)
	assert.Equal(t, []State{StateInitiated, StateStockReserved, StateOrderCommitted, StateCustomerStatsUpdated, StateCartCleared}, res.States)

	assert.Equal(t, 3, f.db.stock["a"])
	assert.Equal(t, 4, f.db.stock["b"])
	assert.Equal(t, 290.0, f.db.spent["c1"])
	assert.NotContains(t, f.carts.carts, "c1")
	assert.Equal(t, []string{o.ID}, f.pub.created)
}

func TestSubmitFlatShipping(t *testing.T) {
	f := newFixture(map[string]int{"a": 5})
	f.fill(cart.Item{ProductID: "a", Name: "A", Price: 80, Quantity: 1})

	res, err := f.svc.Submit(context.Background(), shopper(), f.store, Request{Shipping: address})
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.Order.Subtotal)
	assert.Equal(t, 15.0, res.Order.ShippingCost)
	assert.Equal(t, 95.0, res.Order.Total)
}

func TestSubmitWithCouponAndTax(t *testing.T) {
	f := newFixture(map[string]int{"watch": 5})
	f.store.Settings.TaxEnabled = true
	f.store.Settings.TaxRate = 15
	f.fill(cart.Item{ProductID: "watch", Name: "Smart Watch", Price: 249, Quantity: 1})

	res, err := f.svc.Submit(context.Background(), shopper(), f.store, Request{Shipping: address, CouponCode: "flat50"})
	require.NoError(t, err)
	assert.Equal(t, "FLAT50", res.Order.CouponCode)
	assert.Equal(t, 50.0, res.Order.Discount)
	assert.Equal(t, 29.85, res.Order.TaxAmount)
	assert.Equal(t, 228.85, res.Order.Total)
	// Built-in coupons are not counted.
	assert.Empty(t, f.db.redeemed)
}

func TestSubmitRejectedWithoutWrites(t *testing.T) {
	guest := &session.Session{StoreID: "demo-store", VisitorID: "v1"}

	cases := map[string]struct {
		sess  *session.Session
		fill  bool
		req   Request
		check func(t *testing.T, err error)
	}{
		"empty cart": {shopper(), false, Request{Shipping: address}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrEmptyCart)
		}},
		"guest": {guest, true, Request{Shipping: address}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotSignedIn)
		}},
		"missing shipping": {shopper(), true, Request{Shipping: order.ShippingAddress{Name: "Sara"}}, func(t *testing.T, err error) {
			var missing *MissingFieldsError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, []string{"phone", "address", "city"}, missing.Fields)
		}},
		"payment method": {shopper(), true, Request{Shipping: address, PaymentMethod: "paypal"}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnsupportedPayment)
		}},
		"coupon below minimum": {shopper(), true, Request{Shipping: address, CouponCode: "SAVE20"}, func(t *testing.T, err error) {
			var minErr *coupon.MinimumNotMetError
			assert.True(t, errors.As(err, &minErr))
		}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(map[string]int{"a": 5})
			if tc.fill {
				f.fill(cart.Item{ProductID: "a", Name: "A", Price: 80, Quantity: 1})
			}
			_, err := f.svc.Submit(context.Background(), tc.sess, f.store, tc.req)
			tc.check(t, err)
			assert.Zero(t, f.db.begins)
			assert.Zero(t, f.db.orderCount())
			assert.Equal(t, 5, f.db.stock["a"])
		})
	}
}

func TestSubmitDepletedStockRollsBack(t *testing.T) {
	f := newFixture(map[string]int{"a": 5, "b": 1})
	f.fill(
		cart.Item{ProductID: "a", Name: "A", Price: 10, Quantity: 2},
		cart.Item{ProductID: "b", Name: "B", Price: 10, Quantity: 1, Color: "Red"},
		cart.Item{ProductID: "b", Name: "B", Price: 10, Quantity: 1, Color: "Blue"},
	)

	res, err := f.svc.Submit(context.Background(), shopper(), f.store, Request{Shipping: address})
	var short *InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, []DepletedLine{{ProductID: "b", Name: "B", Requested: 2, Available: 1}}, short.Lines)
	assert.Equal(t, []State{StateInitiated, StateFailed}, res.States)

	assert.Equal(t, 1, f.db.rollbacks)
	assert.Zero(t, f.db.commits)
	assert.Equal(t, 5, f.db.stock["a"])
	assert.Contains(t, f.carts.carts, "c1")
	assert.Empty(t, f.pub.created)
}

func TestSubmitIdempotent(t *testing.T) {
	f := newFixture(map[string]int{"a": 5})
	item := cart.Item{ProductID: "a", Name: "A", Price: 80, Quantity: 2}
	f.fill(item)

	req := Request{Shipping: address, IdempotencyKey: "key-1"}
	first, err := f.svc.Submit(context.Background(), shopper(), f.store, req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	f.fill(item)
	second, err := f.svc.Submit(context.Background(), shopper(), f.store, req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	assert.Equal(t, 1, f.db.orderCount())
	assert.Equal(t, 3, f.db.stock["a"])
	assert.Equal(t, []string{first.Order.ID}, f.pub.created)
}

func TestSubmitConcurrentDuplicateReturnsExisting(t *testing.T) {
	f := newFixture(map[string]int{"a": 5})
	item := cart.Item{ProductID: "a", Name: "A", Price: 80, Quantity: 1}
	f.fill(item)

	req := Request{Shipping: address, IdempotencyKey: "key-2"}
	first, err := f.svc.Submit(context.Background(), shopper(), f.store, req)
	require.NoError(t, err)

	f.db.hideKeys = true
	f.fill(item)
	second, err := f.svc.Submit(context.Background(), shopper(), f.store, req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, 4, f.db.stock["a"])
}

func TestSubmitSurvivesSideEffectFailures(t *testing.T) {
	f := newFixture(map[string]int{"a": 5})
	f.fill(cart.Item{ProductID: "a", Name: "A", Price: 80, Quantity: 1})
	f.carts.discardErr = errors.New("redis down")
	f.pub.err = errors.New("broker down")

	res, err := f.svc.Submit(context.Background(), shopper(), f.store, Request{Shipping: address})
	require.NoError(t, err)
	assert.Equal(t, StateCustomerStatsUpdated, res.States[len(res.States)-1])
	assert.Equal(t, 1, f.db.orderCount())
}

func TestPreview(t *testing.T) {
	f := newFixture(nil)
	f.fill(cart.Item{ProductID: "a", Name: "A", Price: 120, Quantity: 1})

	b, err := f.svc.Preview(context.Background(), shopper(), f.store, "welcome10")
	require.NoError(t, err)
	assert.Equal(t, 12.0, b.Discount)
	assert.Equal(t, 123.0, b.Total)
	assert.Zero(t, f.db.begins)

	f.store.Settings.EnableCoupons = false
	_, err = f.svc.Preview(context.Background(), shopper(), f.store, "welcome10")
	assert.ErrorIs(t, err, coupon.ErrDisabled)
}
