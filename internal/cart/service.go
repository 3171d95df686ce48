package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/product"
	"github.com/abdalwely/online-store/internal/session"
)

var ErrReorderNotAllowed = errors.New("only delivered orders can be reordered")

// Catalog reads the product snapshot used for stock checks.
type Catalog interface {
	Get(ctx context.Context, storeID, id string) (product.Product, error)
}

type Service struct {
	store   Store
	catalog Catalog
	logger  *log.Logger
	now     func() time.Time

	loads singleflight.Group
}

func NewService(store Store, catalog Catalog, logger *log.Logger) *Service {
	return &Service{store: store, catalog: catalog, logger: logger, now: time.Now}
}

func (s *Service) Get(ctx context.Context, sess *session.Session) (Cart, error) {
	owner := sess.CartOwner()
	if owner == "" {
		return Cart{}, ErrNoOwner
	}
	return s.load(ctx, sess.StoreID, owner)
}

func (s *Service) load(ctx context.Context, storeID, owner string) (Cart, error) {
	v, err, _ := s.loads.Do(storeID+"/"+owner, func() (any, error) {
		return s.store.Load(ctx, storeID, owner)
	})
	if err != nil {
		return Cart{}, err
	}
	return v.(Cart).clone(), nil
}

// mutate loads the cart, applies fn and persists the result only when fn succeeds.
func (s *Service) mutate(ctx context.Context, sess *session.Session, fn func(c *Cart) error) (Cart, error) {
	c, err := s.Get(ctx, sess)
	if err != nil {
		return Cart{}, err
	}
	if err := fn(&c); err != nil {
		return Cart{}, err
	}
	c.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *Service) AddItem(ctx context.Context, sess *session.Session, productID string, quantity int, v Variant) (Cart, error) {
	p, err := s.snapshot(ctx, sess.StoreID, productID)
	if err != nil {
		return Cart{}, err
	}
	return s.mutate(ctx, sess, func(c *Cart) error {
		return c.Add(p, quantity, v)
	})
}

func (s *Service) ChangeQuantity(ctx context.Context, sess *session.Session, index, delta int) (Cart, error) {
	return s.mutate(ctx, sess, func(c *Cart) error {
		if index < 0 || index >= len(c.Items) {
			return ErrItemNotFound
		}
		stock := 0
		if delta > 0 {
			p, err := s.snapshot(ctx, sess.StoreID, c.Items[index].ProductID)
			if err != nil {
				return err
			}
			stock = p.Stock
		}
		return c.ChangeQuantity(index, delta, stock)
	})
}

func (s *Service) RemoveItem(ctx context.Context, sess *session.Session, index int) (Cart, error) {
	return s.mutate(ctx, sess, func(c *Cart) error {
		return c.Remove(index)
	})
}

func (s *Service) Clear(ctx context.Context, sess *session.Session) (Cart, error) {
	return s.mutate(ctx, sess, func(c *Cart) error {
		c.Clear()
		return nil
	})
}

// Discard drops a cart outright, used after checkout and on sign-out.
func (s *Service) Discard(ctx context.Context, storeID, owner string) error {
	if owner == "" {
		return ErrNoOwner
	}
	return s.store.Delete(ctx, storeID, owner)
}

// Adopt moves the visitor's cart into the customer's cart after sign-in.
func (s *Service) Adopt(ctx context.Context, storeID, visitorID, customerID string) error {
	if visitorID == "" || customerID == "" || visitorID == customerID {
		return nil
	}
	guest, err := s.store.Load(ctx, storeID, visitorID)
	if err != nil {
		return err
	}
	if guest.Empty() {
		return nil
	}
	c, err := s.store.Load(ctx, storeID, customerID)
	if err != nil {
		return err
	}
	c.merge(guest)
	c.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, c); err != nil {
		return err
	}
	s.logger.Printf("cart adopted store=%s visitor=%s customer=%s lines=%d", storeID, visitorID, customerID, len(guest.Items))
	return s.store.Delete(ctx, storeID, visitorID)
}

// Skipped is an order line that could not be put back into the cart.
type Skipped struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

// Reorder adds the lines of a delivered order back into the cart with current product data.
func (s *Service) Reorder(ctx context.Context, sess *session.Session, o order.Order) (Cart, []Skipped, error) {
	if o.Status != order.StatusDelivered {
		return Cart{}, nil, ErrReorderNotAllowed
	}

	var skipped []Skipped
	c, err := s.mutate(ctx, sess, func(c *Cart) error {
		for _, it := range o.Items {
			p, err := s.catalog.Get(ctx, sess.StoreID, it.ProductID)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					skipped = append(skipped, Skipped{ProductID: it.ProductID, Name: it.Name, Reason: ErrProductUnavailable.Error()})
					continue
				}
				return err
			}
			if err := c.Add(p, it.Quantity, Variant{Size: it.Size, Color: it.Color}); err != nil {
				skipped = append(skipped, Skipped{ProductID: it.ProductID, Name: it.Name, Reason: err.Error()})
			}
		}
		return nil
	})
	if err != nil {
		return Cart{}, nil, err
	}
	return c, skipped, nil
}

func (s *Service) snapshot(ctx context.Context, storeID, productID string) (product.Product, error) {
	p, err := s.catalog.Get(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return product.Product{}, ErrProductUnavailable
		}
		return product.Product{}, err
	}
	return p, nil
}
