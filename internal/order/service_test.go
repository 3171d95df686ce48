package order

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdalwely/online-store/internal/session"
)

type fakeRepo struct {
	orders map[string]Order
}

func (f *fakeRepo) Get(ctx context.Context, storeID, id string) (Order, error) {
	o, ok := f.orders[id]
	if !ok || o.StoreID != storeID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (f *fakeRepo) ListByStore(ctx context.Context, storeID string, status Status) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.StoreID == storeID && (status == "" || o.Status == status) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByCustomer(ctx context.Context, storeID, customerID string) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.StoreID == storeID && o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, storeID, id string, next Status) (Order, Status, error) {
	o, err := f.Get(ctx, storeID, id)
	if err != nil {
		return Order{}, "", err
	}
	prev := o.Status
	if prev == next {
		return o, prev, nil
	}
	if !prev.CanTransitionTo(next) {
		return Order{}, prev, &IllegalTransitionError{From: prev, To: next}
	}
	o.Status = next
	f.orders[id] = o
	return o, prev, nil
}

type recordingPublisher struct {
	changes []Status
	err     error
}

func (p *recordingPublisher) PublishStatusChanged(ctx context.Context, o Order, previous Status) error {
	p.changes = append(p.changes, o.Status)
	return p.err
}

func newFixture() (*Service, *fakeRepo, *recordingPublisher) {
	repo := &fakeRepo{orders: map[string]Order{
		"o1": {ID: "o1", StoreID: "s1", CustomerID: "c1", Status: StatusPending},
		"o2": {ID: "o2", StoreID: "s1", CustomerID: "c2", Status: StatusDelivered},
	}}
	pub := &recordingPublisher{}
	return NewService(repo, pub, log.New(io.Discard, "", 0)), repo, pub
}

func trader(storeID string) *session.Session {
	return &session.Session{StoreID: storeID, Actor: &session.Actor{AccountID: "t1", Role: session.RoleTrader, StoreID: storeID}}
}

func shopper(storeID, id string) *session.Session {
	return &session.Session{StoreID: storeID, Actor: &session.Actor{AccountID: id, Role: session.RoleCustomer, StoreID: storeID}}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes on change", func(t *testing.T) {
		svc, _, pub := newFixture()
		o, err := svc.UpdateStatus(ctx, trader("s1"), "s1", "o1", StatusProcessing)
		require.NoError(t, err)
		assert.Equal(t, StatusProcessing, o.Status)
		assert.Equal(t, []Status{StatusProcessing}, pub.changes)
	})

	t.Run("same status is silent", func(t *testing.T) {
		svc, _, pub := newFixture()
		_, err := svc.UpdateStatus(ctx, trader("s1"), "s1", "o1", StatusPending)
		require.NoError(t, err)
		assert.Empty(t, pub.changes)
	})

	t.Run("illegal transition", func(t *testing.T) {
		svc, repo, pub := newFixture()
		_, err := svc.UpdateStatus(ctx, trader("s1"), "s1", "o2", StatusPending)
		var illegal *IllegalTransitionError
		assert.True(t, errors.As(err, &illegal))
		assert.Equal(t, StatusDelivered, repo.orders["o2"].Status)
		assert.Empty(t, pub.changes)
	})

	t.Run("other trader", func(t *testing.T) {
		svc, _, _ := newFixture()
		_, err := svc.UpdateStatus(ctx, trader("s2"), "s1", "o1", StatusShipped)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, _, _ := newFixture()
		_, err := svc.UpdateStatus(ctx, trader("s1"), "s1", "o1", Status("lost"))
		assert.ErrorIs(t, err, ErrUnknownStatus)
	})

	t.Run("publish failure does not fail the update", func(t *testing.T) {
		svc, _, pub := newFixture()
		pub.err = errors.New("broker down")
		_, err := svc.UpdateStatus(ctx, trader("s1"), "s1", "o1", StatusCancelled)
		require.NoError(t, err)
	})
}

func TestCustomerAccess(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newFixture()

	history, err := svc.History(ctx, shopper("s1", "c1"))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "o1", history[0].ID)

	_, err = svc.GetForCustomer(ctx, shopper("s1", "c1"), "o2")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.History(ctx, &session.Session{StoreID: "s1", VisitorID: "v1"})
	assert.ErrorIs(t, err, ErrForbidden)
}
