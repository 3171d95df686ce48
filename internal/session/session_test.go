package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartOwner(t *testing.T) {
	cases := map[string]struct {
		sess *Session
		want string
	}{
		"guest uses visitor token": {
			sess: &Session{StoreID: "s1", VisitorID: "v1"},
			want: "v1",
		},
		"customer of store uses account": {
			sess: &Session{StoreID: "s1", VisitorID: "v1", Actor: &Actor{AccountID: "a1", Role: RoleCustomer, StoreID: "s1"}},
			want: "a1",
		},
		"customer of another store stays a visitor": {
			sess: &Session{StoreID: "s2", VisitorID: "v1", Actor: &Actor{AccountID: "a1", Role: RoleCustomer, StoreID: "s1"}},
			want: "v1",
		},
		"trader browsing a storefront": {
			sess: &Session{StoreID: "s1", VisitorID: "v9", Actor: &Actor{AccountID: "t1", Role: RoleTrader, StoreID: "s1"}},
			want: "v9",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.sess.CartOwner())
		})
	}
}

func TestRoles(t *testing.T) {
	trader := &Session{Actor: &Actor{Role: RoleTrader, StoreID: "s1"}}
	assert.True(t, trader.TraderOf("s1"))
	assert.False(t, trader.TraderOf("s2"))
	assert.False(t, trader.IsAdmin())

	admin := &Session{Actor: &Actor{Role: RoleAdmin}}
	assert.True(t, admin.IsAdmin())

	var anonymous *Session
	assert.False(t, anonymous.Authenticated())
	assert.False(t, Role("root").Valid())
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	s := &Session{StoreID: "demo-store"}
	ctx := WithSession(context.Background(), s)
	assert.Same(t, s, FromContext(ctx))
}
