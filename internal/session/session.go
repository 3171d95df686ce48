// Package session carries the per-request shopping context: the active store,
// the signed-in actor and the anonymous visitor token.
package session

import (
	"context"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTrader   Role = "trader"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrader, RoleCustomer:
		return true
	}
	return false
}

// Actor is an authenticated account.
type Actor struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Role      Role   `json:"role"`
	// StoreID is the trader's own store, or the store a customer signed into.
	StoreID string `json:"storeId,omitempty"`
}

type Session struct {
	StoreID       string
	VisitorID     string
	Token         string
	CorrelationID string
	Actor         *Actor
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Actor != nil
}

// CustomerOfStore reports whether the session belongs to a customer signed into the active store.
func (s *Session) CustomerOfStore() bool {
	return s.Authenticated() && s.Actor.Role == RoleCustomer && s.Actor.StoreID == s.StoreID
}

// TraderOf reports whether the actor owns storeID.
func (s *Session) TraderOf(storeID string) bool {
	return s.Authenticated() && s.Actor.Role == RoleTrader && s.Actor.StoreID == storeID
}

func (s *Session) IsAdmin() bool {
	return s.Authenticated() && s.Actor.Role == RoleAdmin
}

// CartOwner returns the key under which carts and wishlists are kept:
// the customer's account once signed into the store, the visitor token otherwise.
func (s *Session) CartOwner() string {
	if s.CustomerOfStore() {
		return s.Actor.AccountID
	}
	return s.VisitorID
}

type ctxKey string

const ctxSession ctxKey = "session"

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxSession, s)
}

// FromContext returns the request session. It never returns nil.
func FromContext(ctx context.Context) *Session {
	if v, ok := ctx.Value(ctxSession).(*Session); ok && v != nil {
		return v
	}
	return &Session{}
}
