// Package identity signs traders, customers and the platform admin in and out.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abdalwely/online-store/internal/customer"
	"github.com/abdalwely/online-store/internal/session"
	"github.com/abdalwely/online-store/internal/tenant"
)

const minPasswordLength = 6

type StoreRegistrar interface {
	Register(ctx context.Context, in tenant.NewStore) (tenant.Store, error)
}

type CustomerDirectory interface {
	Register(ctx context.Context, c customer.Customer) error
	Get(ctx context.Context, storeID, accountID string) (customer.Customer, error)
}

// Carts is the part of the cart service that follows a shopper across sign-in and sign-out.
type Carts interface {
	Adopt(ctx context.Context, storeID, visitorID, customerID string) error
	Discard(ctx context.Context, storeID, owner string) error
}

type Service struct {
	accounts  AccountRepository
	sessions  *SessionStore
	stores    StoreRegistrar
	customers CustomerDirectory
	carts     Carts
	logger    *log.Logger

	// bcrypt cost, lowered in tests.
	cost int
}

func NewService(accounts AccountRepository, sessions *SessionStore, stores StoreRegistrar, customers CustomerDirectory, carts Carts, logger *log.Logger) *Service {
	return &Service{
		accounts:  accounts,
		sessions:  sessions,
		stores:    stores,
		customers: customers,
		carts:     carts,
		logger:    logger,
		cost:      bcrypt.DefaultCost,
	}
}

// Result is a successful sign-up or sign-in.
type Result struct {
	Token string        `json:"token"`
	Actor session.Actor `json:"user"`
}

type TraderSignUp struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	StoreName     string `json:"storeName"`
	StoreCategory string `json:"storeCategory"`
}

type CustomerSignUp struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type Credentials struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Role     session.Role `json:"role"`
}

func (s *Service) SignUpTrader(ctx context.Context, in TraderSignUp) (Result, error) {
	if blank(in.Name, in.StoreName, in.StoreCategory) {
		return Result{}, ErrMissingField
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Result{}, err
	}
	if err := checkPassword(in.Password); err != nil {
		return Result{}, err
	}
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return Result{}, ErrEmailInUse
	} else if !errors.Is(err, ErrUserNotFound) {
		return Result{}, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return Result{}, err
	}

	acc := Account{ID: uuid.NewString(), Email: email, PasswordHash: hash, Role: session.RoleTrader, Name: strings.TrimSpace(in.Name)}
	store, err := s.stores.Register(ctx, tenant.NewStore{
		Name:       strings.TrimSpace(in.StoreName),
		Category:   strings.TrimSpace(in.StoreCategory),
		OwnerID:    acc.ID,
		OwnerName:  acc.Name,
		OwnerEmail: email,
	})
	if err != nil {
		return Result{}, fmt.Errorf("register store: %w", err)
	}
	acc.StoreID = store.ID

	created, err := s.accounts.Create(ctx, acc)
	if err != nil {
		return Result{}, err
	}
	if !created {
		return Result{}, ErrEmailInUse
	}
	s.logger.Printf("trader signed up account=%s store=%s", acc.ID, store.ID)

	return s.open(ctx, actorOf(acc, store.ID))
}

// SignUpCustomer registers the shopper in the active store. An existing
// customer account joins the store when the password matches.
func (s *Service) SignUpCustomer(ctx context.Context, sess *session.Session, in CustomerSignUp) (Result, error) {
	if blank(in.Name) {
		return Result{}, ErrMissingField
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Result{}, err
	}
	if err := checkPassword(in.Password); err != nil {
		return Result{}, err
	}

	acc, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if acc.Role != session.RoleCustomer || bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(in.Password)) != nil {
			return Result{}, ErrEmailInUse
		}
	case errors.Is(err, ErrUserNotFound):
		hash, err := s.hash(in.Password)
		if err != nil {
			return Result{}, err
		}
		acc = Account{ID: uuid.NewString(), Email: email, PasswordHash: hash, Role: session.RoleCustomer, Name: strings.TrimSpace(in.Name), StoreID: sess.StoreID}
		created, err := s.accounts.Create(ctx, acc)
		if err != nil {
			return Result{}, err
		}
		if !created {
			return Result{}, ErrEmailInUse
		}
	default:
		return Result{}, err
	}

	if err := s.customers.Register(ctx, customer.Customer{
		StoreID:   sess.StoreID,
		AccountID: acc.ID,
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
	}); err != nil {
		return Result{}, fmt.Errorf("register customer: %w", err)
	}
	s.logger.Printf("customer signed up account=%s store=%s", acc.ID, sess.StoreID)

	actor := actorOf(acc, sess.StoreID)
	actor.Phone = strings.TrimSpace(in.Phone)
	return s.openShopper(ctx, sess, actor)
}

func (s *Service) SignIn(ctx context.Context, sess *session.Session, in Credentials) (Result, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Result{}, err
	}
	if in.Password == "" {
		return Result{}, ErrMissingField
	}
	if !in.Role.Valid() {
		return Result{}, ErrWrongAccountType
	}

	blocked, err := s.sessions.Blocked(ctx, email)
	if err != nil {
		return Result{}, err
	}
	if blocked {
		return Result{}, ErrTooManyRequests
	}

	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return Result{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(in.Password)) != nil {
		exceeded, err := s.sessions.RecordFailure(ctx, email)
		if err != nil {
			return Result{}, err
		}
		if exceeded {
			s.logger.Printf("sign-in throttled email=%s", email)
			return Result{}, ErrTooManyRequests
		}
		return Result{}, ErrWrongPassword
	}
	if acc.Role != in.Role {
		return Result{}, ErrWrongAccountType
	}
	if err := s.sessions.ResetFailures(ctx, email); err != nil {
		s.logger.Printf("reset sign-in failures email=%s: %v", email, err)
	}

	switch acc.Role {
	case session.RoleCustomer:
		c, err := s.customers.Get(ctx, sess.StoreID, acc.ID)
		if errors.Is(err, customer.ErrNotFound) {
			return Result{}, ErrNotRegisteredInStore
		}
		if err != nil {
			return Result{}, err
		}
		actor := actorOf(acc, sess.StoreID)
		actor.Phone = c.Phone
		return s.openShopper(ctx, sess, actor)
	default:
		return s.open(ctx, actorOf(acc, acc.StoreID))
	}
}

// SignOut drops the bearer session and the shopper's cart.
func (s *Service) SignOut(ctx context.Context, sess *session.Session) error {
	if !sess.Authenticated() || sess.Token == "" {
		return ErrUnauthenticated
	}
	if sess.CustomerOfStore() {
		if err := s.carts.Discard(ctx, sess.StoreID, sess.Actor.AccountID); err != nil {
			s.logger.Printf("discard cart on sign-out account=%s: %v", sess.Actor.AccountID, err)
		}
	}
	return s.sessions.Delete(ctx, sess.Token)
}

// Authenticate resolves a bearer token to its actor.
func (s *Service) Authenticate(ctx context.Context, token string) (session.Actor, error) {
	if token == "" {
		return session.Actor{}, ErrUnauthenticated
	}
	return s.sessions.Lookup(ctx, token)
}

// BootstrapAdmin creates the platform operator account if it does not exist yet.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := checkPassword(password); err != nil {
		return err
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	created, err := s.accounts.Create(ctx, Account{ID: uuid.NewString(), Email: email, PasswordHash: hash, Role: session.RoleAdmin, Name: "Platform Admin"})
	if err != nil {
		return err
	}
	if created {
		s.logger.Printf("admin account bootstrapped email=%s", email)
	}
	return nil
}

func (s *Service) Users(ctx context.Context) ([]Account, error) {
	return s.accounts.List(ctx)
}

func (s *Service) openShopper(ctx context.Context, sess *session.Session, actor session.Actor) (Result, error) {
	if err := s.carts.Adopt(ctx, sess.StoreID, sess.VisitorID, actor.AccountID); err != nil {
		s.logger.Printf("adopt guest cart visitor=%s account=%s: %v", sess.VisitorID, actor.AccountID, err)
	}
	return s.open(ctx, actor)
}

func (s *Service) open(ctx context.Context, actor session.Actor) (Result, error) {
	token, err := s.sessions.Create(ctx, actor)
	if err != nil {
		return Result{}, err
	}
	return Result{Token: token, Actor: actor}, nil
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func actorOf(a Account, storeID string) session.Actor {
	return session.Actor{AccountID: a.ID, Email: a.Email, Name: a.Name, Role: a.Role, StoreID: storeID}
}

func normalizeEmail(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "", ErrMissingField
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return "", ErrInvalidEmail
	}
	return v, nil
}

func checkPassword(p string) error {
	if p == "" {
		return ErrMissingField
	}
	if len([]rune(p)) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
