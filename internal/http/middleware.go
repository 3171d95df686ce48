package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/abdalwely/online-store/internal/identity"
	"github.com/abdalwely/online-store/internal/session"
	"github.com/abdalwely/online-store/internal/tenant"
)

const (
	HeaderCorrelationID = "X-Correlation-Id"
	HeaderVisitorID     = "X-Visitor-Id"
	HeaderIdempotency   = "Idempotency-Key"
)

type ctxKey string

const (
	ctxCorrelationID ctxKey = "correlation_id"
	ctxStore         ctxKey = "store"
)

func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(HeaderCorrelationID)
		if cid == "" {
			cid = uuid.NewString()
		}

		w.Header().Set(HeaderCorrelationID, cid)

		ctx := context.WithValue(r.Context(), ctxCorrelationID, cid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func correlationFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxCorrelationID).(string); ok {
		return v
	}
	return ""
}

func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowOrigins) == 1 && allowOrigins[0] == "*"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if r.Method == http.MethodOptions {
				writeCORSHeaders(w, origin, allowOrigins, allowAll)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			writeCORSHeaders(w, origin, allowOrigins, allowAll)
			next.ServeHTTP(w, r)
		})
	}
}

func writeCORSHeaders(w http.ResponseWriter, origin string, allowOrigins []string, allowAll bool) {
	if origin == "" {
		return
	}
	if !allowAll && !originAllowed(origin, allowOrigins) {
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Vary", "Origin")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language, X-Correlation-Id, X-Visitor-Id, Idempotency-Key")
	w.Header().Set("Access-Control-Expose-Headers", "X-Correlation-Id, X-Visitor-Id")
}

func originAllowed(origin string, allow []string) bool {
	for _, a := range allow {
		if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(origin)) {
			return true
		}
	}
	return false
}

// withSession attaches the request session: the visitor token (issued when
// missing), the correlation id and the actor behind a bearer token.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitor := strings.TrimSpace(r.Header.Get(HeaderVisitorID))
		if visitor == "" {
			visitor = uuid.NewString()
		}
		w.Header().Set(HeaderVisitorID, visitor)

		sess := &session.Session{VisitorID: visitor, CorrelationID: correlationFrom(r.Context())}

		if token, ok := bearerToken(r); ok {
			actor, err := h.identity.Authenticate(r.Context(), token)
			if err != nil {
				h.fail(w, r, err)
				return
			}
			sess.Token = token
			sess.Actor = &actor
		}

		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	v := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(v, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// storefront resolves the store from ?id= (the demo store when absent) and
// rejects inactive stores.
func (h *Handler) storefront(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := h.stores.ForStorefront(r.Context(), r.URL.Query().Get("id"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		sess := session.FromContext(r.Context())
		sess.StoreID = st.ID

		ctx := context.WithValue(r.Context(), ctxStore, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func storeFrom(ctx context.Context) tenant.Store {
	st, _ := ctx.Value(ctxStore).(tenant.Store)
	return st
}

func (h *Handler) requireRole(role session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())
			if !sess.Authenticated() {
				h.fail(w, r, identity.ErrUnauthenticated)
				return
			}
			if sess.Actor.Role != role {
				h.fail(w, r, identity.ErrWrongAccountType)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
