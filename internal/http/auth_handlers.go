package httpapi

import (
	"net/http"

	"github.com/abdalwely/online-store/internal/identity"
	"github.com/abdalwely/online-store/internal/session"
)

func (h *Handler) SignUpTrader(w http.ResponseWriter, r *http.Request) {
	var in identity.TraderSignUp
	if err := decode(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.identity.SignUpTrader(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) SignUpCustomer(w http.ResponseWriter, r *http.Request) {
	var in identity.CustomerSignUp
	if err := decode(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.identity.SignUpCustomer(r.Context(), session.FromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// SignIn opens a session. Customers sign into the store named by ?id=.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var in identity.Credentials
	if err := decode(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	sess := session.FromContext(r.Context())
	if in.Role == session.RoleCustomer {
		st, err := h.stores.ForStorefront(r.Context(), r.URL.Query().Get("id"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		sess.StoreID = st.ID
	}

	res, err := h.identity.SignIn(r.Context(), sess, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess.Authenticated() && sess.Actor.Role == session.RoleCustomer {
		sess.StoreID = sess.Actor.StoreID
	}
	if err := h.identity.SignOut(r.Context(), sess); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		h.fail(w, r, identity.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, sess.Actor)
}
