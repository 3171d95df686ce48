package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abdalwely/online-store/internal/assets"
	"github.com/abdalwely/online-store/internal/cart"
	"github.com/abdalwely/online-store/internal/checkout"
	"github.com/abdalwely/online-store/internal/coupon"
	"github.com/abdalwely/online-store/internal/customer"
	"github.com/abdalwely/online-store/internal/identity"
	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/platform"
	"github.com/abdalwely/online-store/internal/product"
	"github.com/abdalwely/online-store/internal/tenant"
	"github.com/abdalwely/online-store/internal/wishlist"
)

type errorResponse struct {
	Error         string                  `json:"error"`
	CorrelationID string                  `json:"correlationId,omitempty"`
	Fields        []string                `json:"fields,omitempty"`
	Lines         []checkout.DepletedLine `json:"lines,omitempty"`
	Available     *int                    `json:"available,omitempty"`
}

var errorStatus = []struct {
	err    error
	status int
}{
	{identity.ErrUserNotFound, http.StatusUnauthorized},
	{identity.ErrWrongPassword, http.StatusUnauthorized},
	{identity.ErrUnauthenticated, http.StatusUnauthorized},
	{identity.ErrEmailInUse, http.StatusConflict},
	{identity.ErrInvalidEmail, http.StatusBadRequest},
	{identity.ErrWeakPassword, http.StatusBadRequest},
	{identity.ErrMissingField, http.StatusBadRequest},
	{identity.ErrTooManyRequests, http.StatusTooManyRequests},
	{identity.ErrWrongAccountType, http.StatusForbidden},
	{identity.ErrNotRegisteredInStore, http.StatusForbidden},

	{tenant.ErrNotFound, http.StatusNotFound},
	{tenant.ErrInactive, http.StatusForbidden},
	{tenant.ErrInvalidStore, http.StatusBadRequest},
	{tenant.ErrAlreadyExists, http.StatusConflict},

	{platform.ErrNotFound, http.StatusNotFound},
	{platform.ErrInvalid, http.StatusBadRequest},

	{product.ErrNotFound, http.StatusNotFound},
	{product.ErrInvalidProduct, http.StatusBadRequest},

	{cart.ErrItemNotFound, http.StatusNotFound},
	{cart.ErrInvalidQuantity, http.StatusBadRequest},
	{cart.ErrInvalidVariant, http.StatusBadRequest},
	{cart.ErrNoOwner, http.StatusBadRequest},
	{cart.ErrOutOfStock, http.StatusConflict},
	{cart.ErrProductUnavailable, http.StatusConflict},
	{cart.ErrReorderNotAllowed, http.StatusConflict},

	{wishlist.ErrNoOwner, http.StatusBadRequest},
	{wishlist.ErrDisabled, http.StatusForbidden},

	{coupon.ErrNotFound, http.StatusNotFound},
	{coupon.ErrDisabled, http.StatusForbidden},
	{coupon.ErrInactive, http.StatusBadRequest},
	{coupon.ErrInvalidCoupon, http.StatusBadRequest},
	{coupon.ErrExhausted, http.StatusConflict},
	{coupon.ErrDuplicate, http.StatusConflict},

	{order.ErrNotFound, http.StatusNotFound},
	{order.ErrForbidden, http.StatusForbidden},
	{order.ErrUnknownStatus, http.StatusBadRequest},

	{customer.ErrNotFound, http.StatusNotFound},

	{checkout.ErrEmptyCart, http.StatusBadRequest},
	{checkout.ErrNotSignedIn, http.StatusUnauthorized},
	{checkout.ErrUnsupportedPayment, http.StatusBadRequest},
	{checkout.ErrDuplicateSubmission, http.StatusConflict},

	{assets.ErrNotFound, http.StatusNotFound},
	{assets.ErrNotImage, http.StatusUnsupportedMediaType},
	{assets.ErrEmptyUpload, http.StatusBadRequest},
	{assets.ErrTooLarge, http.StatusRequestEntityTooLarge},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, CorrelationID: correlationFrom(r.Context())})
}

// fail maps a domain error to its HTTP status. Unknown errors are logged and
// reported as a generic 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error(), CorrelationID: correlationFrom(r.Context())}

	var (
		stockLimit *cart.StockLimitError
		depleted   *checkout.InsufficientStockError
		missing    *checkout.MissingFieldsError
		illegal    *order.IllegalTransitionError
		minimum    *coupon.MinimumNotMetError
	)
	switch {
	case errors.As(err, &stockLimit):
		resp.Available = &stockLimit.Available
		writeJSON(w, http.StatusConflict, resp)
		return
	case errors.As(err, &depleted):
		resp.Lines = depleted.Lines
		writeJSON(w, http.StatusConflict, resp)
		return
	case errors.As(err, &missing):
		resp.Fields = missing.Fields
		writeJSON(w, http.StatusBadRequest, resp)
		return
	case errors.As(err, &illegal):
		writeJSON(w, http.StatusConflict, resp)
		return
	case errors.As(err, &minimum):
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	if msg, ok := identity.Message(err, r.Header.Get("Accept-Language")); ok {
		resp.Error = msg
	}
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			writeJSON(w, m.status, resp)
			return
		}
	}

	h.logger.Printf("request failed method=%s path=%s correlation=%s err=%v", r.Method, r.URL.Path, resp.CorrelationID, err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
