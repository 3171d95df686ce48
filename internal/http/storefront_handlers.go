package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abdalwely/online-store/internal/cart"
	"github.com/abdalwely/online-store/internal/checkout"
	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/product"
	"github.com/abdalwely/online-store/internal/session"
	"github.com/abdalwely/online-store/internal/tenant"
	"github.com/abdalwely/online-store/internal/wishlist"
)

// storefrontView is the public face of a store.
type storefrontView struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Template string          `json:"template"`
	Demo     bool            `json:"demo"`
	Settings tenant.Settings `json:"settings"`
}

func (h *Handler) Storefront(w http.ResponseWriter, r *http.Request) {
	st := storeFrom(r.Context())
	writeJSON(w, http.StatusOK, storefrontView{
		ID:       st.ID,
		Name:     st.Name,
		Category: st.Category,
		Template: st.Template,
		Demo:     st.Demo,
		Settings: st.Settings,
	})
}

func productFilter(r *http.Request) (product.Filter, error) {
	q := r.URL.Query()
	f := product.Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("q")),
	}

	var err error
	if f.Sort, err = product.ParseSort(q.Get("sort")); err != nil {
		return product.Filter{}, err
	}
	if f.MinPrice, f.MaxPrice, err = product.ParsePriceRange(q.Get("price")); err != nil {
		return product.Filter{}, err
	}
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		return product.Filter{}, err
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		return product.Filter{}, err
	}
	return f, nil
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, product.ErrInvalidProduct
	}
	return n, nil
}

func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	f, err := productFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.catalog.Browse(r.Context(), storeFrom(r.Context()).ID, f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetVisible(r.Context(), storeFrom(r.Context()).ID, chi.URLParam(r, "productID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.Categories(r.Context(), storeFrom(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, c cart.Cart) {
	writeJSON(w, http.StatusOK, c.View(storeFrom(r.Context()).Settings.PricingRules()))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r, c)
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	c, err := h.carts.AddItem(r.Context(), session.FromContext(r.Context()), req.ProductID, req.Quantity, cart.Variant{Size: req.Size, Color: req.Color})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r, c)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Clear(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r, c)
}

func (h *Handler) ChangeCartQuantity(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid item index")
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	c, err := h.carts.ChangeQuantity(r.Context(), session.FromContext(r.Context()), index, req.Delta)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r, c)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid item index")
		return
	}
	c, err := h.carts.RemoveItem(r.Context(), session.FromContext(r.Context()), index)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r, c)
}

func (h *Handler) Wishlist(w http.ResponseWriter, r *http.Request) {
	if !storeFrom(r.Context()).Settings.EnableWishlist {
		h.fail(w, r, wishlist.ErrDisabled)
		return
	}
	items, err := h.wishlists.Products(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	if !storeFrom(r.Context()).Settings.EnableWishlist {
		h.fail(w, r, wishlist.ErrDisabled)
		return
	}
	productID := chi.URLParam(r, "productID")
	added, err := h.wishlists.Toggle(r.Context(), session.FromContext(r.Context()), productID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"productId": productID, "inWishlist": added})
}

func (h *Handler) PreviewCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	totals, err := h.checkout.Preview(r.Context(), session.FromContext(r.Context()), storeFrom(r.Context()), req.Code)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

type checkoutResponse struct {
	Order  order.Order      `json:"order"`
	States []checkout.State `json:"states,omitempty"`
}

// Checkout submits the cart. A repeated Idempotency-Key returns the order
// created by the first request with 200 instead of 201.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get(HeaderIdempotency))

	res, err := h.checkout.Submit(r.Context(), session.FromContext(r.Context()), storeFrom(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, checkoutResponse{Order: res.Order, States: res.States})
}

func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.History(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) CustomerOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetForCustomer(r.Context(), session.FromContext(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type reorderResponse struct {
	Cart    cart.View      `json:"cart"`
	Skipped []cart.Skipped `json:"skipped"`
}

func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	o, err := h.orders.GetForCustomer(r.Context(), sess, chi.URLParam(r, "orderID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, skipped, err := h.carts.Reorder(r.Context(), sess, o)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if skipped == nil {
		skipped = []cart.Skipped{}
	}
	writeJSON(w, http.StatusOK, reorderResponse{
		Cart:    c.View(storeFrom(r.Context()).Settings.PricingRules()),
		Skipped: skipped,
	})
}
