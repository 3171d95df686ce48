package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abdalwely/online-store/internal/coupon"
	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/product"
	"github.com/abdalwely/online-store/internal/session"
	"github.com/abdalwely/online-store/internal/tenant"
)

// traderStore is the store owned by the signed-in trader.
func traderStore(r *http.Request) string {
	return session.FromContext(r.Context()).Actor.StoreID
}

func (h *Handler) TraderSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.stores.Get(r.Context(), traderStore(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) UpdateTraderSettings(w http.ResponseWriter, r *http.Request) {
	var a tenant.Appearance
	if err := decode(r, &a); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	st, err := h.stores.UpdateAppearance(r.Context(), traderStore(r), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) TraderProducts(w http.ResponseWriter, r *http.Request) {
	f, err := productFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.catalog.ListAll(r.Context(), traderStore(r), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) TraderProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), traderStore(r), chi.URLParam(r, "productID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := decode(r, &p); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	created, err := h.catalog.Create(r.Context(), traderStore(r), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := decode(r, &p); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	updated, err := h.catalog.Update(r.Context(), traderStore(r), chi.URLParam(r, "productID"), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), traderStore(r), chi.URLParam(r, "productID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stock *int `json:"stock"`
	}
	if err := decode(r, &req); err != nil || req.Stock == nil {
		writeError(w, r, http.StatusBadRequest, "stock is required")
		return
	}
	if err := h.catalog.SetStock(r.Context(), traderStore(r), chi.URLParam(r, "productID"), *req.Stock); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TraderOrders(w http.ResponseWriter, r *http.Request) {
	var status order.Status
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" && v != "all" {
		var err error
		if status, err = order.ParseStatus(v); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	orders, err := h.orders.ListForStore(r.Context(), traderStore(r), status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) TraderOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetForStore(r.Context(), traderStore(r), chi.URLParam(r, "orderID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	next, err := order.ParseStatus(req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.orders.UpdateStatus(r.Context(), session.FromContext(r.Context()), traderStore(r), chi.URLParam(r, "orderID"), next)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) TraderCoupons(w http.ResponseWriter, r *http.Request) {
	list, err := h.coupons.List(r.Context(), traderStore(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var c coupon.Coupon
	if err := decode(r, &c); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	created, err := h.coupons.Add(r.Context(), traderStore(r), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), traderStore(r), chi.URLParam(r, "code")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetCouponStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.coupons.SetStatus(r.Context(), traderStore(r), chi.URLParam(r, "code"), req.Status); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TraderCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.customers.List(r.Context(), traderStore(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) TraderCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Get(r.Context(), traderStore(r), chi.URLParam(r, "accountID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) TraderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context(), traderStore(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	a, err := h.assets.Upload(r.Context(), traderStore(r), header.Filename, file)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}
