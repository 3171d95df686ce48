package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abdalwely/online-store/internal/platform"
)

func (h *Handler) AdminStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.stores.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

func (h *Handler) ToggleStore(w http.ResponseWriter, r *http.Request) {
	st, err := h.stores.ToggleStatus(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	list, err := h.platform.Templates(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var t platform.Template
	if err := decode(r, &t); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	t.ID = chi.URLParam(r, "templateID")
	if err := h.platform.SaveTemplate(r.Context(), t); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.platform.DeleteTemplate(r.Context(), chi.URLParam(r, "templateID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	list, err := h.platform.Plans(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) SavePlan(w http.ResponseWriter, r *http.Request) {
	var p platform.Plan
	if err := decode(r, &p); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	p.ID = chi.URLParam(r, "planID")
	if err := h.platform.SavePlan(r.Context(), p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.platform.DeletePlan(r.Context(), chi.URLParam(r, "planID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.identity.Users(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
