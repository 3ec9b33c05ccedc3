// internal/api/handler/purchase.go
package handler

import (
	"net/http"

	"storefront/internal/api/types"
)

// Checkout records a purchase of the submitted lines.
// POST /api/purchases
func (h *StoreHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req types.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	purchase, err := h.service.Checkout(r.Context(), req.UserID, req.Items, req.Total, req.PointsEarned)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, purchase)
}
