// internal/api/handler/cart.go
package handler

import (
	"net/http"

	"storefront/internal/api/types"
)

// ListGames returns the catalog ordered by title.
// GET /api/games
func (h *StoreHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListCatalog(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, items)
}

// GetCart returns the cart with live catalog prices.
// GET /api/cart/{userID}
func (h *StoreHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	accountID, err := idParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.writeCart(w, r, accountID, http.StatusOK)
}

// ReplaceCart swaps the whole cart and returns the stored result.
// PUT /api/cart/{userID}
func (h *StoreHandler) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	accountID, err := idParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req types.ReplaceCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.ReplaceCart(r.Context(), accountID, req.Lines(accountID)); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.writeCart(w, r, accountID, http.StatusOK)
}

// AddToCart merges one line into the cart.
// POST /api/cart/{userID}/items
func (h *StoreHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	accountID, err := idParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req types.AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.AddToCart(r.Context(), accountID, req.ID, req.Quantity); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.writeCart(w, r, accountID, http.StatusOK)
}

// ClearCart empties the cart.
// DELETE /api/cart/{userID}
func (h *StoreHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	accountID, err := idParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.ClearCart(r.Context(), accountID); err != nil {
		h.respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StoreHandler) writeCart(w http.ResponseWriter, r *http.Request, accountID int64, code int) {
	items, err := h.service.GetCart(r.Context(), accountID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, code, items)
}
