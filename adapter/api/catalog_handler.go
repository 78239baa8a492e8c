package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Gzeu/tarot-reading-app/internal/deck/catalog"
)

// CatalogHandler serves the card and spread catalogs.
type CatalogHandler struct {
	logger *slog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{logger: logger}
}

// ListCards handles GET /api/v1/cards
func (h *CatalogHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := catalog.ListCards()
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

// GetCard handles GET /api/v1/cards/{cardID}
func (h *CatalogHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.Atoi(r.PathValue("cardID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "Invalid card ID")
		return
	}

	card, err := catalog.GetCard(cardID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// ListSpreads handles GET /api/v1/spreads
func (h *CatalogHandler) ListSpreads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"spreads": catalog.ListSpreads()})
}
