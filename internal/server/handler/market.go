package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/betledger/internal/market"
)

// MarketCatalog lists the markets a leg may reference.
type MarketCatalog interface {
	List() []market.Market
	Get(key string) (market.Market, error)
}

// MarketHandler serves the static market catalog.
type MarketHandler struct {
	catalog MarketCatalog
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(catalog MarketCatalog, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{catalog: catalog, logger: logHandler(logger, "markets")}
}

type listMarketsResponse struct {
	Markets []market.Market `json:"markets"`
}

// List returns every market.
// GET /api/markets
func (h *MarketHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listMarketsResponse{Markets: h.catalog.List()})
}

// Get returns one market by key.
// GET /api/markets/{key}
func (h *MarketHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalog.Get(pathParam(r, "key"))
	if err != nil {
		writeServiceError(w, r, h.logger, "get market", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
