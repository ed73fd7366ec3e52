package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/service"
)

// WagerService defines the methods that the wager handler requires from the
// service layer.
type WagerService interface {
	Quote(ctx context.Context, stake decimal.Decimal, prices []int) (domain.Quote, error)
	Place(ctx context.Context, req service.PlaceRequest) (domain.Wager, error)
	Settle(ctx context.Context, id string, outcomes domain.LegOutcomes) (domain.Settlement, domain.Wager, error)
	Cancel(ctx context.Context, id string) (domain.Wager, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (domain.Wager, error)
	List(ctx context.Context, filter domain.WagerFilter, opts domain.ListOpts) ([]domain.Wager, error)
}

// WagerHandler serves quote and wager lifecycle endpoints.
type WagerHandler struct {
	wagers WagerService
	paging Paging
	logger *slog.Logger
}

// NewWagerHandler creates a WagerHandler.
func NewWagerHandler(wagers WagerService, paging Paging, logger *slog.Logger) *WagerHandler {
	return &WagerHandler{
		wagers: wagers,
		paging: paging.orDefault(),
		logger: logHandler(logger, "wagers"),
	}
}

// Quote prices a slip without recording it.
// POST /api/quotes
func (h *WagerHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation: "+err.Error())
		return
	}

	prices := make([]int, len(req.Legs))
	for i, l := range req.Legs {
		prices[i] = l.OddsAmerican
	}
	q, err := h.wagers.Quote(r.Context(), req.Stake, prices)
	if err != nil {
		writeServiceError(w, r, h.logger, "quote", err)
		return
	}
	writeJSON(w, http.StatusOK, newQuoteResponse(q))
}

// Place records a new pending wager.
// POST /api/wagers
func (h *WagerHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeWagerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation: "+err.Error())
		return
	}

	legs := make([]domain.Leg, len(req.Legs))
	for i, l := range req.Legs {
		legs[i] = l.toDomain()
	}
	wager, err := h.wagers.Place(r.Context(), service.PlaceRequest{
		AccountID: req.AccountID,
		Book:      req.Book,
		Stake:     req.Stake,
		Note:      req.Note,
		Legs:      legs,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, "place wager", err)
		return
	}
	writeJSON(w, http.StatusCreated, newWagerResponse(wager))
}

type listWagersResponse struct {
	Wagers []wagerResponse `json:"wagers"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// List returns wagers, newest first.
// GET /api/wagers?account_id=&status=&since=&until=&limit=50&offset=0
func (h *WagerHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseWagerFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := parseListOpts(r, h.paging)

	list, err := h.wagers.List(r.Context(), filter, opts)
	if err != nil {
		writeServiceError(w, r, h.logger, "list wagers", err)
		return
	}

	out := make([]wagerResponse, len(list))
	for i, wg := range list {
		out[i] = newWagerResponse(wg)
	}
	writeJSON(w, http.StatusOK, listWagersResponse{Wagers: out, Limit: opts.Limit, Offset: opts.Offset})
}

// Get returns one wager.
// GET /api/wagers/{id}
func (h *WagerHandler) Get(w http.ResponseWriter, r *http.Request) {
	wager, err := h.wagers.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, "get wager", err)
		return
	}
	writeJSON(w, http.StatusOK, newWagerResponse(wager))
}

// Settle grades a pending wager from its leg outcomes.
// POST /api/wagers/{id}/settle
func (h *WagerHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation: "+err.Error())
		return
	}

	res, wager, err := h.wagers.Settle(r.Context(), pathParam(r, "id"), req.outcomes())
	if err != nil {
		writeServiceError(w, r, h.logger, "settle wager", err)
		return
	}
	writeJSON(w, http.StatusOK, newSettleResponse(res, wager))
}

// Cancel voids a pending wager.
// POST /api/wagers/{id}/cancel
func (h *WagerHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	wager, err := h.wagers.Cancel(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, "cancel wager", err)
		return
	}
	writeJSON(w, http.StatusOK, newWagerResponse(wager))
}

// Delete removes a pending wager.
// DELETE /api/wagers/{id}
func (h *WagerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := h.wagers.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, "delete wager", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "deleted",
		"wager_id": id,
	})
}

type badQueryError string

func (e badQueryError) Error() string { return string(e) }

// parseWagerFilter reads the list filters shared by the wager list and CSV
// export endpoints.
func parseWagerFilter(r *http.Request) (domain.WagerFilter, error) {
	q := r.URL.Query()
	f := domain.WagerFilter{AccountID: q.Get("account_id")}

	if v := q.Get("status"); v != "" {
		st := domain.WagerStatus(v)
		switch st {
		case domain.WagerStatusPending, domain.WagerStatusWon, domain.WagerStatusLost,
			domain.WagerStatusPush, domain.WagerStatusCancelled:
			f.Status = st
		default:
			return f, badQueryError("unknown status " + v)
		}
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"since", &f.Since}, {"until", &f.Until}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, badQueryError(p.name + " must be RFC3339")
		}
		*p.dst = &t
	}
	return f, nil
}
