package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{domain.ErrAlreadySettled, http.StatusConflict},
		{domain.ErrLockHeld, http.StatusConflict},
		{domain.ErrInvalidOdds, http.StatusBadRequest},
		{domain.ErrEmptyLegs, http.StatusBadRequest},
		{domain.ErrIncompleteLeg, http.StatusBadRequest},
		{domain.ErrIncompleteSettlement, http.StatusBadRequest},
		{domain.ErrInvalidStake, http.StatusBadRequest},
		{domain.ErrTooManyLegs, http.StatusBadRequest},
		{service.ErrExportStorageDisabled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("wager_service: op: %w", tt.err)
			assert.Equal(t, tt.want, statusFor(wrapped))
		})
	}
}

func TestParseListOpts(t *testing.T) {
	p := Paging{Default: 20, Max: 100}

	opts := parseListOpts(httptest.NewRequest(http.MethodGet, "/x", nil), p)
	assert.Equal(t, domain.ListOpts{Limit: 20}, opts)

	opts = parseListOpts(httptest.NewRequest(http.MethodGet, "/x?limit=1000&offset=30", nil), p)
	assert.Equal(t, domain.ListOpts{Limit: 100, Offset: 30}, opts)

	opts = parseListOpts(httptest.NewRequest(http.MethodGet, "/x?limit=-4&offset=-1", nil), Paging{})
	assert.Equal(t, domain.ListOpts{Limit: DefaultPaging.Default}, opts)
}

func TestParseWagerFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?account_id=a&status=won&since=2026-01-02T00:00:00Z", nil)
	f, err := parseWagerFilter(r)
	assert.NoError(t, err)
	assert.Equal(t, "a", f.AccountID)
	assert.Equal(t, domain.WagerStatusWon, f.Status)
	if assert.NotNil(t, f.Since) {
		assert.Equal(t, 2026, f.Since.Year())
	}
	assert.Nil(t, f.Until)

	_, err = parseWagerFilter(httptest.NewRequest(http.MethodGet, "/x?until=yesterday", nil))
	assert.Error(t, err)
}

func TestSettleRequestValidation(t *testing.T) {
	ok := settleRequest{LegOutcomes: map[string]string{"l1": "won", "l2": "push"}}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, domain.LegStatusPush, ok.outcomes()["l2"])

	bad := settleRequest{LegOutcomes: map[string]string{"l1": "void"}}
	assert.Error(t, bad.Validate())

	empty := settleRequest{}
	assert.Error(t, empty.Validate())
}
