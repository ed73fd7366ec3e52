package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
)

// ExportService defines the methods that the export handler requires from
// the service layer.
type ExportService interface {
	WriteCSV(ctx context.Context, w io.Writer, filter domain.WagerFilter) (int, error)
	Upload(ctx context.Context) (domain.BlobInfo, error)
	List(ctx context.Context) ([]domain.BlobInfo, error)
}

// ExportHandler serves ledger CSV downloads and object-storage snapshots.
type ExportHandler struct {
	exports ExportService
	logger  *slog.Logger
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exports ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		exports: exports,
		logger:  logHandler(logger, "export"),
	}
}

// DownloadCSV streams the filtered ledger as CSV.
// GET /api/export/wagers.csv?account_id=&status=&since=&until=
func (h *ExportHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseWagerFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	n, err := h.exports.WriteCSV(r.Context(), &buf, filter)
	if err != nil {
		writeServiceError(w, r, h.logger, "export csv", err)
		return
	}

	name := "wagers-" + time.Now().UTC().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("X-Wager-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Upload writes a snapshot of the ledger to object storage.
// POST /api/export
func (h *ExportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	info, err := h.exports.Upload(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, "export upload", err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

type listExportsResponse struct {
	Exports []domain.BlobInfo `json:"exports"`
}

// List returns uploaded snapshots.
// GET /api/export
func (h *ExportHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.exports.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, "list exports", err)
		return
	}
	if list == nil {
		list = []domain.BlobInfo{}
	}
	writeJSON(w, http.StatusOK, listExportsResponse{Exports: list})
}
