package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/export"
)

// ErrExportStorageDisabled is returned when uploads are requested without
// object storage configured.
var ErrExportStorageDisabled = errors.New("export storage is not configured")

// ExportOptions controls where snapshots land.
type ExportOptions struct {
	Prefix             string
	MultipartThreshold int64
}

// ExportService renders the ledger as CSV and ships snapshots to object storage.
type ExportService struct {
	wagers domain.WagerStore
	writer domain.BlobWriter
	reader domain.BlobReader
	events emitter
	opts   ExportOptions
	logger *slog.Logger
	now    func() time.Time
}

// NewExportService wires an ExportService. writer and reader may be nil, in
// which case only local CSV rendering works.
func NewExportService(
	wagers domain.WagerStore,
	writer domain.BlobWriter,
	reader domain.BlobReader,
	audit domain.AuditStore,
	notifier Notifier,
	opts ExportOptions,
	logger *slog.Logger,
) *ExportService {
	if opts.Prefix == "" {
		opts.Prefix = "exports/wagers"
	}
	logger = logger.With(slog.String("component", "export_service"))
	return &ExportService{
		wagers: wagers,
		writer: writer,
		reader: reader,
		events: emitter{audit: audit, notifier: notifier, logger: logger},
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// WriteCSV streams the filtered ledger to w.
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer, filter domain.WagerFilter) (int, error) {
	wagers, err := listAll(ctx, s.wagers, filter)
	if err != nil {
		return 0, fmt.Errorf("export_service: list wagers: %w", err)
	}
	if err := export.WriteCSV(w, wagers); err != nil {
		return 0, err
	}
	return len(wagers), nil
}

// Upload writes a timestamped snapshot of the full ledger.
func (s *ExportService) Upload(ctx context.Context) (domain.BlobInfo, error) {
	now := s.now().UTC()
	key := path.Join(s.opts.Prefix, now.Format("2006-01-02"), now.Format("150405")+".csv")
	return s.upload(ctx, key, now)
}

// UploadDaily writes the day's snapshot once; later runs the same day are
// skipped.
func (s *ExportService) UploadDaily(ctx context.Context) (domain.BlobInfo, bool, error) {
	now := s.now().UTC()
	key := path.Join(s.opts.Prefix, now.Format("2006-01-02")+".csv")
	if s.reader != nil {
		exists, err := s.reader.Exists(ctx, key)
		if err != nil {
			return domain.BlobInfo{}, false, fmt.Errorf("export_service: check %s: %w", key, err)
		}
		if exists {
			s.logger.InfoContext(ctx, "daily export already present", slog.String("path", key))
			return domain.BlobInfo{Path: key}, false, nil
		}
	}
	info, err := s.upload(ctx, key, now)
	return info, err == nil, err
}

// List returns the snapshots already uploaded.
func (s *ExportService) List(ctx context.Context) ([]domain.BlobInfo, error) {
	if s.reader == nil {
		return nil, ErrExportStorageDisabled
	}
	list, err := s.reader.List(ctx, s.opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("export_service: list: %w", err)
	}
	return list, nil
}

func (s *ExportService) upload(ctx context.Context, key string, at time.Time) (domain.BlobInfo, error) {
	if s.writer == nil {
		return domain.BlobInfo{}, ErrExportStorageDisabled
	}

	var buf bytes.Buffer
	n, err := s.WriteCSV(ctx, &buf, domain.WagerFilter{})
	if err != nil {
		return domain.BlobInfo{}, err
	}
	size := int64(buf.Len())

	if s.opts.MultipartThreshold > 0 && size >= s.opts.MultipartThreshold {
		err = s.writer.PutMultipart(ctx, key, &buf, s.opts.MultipartThreshold)
	} else {
		err = s.writer.Put(ctx, key, &buf, "text/csv")
	}
	if err != nil {
		return domain.BlobInfo{}, fmt.Errorf("export_service: upload %s: %w", key, err)
	}

	info := domain.BlobInfo{Path: key, Size: size, ContentType: "text/csv", LastModified: at}
	s.events.emit(ctx, "", domain.WagerEvent{Type: domain.EventExportCompleted, At: at}, map[string]any{
		"path":   key,
		"wagers": n,
		"bytes":  size,
	})
	s.events.notify(ctx, string(domain.EventExportCompleted), "Ledger exported",
		fmt.Sprintf("%d wagers written to %s", n, key))
	s.logger.InfoContext(ctx, "ledger exported",
		slog.String("path", key),
		slog.Int("wagers", n),
		slog.Int64("bytes", size),
	)
	return info, nil
}
