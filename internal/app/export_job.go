package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alanyoungcy/betledger/internal/domain"
)

// dailyUploader is the slice of ExportService the job drives.
type dailyUploader interface {
	UploadDaily(ctx context.Context) (domain.BlobInfo, bool, error)
}

// exportJob uploads the day's ledger snapshot on a cron schedule.
type exportJob struct {
	cron    *cron.Cron
	spec    string
	exports dailyUploader
	logger  *slog.Logger
	timeout time.Duration
}

func newExportJob(spec string, exports dailyUploader, logger *slog.Logger) (*exportJob, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("export job: schedule %q: %w", spec, err)
	}
	return &exportJob{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		spec:    spec,
		exports: exports,
		logger:  logger.With(slog.String("component", "export_job")),
		timeout: 5 * time.Minute,
	}, nil
}

// Run starts the scheduler and blocks until ctx ends, then waits for any
// in-flight upload.
func (j *exportJob) Run(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.runOnce(ctx) }); err != nil {
		return fmt.Errorf("export job: add schedule: %w", err)
	}
	j.cron.Start()
	<-ctx.Done()
	<-j.cron.Stop().Done()
	return ctx.Err()
}

func (j *exportJob) runOnce(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, j.timeout)
	defer cancel()

	start := time.Now()
	info, uploaded, err := j.exports.UploadDaily(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "scheduled export failed", slog.String("error", err.Error()))
		return
	}
	if !uploaded {
		j.logger.InfoContext(ctx, "scheduled export skipped", slog.String("path", info.Path))
		return
	}
	j.logger.InfoContext(ctx, "scheduled export done",
		slog.String("path", info.Path),
		slog.Int64("bytes", info.Size),
		slog.Duration("took", time.Since(start)),
	)
}
