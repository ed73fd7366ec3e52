package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/betledger/internal/cache/local"
	"github.com/alanyoungcy/betledger/internal/config"
	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/store/memory"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestWireInMemory(t *testing.T) {
	cfg := config.Defaults()
	deps, cleanup, err := Wire(context.Background(), &cfg, quietLogger())
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &memory.WagerStore{}, deps.Wagers)
	assert.IsType(t, &local.LockManager{}, deps.Locks)
	assert.IsType(t, &local.SignalBus{}, deps.Bus)
	assert.Nil(t, deps.BlobWriter)
	assert.Empty(t, deps.Checks)
	assert.False(t, deps.Notifier.Enabled())
	require.NotNil(t, deps.Catalog)
}

func TestBuildServicesSharesLedger(t *testing.T) {
	cfg := config.Defaults()
	deps, cleanup, err := Wire(context.Background(), &cfg, quietLogger())
	require.NoError(t, err)
	defer cleanup()

	a := New(&cfg, quietLogger())
	svc := a.buildServices(deps)

	acct, err := svc.accounts.Create(context.Background(), "Main", "", domainMoney(t, "100"))
	require.NoError(t, err)
	got, err := deps.Accounts.GetByID(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main", got.Name)
}

type fakeUploader struct {
	calls    atomic.Int32
	uploaded bool
	err      error
}

func (f *fakeUploader) UploadDaily(context.Context) (domain.BlobInfo, bool, error) {
	f.calls.Add(1)
	return domain.BlobInfo{Path: "exports/wagers/2026-10-19.csv"}, f.uploaded, f.err
}

func TestExportJobSchedule(t *testing.T) {
	_, err := newExportJob("not a cron", &fakeUploader{}, quietLogger())
	assert.Error(t, err)

	job, err := newExportJob("0 4 * * *", &fakeUploader{}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "0 4 * * *", job.spec)
}

func TestExportJobRunOnce(t *testing.T) {
	for _, up := range []*fakeUploader{
		{uploaded: true},
		{uploaded: false},
		{err: errors.New("bucket gone")},
	} {
		job, err := newExportJob("@daily", up, quietLogger())
		require.NoError(t, err)
		job.runOnce(context.Background())
		assert.EqualValues(t, 1, up.calls.Load())
	}

	up := &fakeUploader{}
	job, err := newExportJob("@daily", up, quietLogger())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job.runOnce(ctx)
	assert.EqualValues(t, 0, up.calls.Load())
}

func TestExportJobRunStopsWithContext(t *testing.T) {
	job, err := newExportJob("@daily", &fakeUploader{}, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func domainMoney(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
