package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	name   string
	err    error
	titles []string
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	r.titles = append(r.titles, title)
	return r.err
}

func (r *recordingSender) Name() string { return r.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyFiltersEvents(t *testing.T) {
	s := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{s}, []string{"wager.settled"}, discardLogger())

	require.NoError(t, n.Notify(context.Background(), "wager.placed", "placed", ""))
	require.NoError(t, n.Notify(context.Background(), "wager.settled", "settled", ""))
	assert.Equal(t, []string{"settled"}, s.titles)
}

func TestNotifyContinuesPastFailure(t *testing.T) {
	bad := &recordingSender{name: "bad", err: errors.New("boom")}
	good := &recordingSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, discardLogger())

	err := n.Notify(context.Background(), "any", "t", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: boom")
	assert.Equal(t, []string{"t"}, good.titles)
}

func TestNilNotifierIsDisabled(t *testing.T) {
	var n *Notifier
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Notify(context.Background(), "e", "t", "m"))
}

func TestParseWebhookURL(t *testing.T) {
	id, token, err := parseWebhookURL("https://discord.com/api/webhooks/12345/abcDEF")
	require.NoError(t, err)
	assert.Equal(t, "12345", id)
	assert.Equal(t, "abcDEF", token)

	_, _, err = parseWebhookURL("https://discord.com/api/channels/1")
	assert.Error(t, err)
}
