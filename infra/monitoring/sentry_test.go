package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetopt/config"
	coremon "github.com/kilianp07/fleetopt/core/monitoring"
)

type memTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (t *memTransport) Configure(sentry.ClientOptions) {}
func (t *memTransport) SendEvent(e *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}
func (t *memTransport) Flush(time.Duration) bool { return true }
func (t *memTransport) FlushWithContext(context.Context) bool { return true }
func (t *memTransport) Close() {}

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestCaptureExceptionTags(t *testing.T) {
	tr := &memTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{Dsn: "https://key@sentry.example/1", Transport: tr})
	require.NoError(t, err)
	hub := sentry.NewHub(client, sentry.NewScope())
	m := &sentryMonitor{hub: hub}

	m.CaptureException(nil, nil)
	m.CaptureException(errors.New("cycle failed"), map[string]string{"module": "scheduler"})

	tr.mu.Lock()
	defer tr.mu.Unlock()
	require.Len(t, tr.events, 1)
	assert.Equal(t, "scheduler", tr.events[0].Tags["module"])
	assert.Equal(t, "fleetopt", tr.events[0].Tags["service"])
}
