package tracker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/parcel-monitor/internal/config"
	"github.com/ignite/parcel-monitor/internal/notify"
	"github.com/ignite/parcel-monitor/internal/state"
	"github.com/ignite/parcel-monitor/internal/ups"
)

type fakeFetcher struct {
	tokenErr   error
	snaps      map[string]ups.Snapshot
	errs       map[string]error
	tokenCalls int
}

func (f *fakeFetcher) Token(ctx context.Context) (string, error) {
	f.tokenCalls++
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "test-token", nil
}

func (f *fakeFetcher) Track(ctx context.Context, trackingNumber, token string) (ups.Snapshot, error) {
	if err, ok := f.errs[trackingNumber]; ok {
		return ups.Snapshot{}, err
	}
	return f.snaps[trackingNumber], nil
}

type memStore struct {
	states    map[string]state.Record
	saveCalls int
}

func newMemStore() *memStore {
	return &memStore{states: map[string]state.Record{}}
}

func (m *memStore) Load(ctx context.Context) (map[string]state.Record, error) {
	out := make(map[string]state.Record, len(m.states))
	for k, v := range m.states {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) Save(ctx context.Context, states map[string]state.Record) error {
	m.saveCalls++
	m.states = states
	return nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (s *fakeSender) Send(ctx context.Context, text string) error {
	s.sent = append(s.sent, text)
	return s.err
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

func newTestRunner(shipments []config.Shipment, fetcher *fakeFetcher, store *memStore, sender *fakeSender, now time.Time) *Runner {
	return NewRunner(shipments, fetcher, store, sender, fixedClock{t: now}, zerolog.Nop())
}

func TestRunPassFirstObservationNotifies(t *testing.T) {
	shipments := []config.Shipment{{TrackingNumber: "1Z999", Nickname: "Laptop"}}
	fetcher := &fakeFetcher{snaps: map[string]ups.Snapshot{
		"1Z999": {Status: "Delivered", Location: "Toronto, ON, CA"},
	}}
	store := newMemStore()
	sender := &fakeSender{}
	now := time.Date(2026, 8, 23, 10, 15, 0, 0, time.UTC)

	report, err := newTestRunner(shipments, fetcher, store, sender, now).RunPass(context.Background())
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Delivered")
	assert.Contains(t, sender.sent[0], "Toronto, ON, CA")
	assert.Contains(t, sender.sent[0], "Laptop")

	assert.Equal(t, 1, report.NotifiedCount())
	assert.Equal(t, "Delivered", store.states["1Z999"].Status)
	assert.Equal(t, "2026-08-23 10:15:00", store.states["1Z999"].Timestamp)
	assert.Equal(t, 1, store.saveCalls)
}

func TestRunPassUnchangedStatusStaysQuiet(t *testing.T) {
	shipments := []config.Shipment{{TrackingNumber: "1Z999"}}
	fetcher := &fakeFetcher{snaps: map[string]ups.Snapshot{
		"1Z999": {Status: "Delivered", Location: "Toronto, ON, CA"},
	}}
	store := newMemStore()
	store.states["1Z999"] = state.Record{
		Status:    "Delivered",
		Location:  "Toronto, ON, CA",
		Timestamp: "2026-08-22 18:00:00",
	}
	sender := &fakeSender{}
	now := time.Date(2026, 8, 23, 10, 15, 0, 0, time.UTC)

	report, err := newTestRunner(shipments, fetcher, store, sender, now).RunPass(context.Background())
	require.NoError(t, err)

	assert.Empty(t, sender.sent)
	assert.Equal(t, 0, report.NotifiedCount())
	// The record's timestamp stays untouched when nothing changed.
	assert.Equal(t, "2026-08-22 18:00:00", store.states["1Z999"].Timestamp)
	// State is persisted once per pass even without changes.
	assert.Equal(t, 1, store.saveCalls)
}

func TestRunPassAuthErrorAborts(t *testing.T) {
	fetcher := &fakeFetcher{tokenErr: &ups.AuthError{Err: errors.New("invalid_client")}}
	store := newMemStore()
	sender := &fakeSender{}

	_, err := newTestRunner([]config.Shipment{{TrackingNumber: "1Z999"}}, fetcher, store, sender, time.Now()).
		RunPass(context.Background())

	var authErr *ups.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Empty(t, sender.sent)
	assert.Equal(t, 0, store.saveCalls)
}

func TestRunPassFetchFailureDoesNotAbortPass(t *testing.T) {
	shipments := []config.Shipment{
		{TrackingNumber: "1Z111"},
		{TrackingNumber: "1Z222"},
	}
	fetcher := &fakeFetcher{
		errs: map[string]error{
			"1Z111": &ups.UpstreamError{StatusCode: 502, Body: "bad gateway"},
		},
		snaps: map[string]ups.Snapshot{
			"1Z222": {Status: "In Transit", Location: "Winnipeg, MB, CA"},
		},
	}
	store := newMemStore()
	sender := &fakeSender{}

	report, err := newTestRunner(shipments, fetcher, store, sender, time.Now()).RunPass(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	assert.Error(t, report.Results[0].FetchErr)
	assert.True(t, strings.HasPrefix(report.Results[0].Status, "Error parsing: "),
		"fetch failure surfaces as the status text, got %q", report.Results[0].Status)
	assert.Equal(t, "In Transit", report.Results[1].Status)

	// The folded error is itself a status change and notifies.
	assert.Equal(t, 2, report.NotifiedCount())
	assert.Len(t, sender.sent, 2)
}

func TestRunPassNoTrackingInfoStillNotifies(t *testing.T) {
	shipments := []config.Shipment{{TrackingNumber: "1Z999"}}
	fetcher := &fakeFetcher{snaps: map[string]ups.Snapshot{
		"1Z999": {Status: "No tracking info", Location: "No location found"},
	}}
	store := newMemStore()
	sender := &fakeSender{}

	report, err := newTestRunner(shipments, fetcher, store, sender, time.Now()).RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.NotifiedCount())
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "No tracking info")
	assert.Contains(t, sender.sent[0], "No location found")
}

func TestRunPassDeliveryFailureIsSwallowed(t *testing.T) {
	shipments := []config.Shipment{{TrackingNumber: "1Z999"}}
	fetcher := &fakeFetcher{snaps: map[string]ups.Snapshot{
		"1Z999": {Status: "Delivered", Location: "Toronto, ON, CA"},
	}}
	store := newMemStore()
	sender := &fakeSender{err: &notify.DeliveryError{Transport: "telegram", Err: errors.New("chat not found")}}

	report, err := newTestRunner(shipments, fetcher, store, sender, time.Now()).RunPass(context.Background())
	require.NoError(t, err, "delivery failure never aborts the pass")

	require.Len(t, report.Results, 1)
	assert.Error(t, report.Results[0].DeliveryErr)
	// The change is still recorded so the next pass does not re-notify.
	assert.Equal(t, "Delivered", store.states["1Z999"].Status)
}

func TestRunPassPreservesConfiguredOrder(t *testing.T) {
	shipments := []config.Shipment{
		{TrackingNumber: "1Z333", Nickname: "Third"},
		{TrackingNumber: "1Z111", Nickname: "First"},
		{TrackingNumber: "1Z222", Nickname: "Second"},
	}
	fetcher := &fakeFetcher{snaps: map[string]ups.Snapshot{
		"1Z333": {Status: "Delivered", Location: "A"},
		"1Z111": {Status: "Delivered", Location: "B"},
		"1Z222": {Status: "Delivered", Location: "C"},
	}}

	report, err := newTestRunner(shipments, fetcher, newMemStore(), &fakeSender{}, time.Now()).
		RunPass(context.Background())
	require.NoError(t, err)

	rows := report.TableRows()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Third", "First", "Second"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})
}
