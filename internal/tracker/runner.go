// Package tracker runs the poll pass: fetch every tracked shipment,
// detect status changes against the persisted state, and dispatch
// notifications for the changes.
package tracker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ignite/parcel-monitor/internal/clock"
	"github.com/ignite/parcel-monitor/internal/config"
	"github.com/ignite/parcel-monitor/internal/notify"
	"github.com/ignite/parcel-monitor/internal/state"
	"github.com/ignite/parcel-monitor/internal/ups"
)

// timestampLayout is the carrier-local format written into state records
// and notification messages.
const timestampLayout = "2006-01-02 15:04:05"

// Fetcher is the tracking provider interface consumed by the runner.
// Implemented by *ups.Client.
type Fetcher interface {
	Token(ctx context.Context) (string, error)
	Track(ctx context.Context, trackingNumber, token string) (ups.Snapshot, error)
}

// ShipmentResult is the outcome of one shipment within one pass.
// FetchErr and DeliveryErr are kept for inspection; neither aborts the
// pass.
type ShipmentResult struct {
	TrackingNumber string
	Nickname       string
	Status         string
	Location       string
	Updated        string
	Notified       bool
	FetchErr       error
	DeliveryErr    error
}

// PassReport collects the per-shipment outcomes of one pass.
type PassReport struct {
	Results []ShipmentResult
}

// NotifiedCount returns how many shipments dispatched a notification.
func (r *PassReport) NotifiedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Notified {
			n++
		}
	}
	return n
}

// TableRows converts the report into rows for the tracking table.
func (r *PassReport) TableRows() []notify.TableRow {
	rows := make([]notify.TableRow, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, notify.TableRow{
			Name:     res.Nickname,
			Status:   res.Status,
			Location: res.Location,
			Updated:  res.Updated,
		})
	}
	return rows
}

// Runner executes poll passes over the configured shipments, strictly
// sequentially in list order.
type Runner struct {
	shipments []config.Shipment
	fetcher   Fetcher
	store     state.Store
	sender    notify.Sender
	clock     clock.Clock
	log       zerolog.Logger
}

// NewRunner creates a pass runner. A nil clk falls back to the wall
// clock.
func NewRunner(shipments []config.Shipment, fetcher Fetcher, store state.Store, sender notify.Sender, clk clock.Clock, log zerolog.Logger) *Runner {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Runner{
		shipments: shipments,
		fetcher:   fetcher,
		store:     store,
		sender:    sender,
		clock:     clk,
		log:       log,
	}
}

// RunPass authenticates, polls every shipment once, dispatches
// notifications for changed statuses and persists the full state mapping
// at the end regardless of whether anything changed.
//
// A token failure aborts the pass; a single shipment's fetch failure is
// folded into its status text and the pass continues.
func (r *Runner) RunPass(ctx context.Context) (*PassReport, error) {
	token, err := r.fetcher.Token(ctx)
	if err != nil {
		return nil, err
	}

	states, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	report := &PassReport{}
	for _, sh := range r.shipments {
		report.Results = append(report.Results, r.pollShipment(ctx, sh, token, states))
	}

	if err := r.store.Save(ctx, states); err != nil {
		return report, fmt.Errorf("persisting state: %w", err)
	}
	return report, nil
}

func (r *Runner) pollShipment(ctx context.Context, sh config.Shipment, token string, states map[string]state.Record) ShipmentResult {
	res := ShipmentResult{
		TrackingNumber: sh.TrackingNumber,
		Nickname:       sh.DisplayName(),
	}

	snap, err := r.fetcher.Track(ctx, sh.TrackingNumber, token)
	if err != nil {
		// One shipment's failure never aborts the pass; surface the
		// cause as the status text instead.
		res.FetchErr = err
		snap = ups.ErrorSnapshot(err)
		r.log.Warn().Err(err).Str("tracking_number", sh.TrackingNumber).Msg("tracking fetch failed")
	}
	res.Status = snap.Status
	res.Location = snap.Location

	if ShouldNotify(states, sh.TrackingNumber, snap.Status) {
		now := r.clock.Now().Format(timestampLayout)
		msg := notify.FormatUpdate(res.Nickname, snap.Status, snap.Location, now)
		if err := r.sender.Send(ctx, msg); err != nil {
			res.DeliveryErr = err
			r.log.Error().Err(err).Str("tracking_number", sh.TrackingNumber).Msg("notification delivery failed")
		}
		states[sh.TrackingNumber] = state.Record{
			Status:    snap.Status,
			Location:  snap.Location,
			Timestamp: now,
		}
		res.Notified = true
		r.log.Info().
			Str("tracking_number", sh.TrackingNumber).
			Str("status", snap.Status).
			Str("location", snap.Location).
			Msg("status change notified")
	} else {
		r.log.Debug().
			Str("tracking_number", sh.TrackingNumber).
			Str("status", snap.Status).
			Msg("no new update")
	}

	res.Updated = states[sh.TrackingNumber].Timestamp
	return res
}
