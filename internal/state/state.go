// Package state persists the last-notified status per tracked shipment.
package state

import "context"

// Record is the persisted fact for one shipment: the last status and
// location a notification was sent for, and when. A record exists for a
// tracking number if and only if at least one notification has been sent
// for it since the store was last reset.
type Record struct {
	Status    string `json:"status"`
	Location  string `json:"location"`
	Timestamp string `json:"timestamp"`
}

// Store loads and persists the tracking number → Record mapping.
// Save performs a full overwrite, not an incremental merge; it runs once
// per pass after every shipment has been evaluated. The process is the
// only writer.
type Store interface {
	Load(ctx context.Context) (map[string]Record, error)
	Save(ctx context.Context, states map[string]Record) error
}
