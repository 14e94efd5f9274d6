package tracker

import "github.com/ignite/parcel-monitor/internal/state"

// ShouldNotify reports whether a freshly fetched status warrants a
// notification: the status must be non-empty and differ from the stored
// record by exact string comparison. An absent record counts as
// never-equal, so the first observed status for a shipment always
// notifies.
//
// No normalization is applied: a status the provider rewrites without a
// semantic change (capitalization drift and the like) re-notifies. That
// is an accepted limitation of treating the provider text as the source
// of truth.
func ShouldNotify(states map[string]state.Record, trackingNumber, freshStatus string) bool {
	if freshStatus == "" {
		return false
	}
	rec, ok := states[trackingNumber]
	return !ok || rec.Status != freshStatus
}
