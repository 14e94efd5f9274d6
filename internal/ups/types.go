package ups

import "time"

// Config holds the settings for the UPS API client.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TrackURL     string
	Timeout      time.Duration
}

// Snapshot is the reduced view of one shipment's latest tracking state:
// the most recent status description and a best-effort location string.
type Snapshot struct {
	Status   string
	Location string
}

// trackDetailResponse is the top-level tracking payload. The trackResponse
// wrapper is absent when UPS has no information for the number.
type trackDetailResponse struct {
	TrackResponse *TrackResponse `json:"trackResponse"`
}

// TrackResponse holds the shipment entries of a tracking payload.
type TrackResponse struct {
	Shipment []TrackedShipment `json:"shipment"`
}

// TrackedShipment is one shipment entry containing its packages.
type TrackedShipment struct {
	Package []Package `json:"package"`
}

// Package holds the activity history, most recent event first.
type Package struct {
	Activity []Activity `json:"activity"`
}

// Activity is one tracking event. Location data is sparse and varies in
// shape per event; some events carry shipment-level origin/destination
// context usable as a fallback.
type Activity struct {
	Status   ActivityStatus    `json:"status"`
	Location *ActivityLocation `json:"activityLocation,omitempty"`
	Shipment *ShipmentContext  `json:"shipment,omitempty"`
	Date     string            `json:"date,omitempty"`
	Time     string            `json:"time,omitempty"`
}

// ActivityStatus carries the human-readable status of an event.
type ActivityStatus struct {
	Description string `json:"description"`
}

// ActivityLocation describes where an event happened: a direct address,
// a facility-type description, a raw location code, or nothing at all.
type ActivityLocation struct {
	Address                 *Address `json:"address,omitempty"`
	LocationTypeDescription string   `json:"locationTypeDescription,omitempty"`
	Code                    string   `json:"code,omitempty"`
}

// ShipmentContext is the shipment-level origin/destination data attached
// to some events.
type ShipmentContext struct {
	ShipFrom *Party `json:"shipFrom,omitempty"`
	ShipTo   *Party `json:"shipTo,omitempty"`
}

// Party is a shipment endpoint with its address.
type Party struct {
	Address *Address `json:"address,omitempty"`
}

// Address holds the fields used to build a location string.
type Address struct {
	City          string `json:"city,omitempty"`
	StateProvince string `json:"stateProvince,omitempty"`
	Country       string `json:"country,omitempty"`
}
