package ups

import "strings"

// NoLocation is the sentinel returned when no location can be derived
// from an event or its shipment context.
const NoLocation = "No location found"

// ExtractLocation derives a human-readable location string from one
// tracking event. Ordered fallback chain, first non-empty result wins:
// event address (city, state, country joined with ", "), facility-type
// description, raw location code, shipment origin address, shipment
// destination address, then the NoLocation sentinel.
//
// Later events in the activity history tend to carry fuller address data
// (origin scans) than the latest in-transit scan, so callers fall back to
// older events before giving up.
func ExtractLocation(act Activity) string {
	if act.Location != nil {
		if parts := addressParts(act.Location.Address); len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
		if act.Location.LocationTypeDescription != "" {
			return act.Location.LocationTypeDescription
		}
		if act.Location.Code != "" {
			return act.Location.Code
		}
	}

	if act.Shipment != nil {
		if act.Shipment.ShipFrom != nil {
			if parts := addressParts(act.Shipment.ShipFrom.Address); len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
		if act.Shipment.ShipTo != nil {
			if parts := addressParts(act.Shipment.ShipTo.Address); len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
	}

	return NoLocation
}

// addressParts collects the present city / state-or-province / country
// fields, in that order.
func addressParts(a *Address) []string {
	if a == nil {
		return nil
	}
	var parts []string
	for _, field := range []string{a.City, a.StateProvince, a.Country} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	return parts
}
