package maps

import "context"

// Geocoder resolves coordinates to a human-readable address. Used to enrich
// emergency alerts; always best-effort.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResult, error)
}

type GeocodeResult struct {
	PlaceID string `json:"place_id"`
	Address string `json:"formatted_address"`
}
