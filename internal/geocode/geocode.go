// Package geocode resolves office postal addresses to coordinates. It is
// only used to backfill business units whose city is missing from the
// static table; the assignment engine itself never calls the network.
package geocode

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("geocode: not found")

type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat, lon float64, err error)
}

// BuildQuery joins the non-empty address parts into a geocoding query.
func BuildQuery(country, city, address string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{country, city, address} {
		if v := strings.TrimSpace(p); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
