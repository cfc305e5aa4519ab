package service

import (
	"testing"

	"github.com/qaztriage/backend/internal/geo"
	"github.com/qaztriage/backend/internal/models"
)

func TestMergeUnitCoords(t *testing.T) {
	lat, lon := 52.95, 63.12
	units := []models.BusinessUnit{
		{ID: "bu-1", Name: "Рудный", Lat: &lat, Lon: &lon},
		{ID: "bu-2", Name: "Астана"}, // no stored coordinates
	}
	extra := map[string]geo.Point{"рудный": {Lat: 1, Lon: 1}}

	merged := mergeUnitCoords(extra, units)

	// Explicit extras win over stored unit coordinates.
	if merged["рудный"] != (geo.Point{Lat: 1, Lon: 1}) {
		t.Fatalf("extra coords overwritten: %+v", merged["рудный"])
	}
	if _, ok := merged["астана"]; ok {
		t.Fatalf("unit without coordinates must not be merged")
	}

	merged = mergeUnitCoords(nil, units)
	if merged["рудный"] != (geo.Point{Lat: lat, Lon: lon}) {
		t.Fatalf("stored unit coordinates not merged: %+v", merged["рудный"])
	}
}
