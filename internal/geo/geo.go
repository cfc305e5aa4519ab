// Package geo provides great-circle distance and a fixed table of
// Kazakhstan city coordinates used by the assignment engine.
package geo

import (
	"math"
	"strings"
)

const earthRadiusKm = 6371.0

type Point struct {
	Lat float64
	Lon float64
}

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(a, b Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)

	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}

// cityCoords is keyed by lower-cased city name. Former names are listed
// alongside current ones because ticket addresses use both.
var cityCoords = map[string]Point{
	"астана":           {51.1605, 71.4704},
	"нур-султан":       {51.1605, 71.4704},
	"алматы":           {43.2220, 76.8512},
	"шымкент":          {42.3417, 69.5901},
	"караганда":        {49.8047, 73.1094},
	"актобе":           {50.2839, 57.1670},
	"тараз":            {42.9000, 71.3667},
	"павлодар":         {52.2873, 76.9674},
	"усть-каменогорск": {49.9483, 82.6279},
	"семей":            {50.4111, 80.2275},
	"атырау":           {47.1164, 51.8830},
	"костанай":         {53.2198, 63.6354},
	"кызылорда":        {44.8488, 65.4823},
	"уральск":          {51.2225, 51.3725},
	"петропавловск":    {54.8753, 69.1628},
	"актау":            {43.6511, 51.1575},
	"темиртау":         {50.0549, 72.9646},
	"туркестан":        {43.2973, 68.2517},
	"кокшетау":         {53.2833, 69.3833},
	"талдыкорган":      {45.0156, 78.3739},
	"экибастуз":        {51.7298, 75.3266},
}

// LookupCity resolves a settlement or office city to coordinates.
// Common address prefixes ("г.", "город") are stripped before matching.
func LookupCity(name string) (Point, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, prefix := range []string{"г.", "город ", "c.", "с."} {
		key = strings.TrimSpace(strings.TrimPrefix(key, prefix))
	}
	p, ok := cityCoords[key]
	return p, ok
}
