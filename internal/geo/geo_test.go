package geo

import "testing"

func TestHaversineKnownDistance(t *testing.T) {
	astana, _ := LookupCity("Астана")
	almaty, _ := LookupCity("Алматы")

	d := HaversineKm(astana, almaty)
	if d < 940 || d > 1010 {
		t.Fatalf("Астана-Алматы distance out of range: %.1f km", d)
	}
}

func TestHaversineZero(t *testing.T) {
	p := Point{Lat: 51.1605, Lon: 71.4704}
	if d := HaversineKm(p, p); d != 0 {
		t.Fatalf("identical points: %.6f km", d)
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := Point{Lat: 43.2220, Lon: 76.8512}
	b := Point{Lat: 49.8047, Lon: 73.1094}
	if HaversineKm(a, b) != HaversineKm(b, a) {
		t.Fatalf("distance not symmetric")
	}
}

func TestLookupCityPrefixes(t *testing.T) {
	cases := []string{"Алматы", "г. Алматы", "город Алматы", "  АЛМАТЫ  "}
	want, ok := LookupCity("алматы")
	if !ok {
		t.Fatalf("base lookup failed")
	}
	for _, c := range cases {
		got, ok := LookupCity(c)
		if !ok || got != want {
			t.Fatalf("lookup %q: got %+v ok=%v", c, got, ok)
		}
	}
}

func TestLookupCityUnknown(t *testing.T) {
	if _, ok := LookupCity("Лондон"); ok {
		t.Fatalf("unexpected hit for unknown city")
	}
	if _, ok := LookupCity(""); ok {
		t.Fatalf("unexpected hit for empty name")
	}
}

func TestLookupCityFormerName(t *testing.T) {
	a, _ := LookupCity("Астана")
	b, ok := LookupCity("Нур-Султан")
	if !ok || a != b {
		t.Fatalf("former name must resolve to the same point")
	}
}
