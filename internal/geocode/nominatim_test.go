package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseSearchItems(t *testing.T) {
	lat, lon, err := parseSearchItems([]searchItem{{Lat: "51.1605", Lon: "71.4704"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lat != 51.1605 || lon != 71.4704 {
		t.Fatalf("unexpected coordinates: %f, %f", lat, lon)
	}
}

func TestParseSearchItemsEmpty(t *testing.T) {
	_, _, err := parseSearchItems(nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseSearchItemsBadCoordinates(t *testing.T) {
	_, _, err := parseSearchItems([]searchItem{{Lat: "abc", Lon: "71.4704"}})
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNominatimCachesQueries(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_ = json.NewEncoder(w).Encode([]searchItem{{Lat: "51.1605", Lon: "71.4704"}})
	}))
	defer srv.Close()

	g := &Nominatim{BaseURL: srv.URL, MinInterval: time.Millisecond}
	for i := 0; i < 3; i++ {
		lat, lon, err := g.Geocode(context.Background(), "Казахстан, Астана")
		if err != nil {
			t.Fatalf("geocode: %v", err)
		}
		if lat != 51.1605 || lon != 71.4704 {
			t.Fatalf("unexpected coordinates: %f, %f", lat, lon)
		}
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("expected 1 upstream call, got %d", got)
	}
}

func TestNominatimNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	g := &Nominatim{BaseURL: srv.URL, MinInterval: time.Millisecond}
	_, _, err := g.Geocode(context.Background(), "nowhere")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
