package localinfo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"guiche-backend/config"
)

func newTestService(forecast, geocode http.HandlerFunc) (*Service, func()) {
	forecastSrv := httptest.NewServer(forecast)
	geocodeSrv := httptest.NewServer(geocode)

	s := NewService(&config.LocalInfoConfig{Enabled: true, Latitude: -23.55, Longitude: -46.63})
	s.forecastURL = forecastSrv.URL
	s.geocodeURL = geocodeSrv.URL

	return s, func() {
		forecastSrv.Close()
		geocodeSrv.Close()
	}
}

func TestService_RefreshOnce(t *testing.T) {
	s, cleanup := newTestService(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"current":{"temperature_2m":22.6}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"address":{"city":"São Paulo"}}`))
		},
	)
	defer cleanup()

	s.RefreshOnce(context.Background())

	info := s.Snapshot()
	assert.Equal(t, "São Paulo", info.City)
	assert.Equal(t, "23°C", info.Temperature)
	assert.False(t, info.UpdatedAt.IsZero())
}

func TestService_RefreshOnce_PartialResultsAreKept(t *testing.T) {
	s, cleanup := newTestService(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"address":{"town":"Atibaia"}}`))
		},
	)
	defer cleanup()

	s.RefreshOnce(context.Background())

	info := s.Snapshot()
	assert.Equal(t, "Atibaia", info.City)
	assert.Empty(t, info.Temperature)
}

func TestService_RefreshOnce_FailedGeocodeShowsPlaceholderCity(t *testing.T) {
	s, cleanup := newTestService(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"current":{"temperature_2m":18.2}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"address":{}}`))
		},
	)
	defer cleanup()

	s.RefreshOnce(context.Background())

	info := s.Snapshot()
	assert.Equal(t, "—", info.City)
	assert.Equal(t, "18°C", info.Temperature)
}
