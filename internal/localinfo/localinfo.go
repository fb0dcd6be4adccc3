// Package localinfo fetches the city name and current temperature shown in
// the waiting-room display footer. Everything here is best-effort: a failed
// lookup degrades to whatever pieces were obtained and the next refresh tries
// again.
package localinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"guiche-backend/config"
)

const (
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultGeocodeURL  = "https://nominatim.openstreetmap.org/reverse"
)

// Info is the display footer data.
type Info struct {
	City        string    `json:"city"`
	Temperature string    `json:"temperature"` // e.g. "23°C", empty when unknown
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Service refreshes Info on its own interval.
type Service struct {
	cfg         *config.LocalInfoConfig
	client      *http.Client
	forecastURL string
	geocodeURL  string

	mu   sync.RWMutex
	info Info
}

// NewService creates the local info service.
func NewService(cfg *config.LocalInfoConfig) *Service {
	return &Service{
		cfg:         cfg,
		client:      &http.Client{Timeout: 10 * time.Second},
		forecastURL: defaultForecastURL,
		geocodeURL:  defaultGeocodeURL,
	}
}

// Run refreshes immediately, then on the configured interval until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Local info is disabled. Not starting.")
		return
	}

	s.RefreshOnce(ctx)

	timer := time.NewTimer(s.cfg.RefreshInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.RefreshOnce(ctx)
			timer.Reset(s.cfg.RefreshInterval)
		}
	}
}

// Snapshot returns the latest info.
func (s *Service) Snapshot() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// RefreshOnce performs one refresh cycle. Partial results are kept: a failed
// geocode still updates the temperature, and vice versa.
func (s *Service) RefreshOnce(ctx context.Context) {
	info := Info{UpdatedAt: time.Now()}

	if temp, err := s.fetchTemperature(ctx); err != nil {
		log.Printf("Error fetching temperature: %v", err)
	} else {
		info.Temperature = fmt.Sprintf("%d°C", int(math.Round(temp)))
	}

	if city, err := s.fetchCity(ctx); err != nil {
		log.Printf("Error reverse-geocoding location: %v", err)
		info.City = "—"
	} else {
		info.City = city
	}

	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
}

func (s *Service) fetchTemperature(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s?latitude=%f&longitude=%f&current=temperature_2m&timezone=auto&forecast_days=1",
		s.forecastURL, s.cfg.Latitude, s.cfg.Longitude)

	var payload struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
		} `json:"current"`
	}
	if err := s.getJSON(ctx, url, &payload); err != nil {
		return 0, err
	}
	return payload.Current.Temperature, nil
}

func (s *Service) fetchCity(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s?format=json&lat=%f&lon=%f&zoom=10&addressdetails=1",
		s.geocodeURL, s.cfg.Latitude, s.cfg.Longitude)

	var payload struct {
		Address struct {
			City    string `json:"city"`
			Town    string `json:"town"`
			Village string `json:"village"`
		} `json:"address"`
	}
	if err := s.getJSON(ctx, url, &payload); err != nil {
		return "", err
	}

	switch {
	case payload.Address.City != "":
		return payload.Address.City, nil
	case payload.Address.Town != "":
		return payload.Address.Town, nil
	case payload.Address.Village != "":
		return payload.Address.Village, nil
	}
	return "", fmt.Errorf("no city in geocode response")
}

func (s *Service) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
