package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"echolearn-client/internal/dto"
)

type ILocationService interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}

// locationService resolves coordinates to a "City, Country" string for the
// profile's use-my-location feature. Coordinates come from the caller; there
// is no platform geolocation here.
type locationService struct {
	baseURL string
	http    *http.Client
	cache   sync.Map // In-memory cache
}

type cachedItem struct {
	data      string
	expiresAt time.Time
}

func NewLocationService(baseURL string) ILocationService {
	return &locationService{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *locationService) getFromCache(key string) (string, bool) {
	val, ok := s.cache.Load(key)
	if !ok {
		return "", false
	}
	item := val.(cachedItem)
	if time.Now().After(item.expiresAt) {
		s.cache.Delete(key)
		return "", false
	}
	return item.data, true
}

func (s *locationService) setCache(key, data string, duration time.Duration) {
	s.cache.Store(key, cachedItem{
		data:      data,
		expiresAt: time.Now().Add(duration),
	})
}

func (s *locationService) ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error) {
	cacheKey := fmt.Sprintf("reverse:%.4f:%.4f", latitude, longitude)
	if val, ok := s.getFromCache(cacheKey); ok {
		return val, nil
	}

	params := url.Values{}
	params.Add("format", "json")
	params.Add("lat", fmt.Sprintf("%f", latitude))
	params.Add("lon", fmt.Sprintf("%f", longitude))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder error: status %d", resp.StatusCode)
	}

	var result dto.ReverseGeocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	// Prefer the most specific populated place available.
	place := result.Address.City
	if place == "" {
		place = result.Address.Town
	}
	if place == "" {
		place = result.Address.Village
	}

	location := strings.TrimSuffix(fmt.Sprintf("%s, %s", place, result.Address.Country), ", ")
	location = strings.TrimPrefix(location, ", ")

	s.setCache(cacheKey, location, 1*time.Hour)
	return location, nil
}
