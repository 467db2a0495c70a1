package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseGeocodeFallbackChain(t *testing.T) {
	tests := []struct {
		name    string
		address map[string]string
		want    string
	}{
		{
			name:    "city preferred",
			address: map[string]string{"city": "Hyderabad", "town": "Ignored", "country": "India"},
			want:    "Hyderabad, India",
		},
		{
			name:    "town when no city",
			address: map[string]string{"town": "Siddipet", "country": "India"},
			want:    "Siddipet, India",
		},
		{
			name:    "village as last resort",
			address: map[string]string{"village": "Ramayampet", "country": "India"},
			want:    "Ramayampet, India",
		},
		{
			name:    "country only",
			address: map[string]string{"country": "India"},
			want:    "India",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/reverse", r.URL.Path)
				assert.Equal(t, "json", r.URL.Query().Get("format"))
				respondJSON(w, http.StatusOK, map[string]interface{}{"address": tt.address})
			}))
			t.Cleanup(backend.Close)

			svc := NewLocationService(backend.URL)
			got, err := svc.ReverseGeocode(context.Background(), 17.385, 78.4867)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReverseGeocodeCaches(t *testing.T) {
	var calls int
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"address": map[string]string{"city": "Hyderabad", "country": "India"},
		})
	}))
	t.Cleanup(backend.Close)

	svc := NewLocationService(backend.URL)
	for i := 0; i < 3; i++ {
		got, err := svc.ReverseGeocode(context.Background(), 17.385, 78.4867)
		require.NoError(t, err)
		assert.Equal(t, "Hyderabad, India", got)
	}
	assert.Equal(t, 1, calls)

	// Different coordinates miss the cache.
	_, err := svc.ReverseGeocode(context.Background(), 28.6139, 77.209)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestReverseGeocodeErrorStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(backend.Close)

	svc := NewLocationService(backend.URL)
	_, err := svc.ReverseGeocode(context.Background(), 17.385, 78.4867)
	assert.Error(t, err)
}
