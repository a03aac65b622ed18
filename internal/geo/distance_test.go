package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		delta                  float64
	}{
		{
			name: "same point",
			lat1: -33.4489, lon1: -70.6693,
			lat2: -33.4489, lon2: -70.6693,
			want: 0, delta: 0.001,
		},
		{
			name: "paris to london",
			lat1: 48.8566, lon1: 2.3522,
			lat2: 51.5074, lon2: -0.1278,
			want: 343.5, delta: 1.0,
		},
		{
			name: "santiago to valparaiso",
			lat1: -33.4489, lon1: -70.6693,
			lat2: -33.0472, lon2: -71.6127,
			want: 98.5, delta: 2.0,
		},
		{
			name: "across the equator",
			lat1: 1.0, lon1: 0.0,
			lat2: -1.0, lon2: 0.0,
			want: 222.4, delta: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := DistanceKm(48.8566, 2.3522, 51.5074, -0.1278)
	b := DistanceKm(51.5074, -0.1278, 48.8566, 2.3522)
	assert.Equal(t, a, b)
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 3.14, RoundKm(3.14159))
	assert.Equal(t, 0.0, RoundKm(0.0))
	assert.Equal(t, 12.35, RoundKm(12.345))
	assert.Equal(t, 2.0, RoundKm(1.999))
}
