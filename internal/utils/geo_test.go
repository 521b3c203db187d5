package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceKm(48.8566, 2.3522, 48.8566, 2.3522))
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		// One degree of latitude along a meridian is about 111.2 km.
		distance := DistanceKm(0, 0, 1, 0)
		assert.InDelta(t, 111.19, distance, 1.2)
	})

	t.Run("symmetry", func(t *testing.T) {
		forward := DistanceKm(40.7128, -74.0060, 34.0522, -118.2437)
		backward := DistanceKm(34.0522, -118.2437, 40.7128, -74.0060)
		assert.InDelta(t, forward, backward, 1e-9)
	})

	t.Run("new york to los angeles", func(t *testing.T) {
		distance := DistanceKm(40.7128, -74.0060, 34.0522, -118.2437)
		assert.InDelta(t, 3936, distance, 40)
	})
}

func TestIsWithinRadius(t *testing.T) {
	// Points roughly 7.9 km apart.
	assert.True(t, IsWithinRadius(48.8566, 2.3522, 48.8566, 2.4600, 10))
	assert.False(t, IsWithinRadius(48.8566, 2.3522, 48.8566, 2.4600, 5))
}
