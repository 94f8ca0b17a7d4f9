package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	lingyin := Coordinate{Latitude: 30.24102, Longitude: 120.09829}

	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceMeters(lingyin, lingyin))
	})

	t.Run("symmetric", func(t *testing.T) {
		jingan := Coordinate{Latitude: 31.22349, Longitude: 121.44527}
		assert.InDelta(t, DistanceMeters(lingyin, jingan), DistanceMeters(jingan, lingyin), 1e-9)
	})

	t.Run("one degree of latitude is about 111km", func(t *testing.T) {
		a := Coordinate{Latitude: 30.0, Longitude: 120.0}
		b := Coordinate{Latitude: 31.0, Longitude: 120.0}
		assert.InDelta(t, 111195, DistanceMeters(a, b), 50)
	})

	t.Run("short range accuracy", func(t *testing.T) {
		// Roughly 40 meters north.
		a := Coordinate{Latitude: 30.24102, Longitude: 120.09829}
		b := Coordinate{Latitude: 30.24102 + 40.0/111195.0, Longitude: 120.09829}
		assert.InDelta(t, 40, DistanceMeters(a, b), 0.5)
	})
}
