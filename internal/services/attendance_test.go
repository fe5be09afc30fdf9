package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters(t *testing.T) {
	office := ReferenceOffice(nil)

	assert.Zero(t, haversineMeters(office.Latitude, office.Longitude, office.Latitude, office.Longitude))

	// 0.0002 degrees of latitude is about 22.2 m, just past the fence.
	near := haversineMeters(office.Latitude+0.0002, office.Longitude, office.Latitude, office.Longitude)
	assert.InDelta(t, 22.24, near, 0.1)
	assert.Greater(t, near, office.AllowedRadiusMeters)

	inside := haversineMeters(office.Latitude+0.0001, office.Longitude, office.Latitude, office.Longitude)
	assert.InDelta(t, 11.12, inside, 0.1)
	assert.Less(t, inside, office.AllowedRadiusMeters)

	// 0.01 degrees north, about 1.1 km.
	far := haversineMeters(office.Latitude+0.01, office.Longitude, office.Latitude, office.Longitude)
	assert.InDelta(t, 1112.0, far, 1.0)
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, validateCoordinates(47.9162536, 106.902233))
	assert.NoError(t, validateCoordinates(-90, 180))
	assert.Error(t, validateCoordinates(90.1, 0))
	assert.Error(t, validateCoordinates(0, -180.5))
}
