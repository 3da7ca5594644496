package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shopfinder/shopfinder-server/internal/errors"
)

type nearbyRequest struct {
	Lat   float64 `json:"lat" validate:"latitude"`
	Lng   float64 `json:"lng" validate:"longitude"`
	Limit int     `json:"limit" validate:"required,gt=0,lte=50"`
}

func TestValidate_Valid(t *testing.T) {
	v := New()

	err := v.Validate(nearbyRequest{Lat: 33.75, Lng: -84.39, Limit: 6})
	assert.NoError(t, err)
}

func TestValidate_InvalidReturnsDomainError(t *testing.T) {
	v := New()

	err := v.Validate(nearbyRequest{Lat: 200, Lng: -84.39, Limit: 0})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	// Error messages use JSON tag names, not struct field names.
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "lat")
	assert.Contains(t, details, "limit")
}
