package physics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorMatching(t *testing.T) {
	err := fmt.Errorf("evaluate: %w", &DomainError{Quantity: "gravity", AltitudeM: -EarthRadius, Reason: "at or below Earth centre"})

	assert.ErrorIs(t, err, ErrDomain)

	var de *DomainError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, "gravity", de.Quantity)
	assert.Contains(t, err.Error(), "at or below Earth centre")
}

func TestHydrostaticConstant(t *testing.T) {
	assert.InDelta(t, 0.0341576, HydrostaticConstant, 1e-6)
}
