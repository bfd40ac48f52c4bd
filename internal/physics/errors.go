package physics

import (
	"errors"
	"fmt"
)

// ErrDomain matches every *DomainError via errors.Is
var ErrDomain = errors.New("altitude outside model domain")

// DomainError reports an altitude for which a model output is undefined or
// physically meaningless
type DomainError struct {
	Quantity  string // "atmosphere" or "gravity"
	AltitudeM float64
	Reason    string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: altitude %g m: %s", e.Quantity, e.AltitudeM, e.Reason)
}

func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}
