package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	m := NewMetricsForTesting()

	m.Observe("atmosphere", OutcomeOK, 0.001)
	m.Observe("atmosphere", OutcomeOK, 0.002)
	m.Observe("gravity", OutcomeDomainError, 0.001)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("atmosphere", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("gravity", OutcomeDomainError)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}
