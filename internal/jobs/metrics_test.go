package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, m.Track("ledger:integrity").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("ledger:integrity").End(boom), boom)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("ledger:integrity", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("ledger:integrity", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("ledger:integrity")))
}

func TestDriftAndRestockGauges(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddDrift("capacity", 2)
	m.AddDrift("capacity", 0)
	m.SetRestockPending(7)

	require.Equal(t, 2.0, testutil.ToFloat64(m.drift.WithLabelValues("capacity")))
	require.Equal(t, 7.0, testutil.ToFloat64(m.restock))

	var nilMetrics *Metrics
	nilMetrics.AddDrift("volume", 1)
	nilMetrics.SetRestockPending(1)
	require.NoError(t, nilMetrics.Track("x").End(nil))
}
