package jobmetrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, metric prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, metric.Write(&out))
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}

func TestTrackerOutcomes(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, m.Track("payroll:compute").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("payroll:compute").End(boom), boom)
	_ = m.Track("payroll:compute").End(fmt.Errorf("bad token: %w", asynq.SkipRetry))

	require.Equal(t, 1.0, value(t, m.runs.WithLabelValues("payroll:compute", StatusSuccess)))
	require.Equal(t, 1.0, value(t, m.runs.WithLabelValues("payroll:compute", StatusFailure)))
	require.Equal(t, 1.0, value(t, m.runs.WithLabelValues("payroll:compute", StatusSkipped)))
	require.Equal(t, 0.0, value(t, m.inflight.WithLabelValues("payroll:compute")))
}

func TestAddItemsDefaultsCompany(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddItems("masterdata:warmup", "", 3)
	m.AddItems("masterdata:warmup", "c-1", 0)
	require.Equal(t, 3.0, value(t, m.items.WithLabelValues("masterdata:warmup", "none")))

	var nilMetrics *Metrics
	nilMetrics.AddItems("x", "c", 1)
	require.NoError(t, nilMetrics.Track("x").End(nil))
}
