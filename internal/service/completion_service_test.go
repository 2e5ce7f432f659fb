package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completionMarkerStub struct {
	cutoffs []time.Time
	n       int64
	err     error
}

func (m *completionMarkerStub) MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.cutoffs = append(m.cutoffs, cutoff)
	return m.n, m.err
}

func TestCompletionServiceSweep(t *testing.T) {
	marker := &completionMarkerStub{n: 3}
	metrics := NewMetricsService()
	svc := NewCompletionService(marker, "", metrics, nil)
	fixed := time.Date(2024, time.December, 10, 3, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	n, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, []time.Time{fixed}, marker.cutoffs)
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.sweepCompleted))

	marker.err = errors.New("db down")
	_, err = svc.Sweep(context.Background())
	assert.Error(t, err)
}

func TestCompletionServiceStartStop(t *testing.T) {
	svc := NewCompletionService(&completionMarkerStub{}, "@every 1h", nil, nil)
	require.NoError(t, svc.Start())
	require.NoError(t, svc.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	svc.Stop(ctx)
	svc.Stop(ctx)
}

func TestCompletionServiceRejectsBadSchedule(t *testing.T) {
	svc := NewCompletionService(&completionMarkerStub{}, "every tuesday-ish", nil, nil)
	assert.Error(t, svc.Start())
}
