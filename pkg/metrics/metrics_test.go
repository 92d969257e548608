package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordsLoadedCounter(t *testing.T) {
	c := RecordsLoaded.WithLabelValues("metrics_test", "diffusivity")
	before := testutil.ToFloat64(c)

	c.Inc()
	c.Add(2)

	assert.Equal(t, before+3, testutil.ToFloat64(c))
}

func TestTimerObserveLoad(t *testing.T) {
	timer := NewTimer("metrics_test")
	time.Sleep(time.Millisecond)

	d := timer.ObserveLoad()
	assert.GreaterOrEqual(t, d, time.Millisecond)
	assert.GreaterOrEqual(t, timer.Stop(), d)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(LoadDuration), 1)
}
