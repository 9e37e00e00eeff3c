package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-msgbus"
	"github.com/dep2p/go-msgbus/config"
)

type Ping struct{ msgbus.Bus0 }

type Score struct{ msgbus.Bus1[int] }

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector(config.DefaultMetricsConfig(), prometheus.NewRegistry())
}

// ============================================================================
// Observer 回调
// ============================================================================

func TestCollector_BusCreated(t *testing.T) {
	c := newTestCollector(t)

	c.BusCreated("game.Ping", 0)
	c.BusCreated("game.Score", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.buses))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.subscribers.WithLabelValues("game.Ping")))
}

func TestCollector_Dispatched(t *testing.T) {
	c := newTestCollector(t)

	c.Dispatched("game.Score", 3, 2*time.Millisecond, nil)
	c.Dispatched("game.Score", 1, time.Millisecond, errors.New("boom"))
	c.Dispatched("game.Score", 0, 0, nil)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.sends.WithLabelValues("game.Score")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.deliveries.WithLabelValues("game.Score")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sendErrors.WithLabelValues("game.Score")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestCollector_Namespace(t *testing.T) {
	cfg := config.MetricsConfig{Enabled: true, Namespace: "game", Buckets: []float64{0.001, 0.01}}
	c := NewCollector(cfg, nil)
	c.BusCreated("x", 0)

	expected := `
# HELP game_buses Number of message buses created by the registry
# TYPE game_buses gauge
game_buses 1
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "game_buses"))
}

// ============================================================================
// 与注册表集成
// ============================================================================

func TestCollector_WithRegistry(t *testing.T) {
	c := newTestCollector(t)
	reg := msgbus.NewRegistry(msgbus.WithObserver(c))

	score := msgbus.Get[Score](reg)
	score.Add(func(int) error { return nil })
	sub := score.Add(func(int) error { return nil })
	require.NoError(t, score.Send(1))
	sub.Close()

	msgbus.Get[Ping](reg)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.buses))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.subscribers.WithLabelValues("metrics.Score")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sends.WithLabelValues("metrics.Score")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.deliveries.WithLabelValues("metrics.Score")))
}
