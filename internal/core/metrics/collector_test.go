package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-dapp/config"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector("dapp_test")

	c.ObserveProbe(ProbePeer)
	c.ObserveProbe(ProbePeer)
	c.ObserveProbe(ProbeUnreachable)
	c.SetPeers(2)
	c.IncSyncFailure()
	c.SetObjects(3, 1)
	c.ObserveCall(RouteLocal, OutcomeOK, time.Millisecond)
	c.ObserveCall(RouteRemote, "remote_call", time.Second)
	c.ObserveCodeFetch(OutcomeOK)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.probes.WithLabelValues(ProbePeer)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.probes.WithLabelValues(ProbeUnreachable)))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.peers))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.syncFailures))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.objects.WithLabelValues("local")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.objects.WithLabelValues("remote")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.calls.WithLabelValues(RouteRemote, "remote_call")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.codeFetches.WithLabelValues(OutcomeOK)))

	t.Log("✅ 指标记录测试通过")
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveProbe(ProbePeer)
		c.SetPeers(1)
		c.ObserveScan(time.Second)
		c.IncSyncFailure()
		c.SetObjects(1, 1)
		c.ObserveCall(RouteLocal, OutcomeOK, time.Millisecond)
		c.ObserveCodeFetch(OutcomeOK)
	})
}

func TestModule(t *testing.T) {
	t.Run("Enabled", func(t *testing.T) {
		var out struct {
			fx.In
			Collector *Collector
			Handler   http.Handler `name:"metrics_handler"`
		}
		app := fxtest.New(t, Module, fx.Populate(&out))
		app.RequireStart().RequireStop()

		require.NotNil(t, out.Collector)
		require.NotNil(t, out.Handler)

		out.Collector.SetPeers(4)
		rec := httptest.NewRecorder()
		out.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "dapp_discovery_peers 4")
	})

	t.Run("Disabled", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Metrics.Enable = false

		var c *Collector
		app := fxtest.New(t, fx.Supply(cfg), Module, fx.Populate(&c))
		app.RequireStart().RequireStop()
		assert.Nil(t, c)
	})
}
