package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peter-kozarec/ringstat/pkg/common"
	"github.com/peter-kozarec/ringstat/pkg/sensor"
)

func TestMetricsHandler(t *testing.T) {
	registry := sensor.NewRegistry(zap.NewNop(), 4)
	require.NoError(t, registry.Update(common.Sample{Sensor: "probe", Value: 2}))

	handler, err := NewMetricsHandler(registry)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `ringstat_sensor_readings_total{sensor="probe"} 1`)
	assert.Contains(t, string(body), `ringstat_sensor_window_mean{sensor="probe"} 2`)
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- Serve(ctx, zap.NewNop(), "127.0.0.1:0", http.NotFoundHandler())
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
