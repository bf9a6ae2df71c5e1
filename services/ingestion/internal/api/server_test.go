package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestServeStopsOnCancel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	srv := NewServer("127.0.0.1:0", NewHandler(&stubService{}, zap.NewNop()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, srv, zap.New(core))
	}()

	var addr string
	require.Eventually(t, func() bool {
		entries := logs.FilterMessage("api listening").All()
		if len(entries) == 0 {
			return false
		}
		addr = entries[0].ContextMap()["addr"].(string)
		return true
	}, time.Second, 5*time.Millisecond)

	res, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeReportsListenErrors(t *testing.T) {
	srv := NewServer("not-an-address", NewHandler(&stubService{}, zap.NewNop()))
	err := Serve(context.Background(), srv, zap.NewNop())
	assert.Error(t, err)
}
