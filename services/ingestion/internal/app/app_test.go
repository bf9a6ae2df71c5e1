package app

import (
	"context"
	"testing"
	"time"

	"jobbots/common/cache/memory"
	"jobbots/common/errors"
	"jobbots/services/ingestion/internal/config"
	"jobbots/services/ingestion/internal/page"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func httpConfig() *config.Config {
	return &config.Config{
		Platforms:   []string{"boss", "ganji"},
		FetchMode:   config.FetchModeHTTP,
		PageTimeout: 5 * time.Second,
		CacheTTL:    time.Minute,
		LogLevel:    "info",
	}
}

func TestNewCacheFallsBackToMemory(t *testing.T) {
	c := NewCache(httpConfig(), zap.NewNop())
	defer c.Close()
	_, ok := c.(*memory.Cache)
	assert.True(t, ok)
}

func TestHTTPPageOpener(t *testing.T) {
	open := NewPageOpener(httpConfig(), nil)
	p, err := open("boss")
	require.NoError(t, err)
	_, ok := p.(*page.DocumentPage)
	assert.True(t, ok)
	assert.Equal(t, "about:blank", p.URL())
}

func TestBotFactory(t *testing.T) {
	var opened []string
	open := func(platform string) (page.Page, error) {
		opened = append(opened, platform)
		return page.NewFixturePage(nil), nil
	}
	factory := NewBotFactory(httpConfig(), open, zap.NewNop())

	bot, err := factory("ganji")
	require.NoError(t, err)
	assert.Equal(t, "ganji", bot.Name())

	_, err = factory("lagou")
	assert.Equal(t, errors.ErrTypeInvalidInput, errors.TypeOf(err))
	assert.Equal(t, []string{"ganji", "lagou"}, opened)
}

func TestNewRuntimeWithoutNATS(t *testing.T) {
	ctx := context.Background()
	rt, err := NewRuntime(ctx, httpConfig(), zap.NewNop(), RuntimeOptions{Publish: true, Cache: true})
	require.NoError(t, err)
	assert.Nil(t, rt.Conn)
	assert.Equal(t, []string{"boss", "ganji"}, rt.Service.Platforms())
	assert.NoError(t, rt.Close(ctx))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(httpConfig())
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg := httpConfig()
	cfg.LogLevel = "loud"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}
