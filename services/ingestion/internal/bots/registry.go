package bots

import (
	"fmt"

	"jobbots/common/errors"
	"jobbots/services/ingestion/internal/page"

	"go.uber.org/zap"
)

type constructor func(p page.Page, opts Options, logger *zap.Logger) Bot

// registry lists the supported platforms in the order results are merged.
var registry = []struct {
	name string
	new  constructor
}{
	{PlatformBoss, func(p page.Page, o Options, l *zap.Logger) Bot { return NewBossBot(p, o, l) }},
	{PlatformGanji, func(p page.Page, o Options, l *zap.Logger) Bot { return NewGanjiBot(p, o, l) }},
}

// Platforms returns the supported platform keys.
func Platforms() []string {
	names := make([]string, len(registry))
	for i, r := range registry {
		names[i] = r.name
	}
	return names
}

// New builds the bot for platform on top of p.
func New(platform string, p page.Page, opts Options, logger *zap.Logger) (Bot, error) {
	for _, r := range registry {
		if r.name == platform {
			return r.new(p, opts, logger), nil
		}
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unsupported platform %q", platform), nil)
}

// PageOpener gives each bot its own page.
type PageOpener func(platform string) (page.Page, error)
