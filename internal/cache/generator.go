package cache

import (
	"context"
	"io"
	"log/slog"

	"github.com/dshills/prbot/internal/providers"
)

// Generator serves repeated requests from a Cache and forwards the rest.
// Failed generations are never cached.
type Generator struct {
	next  providers.Generator
	model string
	cache *Cache
	log   *slog.Logger
}

// Wrap returns next with responses cached in c. model is part of the key so
// switching models never serves a stale answer.
func Wrap(next providers.Generator, model string, c *Cache, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{next: next, model: model, cache: c, log: log}
}

// Name reports the wrapped provider's name.
func (g *Generator) Name() string { return g.next.Name() }

// Generate implements providers.Generator.
func (g *Generator) Generate(ctx context.Context, req providers.Request) (providers.Response, error) {
	key := Key(g.next.Name(), g.model, req)
	if entry, ok := g.cache.Get(key); ok {
		g.log.DebugContext(ctx, "serving response from cache", "provider", entry.Provider, "key", key[:12])
		return providers.Response{Content: entry.Content}, nil
	}

	resp, err := g.next.Generate(ctx, req)
	if err != nil {
		return resp, err
	}
	if err := g.cache.Put(Entry{
		Key:        key,
		Provider:   g.next.Name(),
		Content:    resp.Content,
		TokensUsed: resp.TokensUsed,
	}); err != nil {
		g.log.WarnContext(ctx, "caching response failed", "error", err)
	}
	return resp, nil
}

// Close closes the wrapped provider when it holds resources.
func (g *Generator) Close() error {
	if c, ok := g.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
