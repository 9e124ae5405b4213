package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Chain tries providers in priority order and returns the first
// non-empty result
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain creates a Chain. Providers are tried in the order given.
func NewChain(logger *slog.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{providers: providers, logger: logger}
}

// Name lists the chained provider names
func (c *Chain) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

// Len returns the number of chained providers
func (c *Chain) Len() int {
	return len(c.providers)
}

// Search runs the query against each provider until one returns hits.
// An empty result with no errors is not an error.
func (c *Chain) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if len(c.providers) == 0 {
		return nil, ErrNoProvider
	}

	var errs []error
	for _, p := range c.providers {
		hits, err := p.Search(ctx, query, limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.WarnContext(ctx, "search provider failed", "provider", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if len(hits) > 0 {
			return Truncate(hits, limit), nil
		}
		c.logger.DebugContext(ctx, "search provider returned nothing", "provider", p.Name(), "query", query)
	}

	if len(errs) == len(c.providers) {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}
