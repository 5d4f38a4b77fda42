package services

import (
	"context"

	"github.com/ardwiinoo/launch-indexer/internal/domain/repositories"
)

// tokenCache is the per-run token existence cache. One is created for
// each projection pass and discarded afterward; it only exists to
// save a store round-trip per event and is never a source of truth
// across runs.
type tokenCache struct {
	repo  repositories.TokenRepository
	known map[string]bool
}

func newTokenCache(repo repositories.TokenRepository) *tokenCache {
	return &tokenCache{
		repo:  repo,
		known: make(map[string]bool),
	}
}

// Has reports whether a token exists in the derived store, falling
// back to a store lookup on first miss. Both outcomes are cached.
func (c *tokenCache) Has(ctx context.Context, address string) (bool, error) {
	if exists, seen := c.known[address]; seen {
		return exists, nil
	}

	token, err := c.repo.GetByAddress(ctx, address)
	if err != nil {
		return false, err
	}

	exists := token != nil
	c.known[address] = exists
	return exists, nil
}

// Add records a token created during this run (write-through on
// creation)
func (c *tokenCache) Add(address string) {
	c.known[address] = true
}
