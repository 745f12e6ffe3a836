package redisx

import (
	"github.com/redis/go-redis/v9"
)

// New returns a client for addr, or nil when addr is empty. Callers treat a
// nil client as "cache disabled"; the ledger stays the source of truth either
// way.
func New(addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr})
}
