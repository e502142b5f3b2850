package auth

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ReplayGuard remembers signatures that have already authenticated
// successfully, so an identical request captured and resubmitted inside the
// freshness window is rejected the second time. Implementations must be safe
// for concurrent use; nothing beyond linearizable read/insert is required
// since each signature is independent.
type ReplayGuard interface {
	// Seen reports whether sig was recorded and has not yet expired.
	Seen(sig string) bool

	// Record marks sig as used. Entries only need to outlive the freshness
	// window; beyond that the timestamp check rejects the request anyway.
	Record(sig string)

	// Stop releases any background resources held by the guard.
	Stop()
}

// ttlReplayGuard backs ReplayGuard with an expiring in-memory cache. This is
// the only shared mutable state in the protocol; ttlcache handles locking.
type ttlReplayGuard struct {
	cache *ttlcache.Cache[string, struct{}]
}

// NewReplayGuard returns a guard whose entries expire ttl after being
// recorded. Expired entries are also swept by a background goroutine; call
// Stop when the guard is no longer needed.
func NewReplayGuard(ttl time.Duration) ReplayGuard {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, struct{}](ttl),
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)
	go cache.Start()
	return &ttlReplayGuard{cache: cache}
}

func (g *ttlReplayGuard) Seen(sig string) bool {
	return g.cache.Get(sig) != nil
}

func (g *ttlReplayGuard) Record(sig string) {
	g.cache.Set(sig, struct{}{}, ttlcache.DefaultTTL)
}

func (g *ttlReplayGuard) Stop() {
	g.cache.Stop()
}

// NopReplayGuard disables replay tracking. The freshness window still bounds
// how long a captured request stays usable, but an identical request
// resubmitted inside that window is accepted again. Known weaker fallback.
type NopReplayGuard struct{}

func (NopReplayGuard) Seen(string) bool { return false }

func (NopReplayGuard) Record(string) {}

func (NopReplayGuard) Stop() {}
