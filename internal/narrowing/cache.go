package narrowing

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_narrowing_cache_lookups_total",
		Help: "Narrowing state cache lookups by result",
	}, []string{"result"})
)

// CachedEngine memoizes Compute by answer fingerprint.
// Concurrent misses for the same history share one computation.
type CachedEngine struct {
	*Engine
	cache  *gocache.Cache
	flight singleflight.Group
}

func NewCachedEngine(engine *Engine, ttl, cleanupInterval time.Duration) *CachedEngine {
	return &CachedEngine{
		Engine: engine,
		cache:  gocache.New(ttl, cleanupInterval),
	}
}

func (c *CachedEngine) Compute(answers map[string]string) *entity.NarrowingState {
	key := Fingerprint(answers)

	if v, ok := c.cache.Get(key); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return cloneState(v.(*entity.NarrowingState))
	}
	cacheLookups.WithLabelValues("miss").Inc()

	v, _, _ := c.flight.Do(key, func() (any, error) {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
		state := c.Engine.Compute(answers)
		c.cache.SetDefault(key, state)
		return state, nil
	})

	return cloneState(v.(*entity.NarrowingState))
}

// Fingerprint is a canonical digest of an answer history
func Fingerprint(answers map[string]string) string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0x1f})
		h.Write([]byte(answers[k]))
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func cloneState(s *entity.NarrowingState) *entity.NarrowingState {
	out := *s
	out.Candidates = append([]string(nil), s.Candidates...)
	if s.Next != nil {
		q := *s.Next
		q.Options = append([]entity.QuestionOption(nil), s.Next.Options...)
		out.Next = &q
	}
	if s.Outcome != nil {
		o := *s.Outcome
		out.Outcome = &o
	}
	return &out
}
