package ratelimit

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Budget caps how many requests each named provider may make during a run.
// A limit of 0 means unlimited.
type Budget struct {
	mu       sync.Mutex
	limits   map[string]int
	fallback int
	used     map[string]int
	denied   map[string]int
	log      *slog.Logger
}

// NewBudget applies perProvider to every provider not listed in limits.
func NewBudget(perProvider int, limits map[string]int, log *slog.Logger) *Budget {
	l := make(map[string]int, len(limits))
	for k, v := range limits {
		l[k] = v
	}
	return &Budget{
		limits:   l,
		fallback: perProvider,
		used:     make(map[string]int),
		denied:   make(map[string]int),
		log:      log,
	}
}

func (b *Budget) limit(name string) int {
	if v, ok := b.limits[name]; ok {
		return v
	}
	return b.fallback
}

// Allow reports whether name still has budget, without consuming it.
func (b *Budget) Allow(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := b.limit(name)
	return capacity <= 0 || b.used[name] < capacity
}

// Use consumes one request for name.
func (b *Budget) Use(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := b.limit(name)
	if capacity > 0 && b.used[name] >= capacity {
		b.denied[name]++
		b.log.Warn("request budget reached", "provider", name, "used", b.used[name], "limit", capacity)
		return fmt.Errorf("%s request budget exceeded (%d/%d)", name, b.used[name], capacity)
	}

	b.used[name]++
	b.log.Debug("request budget", "provider", name, "used", b.used[name], "limit", capacity)
	return nil
}

// Stats returns used and denied counts per provider.
func (b *Budget) Stats() map[string][2]int {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string][2]int)
	for name, n := range b.used {
		out[name] = [2]int{n, b.denied[name]}
	}
	for name, n := range b.denied {
		if _, ok := out[name]; !ok {
			out[name] = [2]int{0, n}
		}
	}
	return out
}

// LogStats writes one line per provider.
func (b *Budget) LogStats() {
	stats := b.Stats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b.mu.Lock()
		capacity := b.limit(name)
		b.mu.Unlock()
		b.log.Info("translation requests", "provider", name, "used", stats[name][0], "denied", stats[name][1], "limit", capacity)
	}
}
