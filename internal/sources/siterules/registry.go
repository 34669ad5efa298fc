package siterules

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/linksaver/internal/extract"
)

// Builtin holds the rules that apply without any rules file.
var Builtin = []extract.SiteRule{
	{Host: "xpectrum-ai.com"},
}

// Registry holds the active site rules. It is safe for concurrent use: the
// summary chain reads it on every page fetch while the reloader swaps it.
type Registry struct {
	mu         sync.RWMutex
	rules      []extract.SiteRule
	lastReload time.Time
}

// NewRegistry creates a registry seeded with the builtin rules.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Replace(nil)
	return r
}

// Replace installs rules loaded from file. Builtin rules stay active unless
// a loaded rule targets the same host.
func (r *Registry) Replace(loaded []extract.SiteRule) {
	merged := make([]extract.SiteRule, 0, len(loaded)+len(Builtin))
	hosts := make(map[string]bool, len(loaded))
	for _, rule := range loaded {
		merged = append(merged, rule.WithDefaults())
		hosts[rule.Host] = true
	}
	for _, rule := range Builtin {
		if !hosts[rule.Host] {
			merged = append(merged, rule.WithDefaults())
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = merged
	r.lastReload = time.Now()
}

// Match returns the first rule whose host matches.
func (r *Registry) Match(host string) (extract.SiteRule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rule := range r.rules {
		if rule.Matches(host) {
			return rule, true
		}
	}
	return extract.SiteRule{}, false
}

// Count returns the number of active rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// LastReload returns when the rules were last replaced.
func (r *Registry) LastReload() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastReload
}
