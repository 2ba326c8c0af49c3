// Package featureflags evaluates runtime switches configured through
// FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Known flags.
const (
	// FriendsFeedPublicStrangers keeps public posts from non-friends in the
	// friends feed. On unless configured otherwise.
	FriendsFeedPublicStrangers = "friends_feed_public_strangers"
)

var defaults = map[string]bool{
	FriendsFeedPublicStrangers: true,
}

// rule is a parsed flag value: fully on, fully off, or a percentage rollout.
type rule struct {
	raw     string
	percent int
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{raw: value, percent: 100}, true
	case "off", "false", "0":
		return rule{raw: value, percent: 0}, true
	}
	pct, ok := strings.CutSuffix(value, "%")
	if !ok {
		return rule{}, false
	}
	n, err := strconv.Atoi(pct)
	if err != nil {
		return rule{}, false
	}
	return rule{raw: value, percent: min(max(n, 0), 100)}, true
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "friends_feed_public_strangers=off,new_stats=25%"
type Manager struct {
	rules map[string]rule
}

// NewManager creates a feature-flag manager from a comma-separated config
// string. Malformed entries are ignored.
func NewManager(raw string) *Manager {
	out := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" {
			continue
		}
		if r, ok := parseRule(value); ok {
			out[key] = r
		}
	}
	return &Manager{rules: out}
}

// Enabled returns whether a flag is enabled for a given user. Flags that are
// not configured fall back to their built-in default, which is off for
// unknown names. A percentage rollout is deterministic per user and never
// includes the anonymous user 0.
func (m *Manager) Enabled(name string, userID uint) bool {
	name = normalize(name)
	var r rule
	var ok bool
	if m != nil {
		r, ok = m.rules[name]
	}
	if !ok {
		return defaults[name]
	}

	switch {
	case r.percent <= 0:
		return false
	case r.percent >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < r.percent
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for k, r := range m.rules {
		out[k] = r.raw
	}
	return out
}

// Snapshot returns evaluated flag status for one user, including flags that
// are only known through their defaults.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.rules)+len(defaults))
	for _, name := range m.Names() {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

// Names lists configured and built-in flags in sorted order.
func (m *Manager) Names() []string {
	seen := make(map[string]struct{}, len(m.rules)+len(defaults))
	for name := range defaults {
		seen[name] = struct{}{}
	}
	for name := range m.rules {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", name, userID)
	return int(h.Sum32() % 100)
}
