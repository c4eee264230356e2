// Package faq implements the rule-based answer matcher that runs ahead of
// retrieval. Rules map a literal or regular-expression pattern to a literal
// reply or a reply function over the campus context, with priority-based
// tie-breaking and a per-matcher result cache.
package faq

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/campuscopilot/copilot-go/internal/campus"
)

// DefaultPriority is assigned to rules registered with a zero priority.
const DefaultPriority = 5

// ReplyFunc computes an answer from the campus context and the regexp
// capture groups of the matched pattern (nil for literal-pattern rules).
type ReplyFunc func(c *campus.Context, match []string) string

// Rule maps a pattern to an answer.
//
// Exactly one of Literal or Pattern must be set: Literal matches when the
// normalized query contains it (case-insensitive); Pattern matches by
// regexp, with capture groups handed to ReplyFunc. Exactly one of Reply or
// ReplyFunc must be set. Rules are immutable after registration.
type Rule struct {
	Literal string
	Pattern *regexp.Regexp

	Reply     string
	ReplyFunc ReplyFunc

	// Priority orders competing matches, highest first. Ties keep
	// registration order. Zero means DefaultPriority.
	Priority int

	// Tags categorize the rule ("greeting", "facility", ...). Informational.
	Tags []string
}

// Matcher holds the registered rules and a cache of resolved answers keyed
// by the normalized query.
//
// The cache never expires and is not size-bounded, which is acceptable for
// human-typed queries. One Matcher sits behind every concurrent chat
// request, so rule registration and lookup are guarded by a mutex.
type Matcher struct {
	ctx *campus.Context

	// mu guards rules and cache. FindAnswer writes the cache on every
	// miss, so lookups take the full lock.
	mu    sync.Mutex
	rules []Rule
	cache map[string]string
}

// NewMatcher constructs an empty Matcher bound to the given campus context.
func NewMatcher(c *campus.Context) *Matcher {
	return &Matcher{
		ctx:   c,
		cache: make(map[string]string),
	}
}

// NewDefaultMatcher constructs a Matcher pre-loaded with the built-in campus
// rules (greeting, department heads, contacts, facility locations, leave
// procedure).
func NewDefaultMatcher(c *campus.Context) *Matcher {
	m := NewMatcher(c)
	for _, r := range DefaultRules() {
		// Built-in rules are statically valid.
		if err := m.AddRule(r); err != nil {
			panic(fmt.Sprintf("faq: invalid built-in rule: %v", err))
		}
	}
	return m
}

// AddRule registers a rule and wipes the result cache. The wipe is
// correctness-critical, not an optimization: a newly added higher-priority
// rule must be able to shadow answers already cached for matching queries.
func (m *Matcher) AddRule(r Rule) error {
	if (r.Literal == "") == (r.Pattern == nil) {
		return fmt.Errorf("faq: rule must set exactly one of Literal or Pattern")
	}
	if (r.Reply == "") == (r.ReplyFunc == nil) {
		return fmt.Errorf("faq: rule must set exactly one of Reply or ReplyFunc")
	}
	if r.Priority == 0 {
		r.Priority = DefaultPriority
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, r)
	m.cache = make(map[string]string)
	return nil
}

// Len returns the number of registered rules.
func (m *Matcher) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rules)
}

// match pairs a rule with its capture groups.
type match struct {
	rule   *Rule
	groups []string
}

// FindAnswer resolves the query against the registered rules. It returns
// the highest-priority matching rule's answer, or ok=false when no rule
// matches. Resolved answers are cached under the normalized query.
// Safe for concurrent use.
func (m *Matcher) FindAnswer(query string) (answer string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(query))
	if cached, hit := m.cache[key]; hit {
		return cached, true
	}

	var matches []match
	for i := range m.rules {
		r := &m.rules[i]
		if r.Pattern != nil {
			if groups := r.Pattern.FindStringSubmatch(query); groups != nil {
				matches = append(matches, match{rule: r, groups: groups})
			}
			continue
		}
		if strings.Contains(key, strings.ToLower(r.Literal)) {
			matches = append(matches, match{rule: r})
		}
	}
	if len(matches) == 0 {
		return "", false
	}

	// Highest priority wins; the stable sort keeps registration order for
	// ties, which makes resolution deterministic.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].rule.Priority > matches[j].rule.Priority
	})

	best := matches[0]
	if best.rule.ReplyFunc != nil {
		answer = best.rule.ReplyFunc(m.ctx, best.groups)
	} else {
		answer = best.rule.Reply
	}

	m.cache[key] = answer
	return answer, true
}
