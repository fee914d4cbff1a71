// Package guard flags likely prompt-injection attempts. Detection is
// heuristic keyword and pattern matching on single messages; it does
// not try to be cryptographically sound.
package guard

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bowerhall/rene/internal/logger"
)

type Attempt struct {
	At      time.Time
	Message string
}

type Guard struct {
	keywords  []string
	patterns  []*regexp.Regexp
	replies   []string
	warnAfter int

	mu       sync.Mutex
	attempts map[string][]Attempt
}

func New(rules Rules, warnAfter int) (*Guard, error) {
	if warnAfter <= 0 {
		warnAfter = 5
	}

	patterns := make([]*regexp.Regexp, 0, len(rules.Patterns))
	for _, p := range rules.Patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	return &Guard{
		keywords:  rules.Keywords,
		patterns:  patterns,
		replies:   rules.Replies,
		warnAfter: warnAfter,
		attempts:  make(map[string][]Attempt),
	}, nil
}

// Check reports whether text looks like an injection attempt. First
// keyword or pattern hit wins; no scoring, no conversation context.
func (g *Guard) Check(text string) bool {
	lower := strings.ToLower(text)

	for _, kw := range g.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	for _, re := range g.patterns {
		if re.MatchString(lower) {
			return true
		}
	}

	return false
}

// SafeReply returns one of the fixed deflection replies. The choice is
// random and never derived from the flagged content.
func (g *Guard) SafeReply() string {
	return g.replies[rand.Intn(len(g.replies))]
}

// Record appends to the per-user attempt log. Purely observational:
// crossing the threshold emits a warning, nothing more.
func (g *Guard) Record(userID, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.attempts[userID] = append(g.attempts[userID], Attempt{At: time.Now(), Message: text})

	if len(g.attempts[userID]) >= g.warnAfter {
		logger.Warn("repeated injection attempts", "user", userID, "count", len(g.attempts[userID]))
	}
}

// Attempts reports how many flagged messages userID has sent.
func (g *Guard) Attempts(userID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.attempts[userID])
}
