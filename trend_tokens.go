package clustergen

import "strings"

// MaxTrendTokens caps the trend tokens kept per cluster
const MaxTrendTokens = 3

// TrendTokens is an ordered set of short style modifiers. Mutators return a new slice
// and leave the receiver untouched.
type TrendTokens []string

// NewTrendTokens adds tokens in order, silently dropping blanks, duplicates and overflow
func NewTrendTokens(tokens ...string) TrendTokens {
	t := TrendTokens{}
	for _, tok := range tokens {
		t = t.Add(tok)
	}
	return t
}

// Add returns a copy with token appended. Blank, duplicate or fourth tokens are ignored.
func (t TrendTokens) Add(token string) TrendTokens {
	token = strings.TrimSpace(token)
	if token == "" || len(t) >= MaxTrendTokens || t.Contains(token) {
		return t.clone()
	}
	next := make(TrendTokens, len(t), len(t)+1)
	copy(next, t)
	return append(next, token)
}

// Remove returns a copy without token
func (t TrendTokens) Remove(token string) TrendTokens {
	token = strings.TrimSpace(token)
	next := make(TrendTokens, 0, len(t))
	for _, existing := range t {
		if existing != token {
			next = append(next, existing)
		}
	}
	return next
}

// Contains reports whether token is present after trimming
func (t TrendTokens) Contains(token string) bool {
	token = strings.TrimSpace(token)
	for _, existing := range t {
		if existing == token {
			return true
		}
	}
	return false
}

func (t TrendTokens) clone() TrendTokens {
	next := make(TrendTokens, len(t))
	copy(next, t)
	return next
}
