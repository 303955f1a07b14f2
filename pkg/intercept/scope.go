package intercept

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"strings"
)

// Scope limits interception to a set of hosts. Patterns use shell glob
// syntax, e.g. "*.example.com". An empty Scope contains every host.
type Scope struct {
	patterns []string
}

// NewScope validates patterns and returns a Scope.
func NewScope(patterns ...string) (Scope, error) {
	s := Scope{}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, err := path.Match(p, ""); err != nil {
			return Scope{}, fmt.Errorf("intercept: invalid scope pattern %q: %w", p, err)
		}
		s.patterns = append(s.patterns, p)
	}
	return s, nil
}

// Patterns returns the normalized patterns.
func (s Scope) Patterns() []string {
	return append([]string(nil), s.patterns...)
}

// Contains reports whether u's host is in scope.
func (s Scope) Contains(u *url.URL) bool {
	if len(s.patterns) == 0 {
		return true
	}
	if u == nil {
		return false
	}
	return s.ContainsHost(u.Host)
}

// ContainsHost reports whether host, with or without a port, is in scope.
func (s Scope) ContainsHost(host string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	for _, p := range s.patterns {
		if ok, _ := path.Match(p, host); ok {
			return true
		}
	}
	return false
}
