package intercept

import (
	"net/url"
	"testing"
)

func TestScopeContains(t *testing.T) {
	scope, err := NewScope("*.example.com", " Localhost ", "")
	if err != nil {
		t.Fatalf("NewScope: %v", err)
	}
	if got := len(scope.Patterns()); got != 2 {
		t.Fatalf("len(Patterns()) = %d, want 2", got)
	}

	tests := []struct {
		host string
		want bool
	}{
		{"app.example.com", true},
		{"APP.Example.com:8443", true},
		{"example.com", false},
		{"localhost:5000", true},
		{"evil.test", false},
	}
	for _, tc := range tests {
		t.Run(tc.host, func(t *testing.T) {
			if got := scope.Contains(&url.URL{Host: tc.host}); got != tc.want {
				t.Errorf("Contains(%q) = %v, want %v", tc.host, got, tc.want)
			}
		})
	}
}

func TestEmptyScopeContainsEverything(t *testing.T) {
	var scope Scope
	if !scope.Contains(nil) || !scope.ContainsHost("anything:1") {
		t.Error("empty scope should contain every host")
	}
}

func TestNewScopeRejectsBadPattern(t *testing.T) {
	if _, err := NewScope("[a-"); err == nil {
		t.Error("NewScope accepted malformed pattern")
	}
}
