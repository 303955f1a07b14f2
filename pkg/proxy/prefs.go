package proxy

import "sync"

// Preferences holds user settings that change proxy behaviour at runtime.
type Preferences interface {
	// UseWebSocket reports whether negotiate responses keep WebSockets.
	UseWebSocket() bool
	// SetUseWebSocket updates and persists the setting.
	SetUseWebSocket(bool) error
}

// MemoryPreferences is an in-process Preferences.
type MemoryPreferences struct {
	mu           sync.RWMutex
	useWebSocket bool
}

// NewMemoryPreferences returns MemoryPreferences with the given setting.
func NewMemoryPreferences(useWebSocket bool) *MemoryPreferences {
	return &MemoryPreferences{useWebSocket: useWebSocket}
}

func (p *MemoryPreferences) UseWebSocket() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.useWebSocket
}

func (p *MemoryPreferences) SetUseWebSocket(v bool) error {
	p.mu.Lock()
	p.useWebSocket = v
	p.mu.Unlock()
	return nil
}
