package config

import "sync"

// Preferences exposes the preferences section of a Config and persists
// every change to its file.
type Preferences struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewPreferences returns Preferences backed by cfg.
func NewPreferences(cfg *Config) *Preferences {
	return &Preferences{cfg: cfg}
}

// UseWebSocket reports the stored preference.
func (p *Preferences) UseWebSocket() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Preferences.UseWebSocket
}

// SetUseWebSocket stores v and saves the config. The in-memory value is
// rolled back if saving fails.
func (p *Preferences) SetUseWebSocket(v bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	old := p.cfg.Preferences.UseWebSocket
	p.cfg.Preferences.UseWebSocket = v
	if err := p.cfg.Save(); err != nil {
		p.cfg.Preferences.UseWebSocket = old
		return err
	}
	return nil
}
