// Package agent manages the configured inference providers.
package agent

import (
	"fmt"
	"sync"

	"filingqa/pkg/core/llm"
)

// Config selects the active provider and optional per-provider model
// overrides. Loaded from YAML in the entry points.
type Config struct {
	ActiveProvider string            `yaml:"active_provider"`
	Models         map[string]string `yaml:"models"`
}

// Manager holds the provider registry. The active provider name is written by
// the switch endpoint and read on every request, so it sits behind a lock.
type Manager struct {
	mu        sync.RWMutex
	active    string
	providers map[string]llm.Provider
}

// NewManager builds providers from config. Unknown active_provider values
// fall back to deepseek at lookup time.
func NewManager(config Config) *Manager {
	return &Manager{
		active: config.ActiveProvider,
		providers: map[string]llm.Provider{
			"deepseek": &llm.DeepSeekProvider{Model: config.Models["deepseek"]},
			"gemini":   &llm.GeminiProvider{Model: config.Models["gemini"]},
		},
	}
}

// GetProvider returns the active provider.
func (m *Manager) GetProvider() llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.providers[m.active]; ok {
		return p
	}
	return m.providers["deepseek"]
}

// GetProviderByName retrieves a provider by name, nil when unknown.
func (m *Manager) GetProviderByName(name string) llm.Provider {
	return m.providers[name]
}

// SetGlobalProvider switches the active provider.
func (m *Manager) SetGlobalProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}

	m.mu.Lock()
	m.active = name
	m.mu.Unlock()

	fmt.Printf("Global provider set to: %s\n", name)
	return nil
}

// GetActiveProvider returns the active provider name.
func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Available lists the registered provider names.
func (m *Manager) Available() []string {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	return names
}
