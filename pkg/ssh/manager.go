package ssh

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sudopush/sudopush/pkg/config"
	"github.com/sudopush/sudopush/pkg/envar"
	"github.com/sudopush/sudopush/pkg/log"
)

// Manager owns the SSH clients of an invocation: it dials hosts from the
// inventory on first use, hands out the per-host handles the
// provisioning operations take, serializes operations per host, and
// closes everything on shutdown.
type Manager struct {
	inventory *config.Inventory
	clients   map[string]*Client
	mutex     sync.RWMutex
	locks     *hostLocks
}

// NewManager creates a manager over an inventory. The inventory may be
// nil when only ad hoc clients are registered.
func NewManager(inventory *config.Inventory) *Manager {
	return &Manager{
		inventory: inventory,
		clients:   make(map[string]*Client),
		locks:     newHostLocks(),
	}
}

// NewClientForHost builds an unconnected client from an inventory entry,
// loading the private key file when one is configured.
func NewClientForHost(host *config.Host) (*Client, error) {
	privKey := ""
	if host.KeyFile != "" {
		keyPath := envar.ExpandHome(host.KeyFile)
		content, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH private key file %s: %w", keyPath, err)
		}
		privKey = string(content)
	}
	return NewClient(host.Address, host.Port, host.User, host.Password, privKey), nil
}

// GetClient returns the client for a named host, dialing it on first
// use.
func (m *Manager) GetClient(name string) (*Client, error) {
	m.mutex.RLock()
	client, exists := m.clients[name]
	m.mutex.RUnlock()
	if exists {
		return client, nil
	}

	if m.inventory == nil {
		return nil, fmt.Errorf("no inventory loaded, host %q is unknown", name)
	}
	host, ok := m.inventory.Get(name)
	if !ok {
		return nil, fmt.Errorf("host %q not found in inventory", name)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	// Double-check locking
	if client, exists = m.clients[name]; exists {
		return client, nil
	}

	client, err := NewClientForHost(host)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to host %s: %w", name, err)
	}
	m.clients[name] = client
	return client, nil
}

// AddClient registers an already-built client under a name, replacing
// any previous one. Used for ad hoc targets that are not in the
// inventory.
func (m *Manager) AddClient(name string, client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if old, exists := m.clients[name]; exists {
		old.Close()
	}
	m.clients[name] = client
}

// WithHostLock runs fn while holding the per-host lock, so concurrent
// callers never interleave remote operations against the same host.
func (m *Manager) WithHostLock(ctx context.Context, name string, fn func() error) error {
	if err := m.locks.Lock(ctx, name); err != nil {
		return fmt.Errorf("failed to lock host %s: %w", name, err)
	}
	defer m.locks.Unlock(name)
	return fn()
}

// CloseClient closes and removes the client for the named host.
func (m *Manager) CloseClient(name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if client, exists := m.clients[name]; exists {
		client.Close()
		delete(m.clients, name)
	}
}

// CloseAll closes every open client. Close failures are logged and do
// not stop the remaining clients from closing.
func (m *Manager) CloseAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for name, client := range m.clients {
		if err := client.Close(); err != nil {
			log.Warningf("Failed to close SSH client for host %s: %v", name, err)
		}
		delete(m.clients, name)
	}
}
