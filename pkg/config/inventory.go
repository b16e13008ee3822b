package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sudopush/sudopush/pkg/envar"
)

const (
	DefaultUser = "root"
	DefaultPort = "22"
)

// Host describes one remote machine that can be provisioned.
type Host struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Port     string `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	KeyFile  string `yaml:"keyFile,omitempty"` // Path to the private key (e.g. "~/.ssh/id_ed25519")
}

// Defaults fill in host fields and attributes the command line leaves
// unset.
type Defaults struct {
	User  string `yaml:"user,omitempty"`
	Owner string `yaml:"owner,omitempty"` // e.g. "root:root"
	Mode  string `yaml:"mode,omitempty"`  // e.g. "0644"
}

// Inventory is the parsed host list (hosts.yaml).
type Inventory struct {
	Hosts    []Host   `yaml:"hosts"`
	Defaults Defaults `yaml:"defaults,omitempty"`
}

// Load reads, validates and default-fills an inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory file %s: %w", path, err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("failed to parse inventory file %s: %w", path, err)
	}
	if err := inv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid inventory %s: %w", path, err)
	}
	inv.applyDefaults()
	return &inv, nil
}

// LoadDefault reads the inventory from its default location under the
// sudopush home directory.
func LoadDefault() (*Inventory, error) {
	return Load(envar.DefaultInventoryPath())
}

// Validate checks that every host carries a name and an address, and
// that names are unique.
func (inv *Inventory) Validate() error {
	seen := make(map[string]bool, len(inv.Hosts))
	for i, h := range inv.Hosts {
		if h.Name == "" {
			return fmt.Errorf("host entry %d has no name", i)
		}
		if h.Address == "" {
			return fmt.Errorf("host %q has no address", h.Name)
		}
		if seen[h.Name] {
			return fmt.Errorf("duplicate host name %q", h.Name)
		}
		seen[h.Name] = true
	}
	return nil
}

func (inv *Inventory) applyDefaults() {
	for i := range inv.Hosts {
		h := &inv.Hosts[i]
		if h.User == "" {
			h.User = inv.Defaults.User
		}
		if h.User == "" {
			h.User = DefaultUser
		}
		if h.Port == "" {
			h.Port = DefaultPort
		}
	}
}

// Get returns the named host.
func (inv *Inventory) Get(name string) (*Host, bool) {
	for i := range inv.Hosts {
		if inv.Hosts[i].Name == name {
			return &inv.Hosts[i], true
		}
	}
	return nil, false
}

// MergeAttrs returns the given owner and mode with inventory defaults
// filled into empty fields. Explicit values always win.
func (inv *Inventory) MergeAttrs(owner, mode string) (string, string) {
	if owner == "" {
		owner = inv.Defaults.Owner
	}
	if mode == "" {
		mode = inv.Defaults.Mode
	}
	return owner, mode
}

// ParseTarget turns an ad hoc "user@host:port" string into a Host. The
// user defaults to root and the port to 22.
func ParseTarget(target string) (*Host, error) {
	if target == "" {
		return nil, fmt.Errorf("empty target")
	}

	user := DefaultUser
	rest := target
	if at := strings.LastIndex(target, "@"); at >= 0 {
		user = target[:at]
		rest = target[at+1:]
		if user == "" {
			return nil, fmt.Errorf("invalid target %q: empty user", target)
		}
	}

	host := rest
	port := DefaultPort
	if colon := strings.LastIndex(rest, ":"); colon >= 0 {
		host = rest[:colon]
		port = rest[colon+1:]
		if port == "" {
			return nil, fmt.Errorf("invalid target %q: empty port", target)
		}
	}
	if host == "" {
		return nil, fmt.Errorf("invalid target %q: empty host", target)
	}

	return &Host{Name: host, Address: host, Port: port, User: user}, nil
}
