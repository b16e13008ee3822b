package app

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/sudopush/sudopush/pkg/config"
	"github.com/sudopush/sudopush/pkg/envar"
	"github.com/sudopush/sudopush/pkg/log"
	"github.com/sudopush/sudopush/pkg/provision"
	"github.com/sudopush/sudopush/pkg/ssh"
)

// session is the per-invocation connection state: the resolved host, the
// inventory it came from, and the manager owning the SSH client.
type session struct {
	host    *config.Host
	inv     *config.Inventory
	manager *ssh.Manager
	client  *ssh.Client
}

// loadInventory reads the inventory named by --inventory, or the default
// one. A missing default file is not an error, ad hoc targets work
// without any inventory.
func loadInventory() (*config.Inventory, error) {
	if inventoryPath != "" {
		return config.Load(envar.ExpandHome(inventoryPath))
	}
	inv, err := config.LoadDefault()
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("No inventory file at %s", envar.DefaultInventoryPath())
		return &config.Inventory{}, nil
	}
	return inv, err
}

// resolveHost picks the host to operate on: --target wins over --host,
// and an inventory with a single host needs neither.
func resolveHost(inv *config.Inventory) (*config.Host, error) {
	if target != "" {
		host, err := config.ParseTarget(target)
		if err != nil {
			return nil, err
		}
		host.Password = password
		host.KeyFile = keyFile
		return host, nil
	}

	var host *config.Host
	switch {
	case hostName != "":
		h, ok := inv.Get(hostName)
		if !ok {
			return nil, fmt.Errorf("host %q not found in inventory", hostName)
		}
		host = h
	case len(inv.Hosts) == 1:
		host = &inv.Hosts[0]
		log.Debugf("Using the only inventory host %q", host.Name)
	case len(inv.Hosts) == 0:
		return nil, fmt.Errorf("no hosts configured, provide --target or an inventory file")
	default:
		return nil, fmt.Errorf("inventory has %d hosts, pick one with --host", len(inv.Hosts))
	}

	// Explicit credentials win over the inventory's
	if password != "" {
		host.Password = password
	}
	if keyFile != "" {
		host.KeyFile = keyFile
	}
	return host, nil
}

// connect resolves the host and opens its SSH client.
func connect() (*session, error) {
	inv, err := loadInventory()
	if err != nil {
		return nil, err
	}
	host, err := resolveHost(inv)
	if err != nil {
		return nil, err
	}

	manager := ssh.NewManager(inv)
	var client *ssh.Client
	if target == "" {
		client, err = manager.GetClient(host.Name)
	} else {
		client, err = ssh.NewClientForHost(host)
		if err == nil {
			manager.AddClient(host.Name, client)
		}
	}
	if err != nil {
		return nil, err
	}

	log.Debugf("Operating on host %s (%s@%s:%s)", host.Name, host.User, host.Address, host.Port)
	return &session{host: host, inv: inv, manager: manager, client: client}, nil
}

// Close shuts down every client the session opened.
func (s *session) Close() {
	s.manager.CloseAll()
}

// attrs merges the --owner/--mode flags with the inventory defaults.
func (s *session) attrs() provision.Attrs {
	o, m := s.inv.MergeAttrs(owner, mode)
	return provision.Attrs{Owner: o, Mode: m}
}
