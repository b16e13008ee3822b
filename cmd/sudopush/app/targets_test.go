package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sudopush/sudopush/pkg/config"
	"github.com/sudopush/sudopush/pkg/envar"
)

// saveFlags snapshots the flag globals and restores them when the test
// finishes, so tests can set them freely.
func saveFlags(t *testing.T) {
	t.Helper()
	origInventory, origHost, origTarget := inventoryPath, hostName, target
	origKey, origPassword := keyFile, password
	origOwner, origMode := owner, mode
	t.Cleanup(func() {
		inventoryPath, hostName, target = origInventory, origHost, origTarget
		keyFile, password = origKey, origPassword
		owner, mode = origOwner, origMode
	})
}

func testInventory() *config.Inventory {
	return &config.Inventory{
		Hosts: []config.Host{
			{Name: "web-1", Address: "10.0.0.5", Port: "22", User: "admin", Password: "secret"},
			{Name: "web-2", Address: "10.0.0.6", Port: "22", User: "admin"},
		},
	}
}

func TestResolveHostTargetWins(t *testing.T) {
	saveFlags(t)
	target = "deploy@192.168.1.9:2222"
	hostName = "web-1"
	password = "adhoc"

	host, err := resolveHost(testInventory())
	if err != nil {
		t.Fatalf("resolveHost failed: %v", err)
	}
	if host.Address != "192.168.1.9" || host.Port != "2222" || host.User != "deploy" {
		t.Errorf("Ad hoc target not honored: %+v", host)
	}
	if host.Password != "adhoc" {
		t.Errorf("Password flag should apply to ad hoc targets, got %q", host.Password)
	}
}

func TestResolveHostByName(t *testing.T) {
	saveFlags(t)
	hostName = "web-2"

	host, err := resolveHost(testInventory())
	if err != nil {
		t.Fatalf("resolveHost failed: %v", err)
	}
	if host.Name != "web-2" || host.Address != "10.0.0.6" {
		t.Errorf("Wrong host resolved: %+v", host)
	}
}

func TestResolveHostUnknownName(t *testing.T) {
	saveFlags(t)
	hostName = "db-1"

	if _, err := resolveHost(testInventory()); err == nil {
		t.Error("Expected an error for an unknown host name")
	}
}

func TestResolveHostSingleHostAutoSelect(t *testing.T) {
	saveFlags(t)

	inv := &config.Inventory{Hosts: []config.Host{
		{Name: "only", Address: "10.0.0.7", Port: "22", User: "root"},
	}}
	host, err := resolveHost(inv)
	if err != nil {
		t.Fatalf("resolveHost failed: %v", err)
	}
	if host.Name != "only" {
		t.Errorf("Single-host inventory should auto-select, got %+v", host)
	}
}

func TestResolveHostAmbiguous(t *testing.T) {
	saveFlags(t)

	if _, err := resolveHost(testInventory()); err == nil {
		t.Error("Expected an error when multiple hosts match and none is picked")
	}
}

func TestResolveHostNoHosts(t *testing.T) {
	saveFlags(t)

	if _, err := resolveHost(&config.Inventory{}); err == nil {
		t.Error("Expected an error for an empty inventory without --target")
	}
}

func TestResolveHostCredentialOverrides(t *testing.T) {
	saveFlags(t)
	hostName = "web-1"
	password = "override"
	keyFile = "/tmp/key"

	host, err := resolveHost(testInventory())
	if err != nil {
		t.Fatalf("resolveHost failed: %v", err)
	}
	if host.Password != "override" || host.KeyFile != "/tmp/key" {
		t.Errorf("Explicit credentials should win, got %+v", host)
	}
}

func TestLoadInventoryMissingDefaultFile(t *testing.T) {
	saveFlags(t)
	t.Setenv(envar.SUDOPUSH_HOME, t.TempDir())

	inv, err := loadInventory()
	if err != nil {
		t.Fatalf("A missing default inventory should not error: %v", err)
	}
	if len(inv.Hosts) != 0 {
		t.Errorf("Expected an empty inventory, got %d hosts", len(inv.Hosts))
	}
}

func TestLoadInventoryExplicitMissingFile(t *testing.T) {
	saveFlags(t)
	inventoryPath = filepath.Join(t.TempDir(), "absent.yaml")

	if _, err := loadInventory(); err == nil {
		t.Error("An explicit --inventory that does not exist should error")
	}
}

func TestLoadInventoryExplicitFile(t *testing.T) {
	saveFlags(t)
	path := filepath.Join(t.TempDir(), "hosts.yaml")
	data := `hosts:
  - name: web-1
    address: 10.0.0.5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	inventoryPath = path

	inv, err := loadInventory()
	if err != nil {
		t.Fatalf("loadInventory failed: %v", err)
	}
	if len(inv.Hosts) != 1 || inv.Hosts[0].Name != "web-1" {
		t.Errorf("Unexpected inventory: %+v", inv)
	}
}

func TestSessionAttrs(t *testing.T) {
	saveFlags(t)
	s := &session{inv: &config.Inventory{
		Defaults: config.Defaults{Owner: "app:app", Mode: "0644"},
	}}

	attrs := s.attrs()
	if attrs.Owner != "app:app" || attrs.Mode != "0644" {
		t.Errorf("Defaults should fill empty flags, got %+v", attrs)
	}

	owner = "root:root"
	attrs = s.attrs()
	if attrs.Owner != "root:root" {
		t.Errorf("Explicit owner should win, got %q", attrs.Owner)
	}
	if attrs.Mode != "0644" {
		t.Errorf("Default mode should still fill, got %q", attrs.Mode)
	}
}
