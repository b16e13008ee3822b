package envar

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSudopushHome(t *testing.T) {
	t.Setenv(SUDOPUSH_HOME, "/srv/sudopush")
	if got := SudopushHome(); got != "/srv/sudopush" {
		t.Errorf("SudopushHome() = %q, expected override to win", got)
	}

	t.Setenv(SUDOPUSH_HOME, "")
	expected := filepath.Join(UserHome(), ".sudopush")
	if got := SudopushHome(); got != expected {
		t.Errorf("SudopushHome() = %q, expected %q", got, expected)
	}
}

func TestDefaultInventoryPath(t *testing.T) {
	t.Setenv(SUDOPUSH_HOME, "/srv/sudopush")
	if got := DefaultInventoryPath(); got != filepath.Join("/srv/sudopush", "hosts.yaml") {
		t.Errorf("DefaultInventoryPath() = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("No home directory: %v", err)
	}

	tests := []struct {
		in       string
		expected string
	}{
		{"~", home},
		{"~/.ssh/id_ed25519", filepath.Join(home, ".ssh", "id_ed25519")},
		{"/etc/key", "/etc/key"},
		{"relative/key", "relative/key"},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.expected {
			t.Errorf("ExpandHome(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}
