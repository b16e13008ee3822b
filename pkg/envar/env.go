package envar

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	SUDOPUSH_HOME = "SUDOPUSH_HOME"
)

func UserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return home
}

func SudopushHome() string {
	home := os.Getenv(SUDOPUSH_HOME)
	if home == "" {
		return filepath.Join(UserHome(), ".sudopush")
	}
	return home
}

func SudopushCacheDir() string {
	return filepath.Join(SudopushHome(), "cache")
}

// DefaultInventoryPath is where hosts.yaml is looked up when --inventory
// is not given.
func DefaultInventoryPath() string {
	return filepath.Join(SudopushHome(), "hosts.yaml")
}

// ExpandHome resolves a leading "~" against the current user's home
func ExpandHome(p string) string {
	if p == "~" {
		return UserHome()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(UserHome(), p[2:])
	}
	return p
}
