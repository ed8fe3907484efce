// Package config resolves the on-disk locations used by docstash.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetDataDir resolves the base directory for all docstash storage. The
// DOCSTASH_DIR environment variable wins, then the XDG data home, then the
// user's home directory.
func GetDataDir() string {
	if explicit := os.Getenv("DOCSTASH_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "docstash")
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "docstash")
}

// GetDBPath returns the absolute path to the SQLite database file.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), "index.db")
}

// GetObjectsDir returns the directory that stores encrypted page files.
func GetObjectsDir() string {
	return filepath.Join(GetDataDir(), "objects")
}

// GetThumbnailsDir returns the directory that stores encrypted thumbnails.
func GetThumbnailsDir() string {
	return filepath.Join(GetDataDir(), "thumbnails")
}

// GetSettingsPath returns the path of the secure settings file.
func GetSettingsPath() string {
	return filepath.Join(GetDataDir(), "settings.json")
}
