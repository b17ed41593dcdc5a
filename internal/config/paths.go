package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".postbot"

// Paths holds resolved filesystem paths for postbot data.
type Paths struct {
	Base   string // ~/.postbot
	Config string // ~/.postbot/config.yaml
	Data   string // ~/.postbot/data
}

// ResolvePaths computes all standard paths from the home directory.
// If POSTBOT_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("POSTBOT_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Data:   filepath.Join(base, "data"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Data} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
