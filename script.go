package arcade

import (
	"fmt"
	"os"
	"path/filepath"
)

// LaunchScript renders the shell wrapper for a game.
func LaunchScript(cfg Config, m *GameManifest) (string, error) {
	if !m.Language.Supported() {
		return "", &UnsupportedLanguageError{Game: m.Name, Language: m.Language}
	}
	return fmt.Sprintf("#!/bin/sh\n%s\n", cfg.InstalledBinary(m)), nil
}

// WriteLaunchScript writes <ScriptsDir>/<name>.sh with mode 0755.
func WriteLaunchScript(cfg Config, m *GameManifest) (string, error) {
	script, err := LaunchScript(cfg, m)
	if err != nil {
		return "", err
	}
	path := cfg.ScriptPath(m)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		return "", err
	}
	// WriteFile leaves the mode of an existing file alone.
	if err := os.Chmod(path, 0o755); err != nil {
		return "", err
	}
	cfg.logger().With("game", m.Name).Info("wrote launch script", "path", path)
	return path, nil
}
