package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const DefaultLabel = "Default"

var (
	ErrNoConfig     = errors.New("no config selected")
	ErrEmptyLabel   = errors.New("label cannot be empty")
	ErrConfigExists = errors.New("config already exists")
	ErrNoSuchConfig = errors.New("config does not exist")
)

// ConfigRoot is $EBANGLA2EPUB_HOME when set, otherwise the platform config
// directory plus "ebangla2epub".
func ConfigRoot() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}

	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "ebangla2epub")
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ebangla2epub")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ebangla2epub")
}

func ConfigsDir() string {
	return filepath.Join(ConfigRoot(), "configs")
}

func CurrentLabelFile() string {
	return filepath.Join(ConfigRoot(), "current_config")
}

func ensureDirs() error {
	return os.MkdirAll(ConfigsDir(), 0o755)
}

func labelPath(label string) string {
	return filepath.Join(ConfigsDir(), label+".yaml")
}

func checkLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrEmptyLabel
	}
	if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return fmt.Errorf("invalid label %q", label)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func CurrentLabel() (string, error) {
	if err := ensureDirs(); err != nil {
		return "", err
	}

	b, err := os.ReadFile(CurrentLabelFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func ActiveConfigPath() (string, error) {
	label, err := CurrentLabel()
	if err != nil && !errors.Is(err, ErrNoConfig) {
		return "", err
	}
	if label == "" {
		return "", ErrNoConfig
	}

	return labelPath(label), nil
}

// ConfigPathByLabel returns the file of an existing profile.
func ConfigPathByLabel(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}

	path := labelPath(label)
	if !exists(path) {
		return "", fmt.Errorf("%w: %q", ErrNoSuchConfig, label)
	}

	return path, nil
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func ListConfigs() ([]ConfigInfo, error) {
	if err := ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(ConfigsDir())
	if err != nil {
		return nil, err
	}

	activeLabel, _ := CurrentLabel()
	var out []ConfigInfo

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}

		label := strings.TrimSuffix(name, ".yaml")
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   filepath.Join(ConfigsDir(), name),
			Active: label == activeLabel,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func SwitchConfig(label string) error {
	if _, err := ConfigPathByLabel(label); err != nil {
		return err
	}

	return os.WriteFile(CurrentLabelFile(), []byte(label), 0o644)
}

// CreateConfig writes a new profile holding the defaults.
func CreateConfig(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := labelPath(label)
	if exists(path) {
		return "", fmt.Errorf("%w: %q", ErrConfigExists, label)
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, nil
}

func RenameConfig(oldLabel, newLabel string) error {
	oldPath, err := ConfigPathByLabel(oldLabel)
	if err != nil {
		return err
	}
	if err := checkLabel(newLabel); err != nil {
		return err
	}

	newPath := labelPath(newLabel)
	if exists(newPath) {
		return fmt.Errorf("%w: %q", ErrConfigExists, newLabel)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := CurrentLabel(); active == oldLabel {
		return os.WriteFile(CurrentLabelFile(), []byte(newLabel), 0o644)
	}

	return nil
}

// RemoveConfig deletes a profile. Removing the active one makes Default
// active again; Default itself cannot be removed.
func RemoveConfig(label string) error {
	if label == DefaultLabel {
		return fmt.Errorf("cannot remove the %s config", DefaultLabel)
	}

	path, err := ConfigPathByLabel(label)
	if err != nil {
		return err
	}

	if active, _ := CurrentLabel(); active == label {
		if exists(labelPath(DefaultLabel)) {
			if err := SwitchConfig(DefaultLabel); err != nil {
				return fmt.Errorf("failed switching to %s: %w", DefaultLabel, err)
			}
		} else if err := os.Remove(CurrentLabelFile()); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return os.Remove(path)
}

// InitDefaultConfig creates Default.yaml and makes it active. If it already
// exists it is only activated and os.ErrExist is returned with its path.
func InitDefaultConfig() (string, error) {
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := labelPath(DefaultLabel)
	if !exists(path) {
		if err := SaveYAML(DefaultConfig(), path); err != nil {
			return "", err
		}
		return path, os.WriteFile(CurrentLabelFile(), []byte(DefaultLabel), 0o644)
	}

	if err := os.WriteFile(CurrentLabelFile(), []byte(DefaultLabel), 0o644); err != nil {
		return path, err
	}

	return path, os.ErrExist
}
