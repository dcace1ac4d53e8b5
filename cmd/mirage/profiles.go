package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"
)

// ProfilesConfig holds all named profiles and tracks which one is active.
type ProfilesConfig struct {
	Active   string             `toml:"active"`
	Profiles map[string]Profile `toml:"profiles"`
}

// Profile is a named backend setup.
type Profile struct {
	BaseURL string `toml:"base_url"`
	NATSURL string `toml:"nats_url,omitempty"`
	Agent   string `toml:"agent,omitempty"`
}

func profilesPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "mirage")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles.toml"), nil
}

func loadProfiles() (ProfilesConfig, error) {
	path, err := profilesPath()
	if err != nil {
		return ProfilesConfig{}, err
	}
	var pc ProfilesConfig
	if _, err := toml.DecodeFile(path, &pc); err != nil {
		if os.IsNotExist(err) {
			return ProfilesConfig{Profiles: map[string]Profile{}}, nil
		}
		return ProfilesConfig{}, err
	}
	if pc.Profiles == nil {
		pc.Profiles = map[string]Profile{}
	}
	return pc, nil
}

func saveProfiles(pc ProfilesConfig) error {
	path, err := profilesPath()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(pc); err != nil {
		return err
	}
	return renameio.WriteFile(path, buf.Bytes(), 0o600)
}

// activeProfile returns the named profile, or the active one when name is
// empty. The returned name is empty when no profile applies.
func activeProfile(name string) (Profile, string, error) {
	pc, err := loadProfiles()
	if err != nil {
		return Profile{}, "", fmt.Errorf("loading profiles: %w", err)
	}
	if name == "" {
		name = pc.Active
	}
	if name == "" {
		return Profile{}, "", nil
	}
	p, ok := pc.Profiles[name]
	if !ok {
		return Profile{}, "", fmt.Errorf("profile %q not found", name)
	}
	return p, name, nil
}
