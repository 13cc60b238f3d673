package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config stores repository-local settings from .jot/config.toml.
type Config struct {
	User UserConfig `toml:"user"`
}

// UserConfig identifies the committing user.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

func (r *Repo) configPath() string {
	return filepath.Join(r.JotDir, "config.toml")
}

// ReadConfig reads .jot/config.toml. A missing file yields an empty
// config, not an error.
func (r *Repo) ReadConfig() (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(r.configPath(), &cfg); err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return &cfg, nil
}

// AuthorIdent resolves the identity line recorded on commits,
// "<name> <email> <unix-seconds> +0000". Name falls back to $USER and
// then "unknown"; email falls back to "<name>@local".
func (r *Repo) AuthorIdent() (string, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return "", err
	}

	name := cfg.User.Name
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "unknown"
	}

	email := cfg.User.Email
	if email == "" {
		email = name + "@local"
	}

	return fmt.Sprintf("%s <%s> %d +0000", name, email, time.Now().Unix()), nil
}
