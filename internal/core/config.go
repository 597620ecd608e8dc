package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/eldridgejm/pensieve/internal/store"
)

// Dotfile names, in the order they are tried. The YAML form is canonical;
// the JSON form may carry comments and trailing commas.
const (
	DotfileYAML = ".pensieve.yaml"
	DotfileJSON = ".pensieve.json"
)

// ErrNoDotfile means the directory has no pensieve dotfile and is therefore
// not a pensieve.
var ErrNoDotfile = errors.New("pensieve dotfile not found")

// Config is the parsed pensieve dotfile.
type Config struct {
	Stores map[string]StoreConfig `yaml:"stores" json:"stores"`
}

// StoreConfig is one store definition. Type selects the backend; which of
// the remaining fields matter depends on it.
type StoreConfig struct {
	Type string `yaml:"type" json:"type"`

	// github stores
	User  string `yaml:"user,omitempty" json:"user,omitempty"`
	Token string `yaml:"token,omitempty" json:"token,omitempty"`
	// API overrides the endpoint, mainly for tests against a stub server.
	API string `yaml:"api,omitempty" json:"api,omitempty"`

	// pensieve stores
	Host  string `yaml:"host,omitempty" json:"host,omitempty"`
	Path  string `yaml:"path,omitempty" json:"path,omitempty"`
	Agent string `yaml:"agent,omitempty" json:"agent,omitempty"`
}

// LoadConfig reads the pensieve dotfile in dir. A .env file in the same
// directory is loaded first, and token values may reference environment
// variables ($GITHUB_TOKEN), so secrets can stay out of the dotfile.
func LoadConfig(dir string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	var cfg Config

	data, err := os.ReadFile(filepath.Join(dir, DotfileYAML))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("problem decoding the dotfile: %w", err)
		}
	case os.IsNotExist(err):
		data, err = os.ReadFile(filepath.Join(dir, DotfileJSON))
		if os.IsNotExist(err) {
			return nil, ErrNoDotfile
		}
		if err != nil {
			return nil, err
		}
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("problem decoding the dotfile: %w", err)
		}
		if err := json.Unmarshal(standardized, &cfg); err != nil {
			return nil, fmt.Errorf("problem decoding the dotfile: %w", err)
		}
	default:
		return nil, err
	}

	if cfg.Stores == nil {
		return nil, fmt.Errorf(`invalid dotfile: missing "stores" key`)
	}

	// Tokens and endpoint overrides may reference environment variables.
	for name, sc := range cfg.Stores {
		sc.Token = os.ExpandEnv(sc.Token)
		sc.API = os.ExpandEnv(sc.API)
		cfg.Stores[name] = sc
	}
	return &cfg, nil
}

// BuildStores turns every store definition in the config into a live Store.
func BuildStores(cfg *Config) (map[string]store.Store, error) {
	stores := make(map[string]store.Store, len(cfg.Stores))
	for name, sc := range cfg.Stores {
		st, err := buildStore(name, sc)
		if err != nil {
			return nil, err
		}
		stores[name] = st
	}
	return stores, nil
}

func buildStore(name string, sc StoreConfig) (store.Store, error) {
	invalid := func(detail string) error {
		return fmt.Errorf("invalid %q definition in dotfile: %s", name, detail)
	}

	switch sc.Type {
	case "":
		return nil, invalid(`missing a "type" key`)
	case "github":
		if sc.User == "" || sc.Token == "" {
			return nil, invalid("missing or unknown parameters")
		}
		if sc.API != "" {
			return store.NewGitHubWithAPI(name, sc.User, sc.Token, sc.API), nil
		}
		return store.NewGitHub(name, sc.User, sc.Token), nil
	case "pensieve":
		if sc.Host == "" || sc.Path == "" || sc.Agent == "" {
			return nil, invalid("missing or unknown parameters")
		}
		return store.NewPensieve(name, sc.Host, sc.Path, sc.Agent), nil
	default:
		return nil, invalid(fmt.Sprintf("unknown store type %q", sc.Type))
	}
}
