package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultBackend  = BackendDevnet
	defaultInterval = 5

	configFile  = "config.json"
	walletsFile = "wallets.json"
	poolFile    = "pool.json"
	ledgerFile  = "ledger.json"
	eventsFile  = "events.jsonl"
)

// Load reads config from dir (or creates defaults). dir defaults to
// $W3POOL_CONFIG_DIR, then ~/.w3pool.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv("W3POOL_CONFIG_DIR")
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3pool")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.Backend == "" {
		cfg.Backend = defaultBackend
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the wallets.json path.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// LedgerPath returns the devnet ledger state file path.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.configDir, ledgerFile)
}

// EventsPath returns the event journal path.
func (c *Config) EventsPath() string {
	return filepath.Join(c.configDir, eventsFile)
}

// LoadPool reads pool.json. The zero value means no pool is initialized.
func (c *Config) LoadPool() (*PoolFile, error) {
	return loadJSON[PoolFile](filepath.Join(c.configDir, poolFile))
}

// SavePool writes pool.json.
func (c *Config) SavePool(pf *PoolFile) error {
	return saveJSON(filepath.Join(c.configDir, poolFile), pf)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Backend:       defaultBackend,
		WatchInterval: defaultInterval,
		configDir:     dir,
	}
}

func loadJSON[T any](path string) (*T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &zero, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
