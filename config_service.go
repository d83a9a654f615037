package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"slideforge/config"
)

// ConfigProvider defines the read side of configuration access.
type ConfigProvider interface {
	GetConfig() (config.Config, error)
}

// ConfigPersister defines the write side of configuration access.
type ConfigPersister interface {
	SaveConfig(cfg config.Config) error
}

// ConfigService owns the configuration file and its change notifications.
// Implements Service, ConfigProvider and ConfigPersister.
type ConfigService struct {
	storageDir string
	logger     func(string)
	callbacks  []func(config.Config)
	mu         sync.RWMutex
}

// NewConfigService creates a new ConfigService instance.
func NewConfigService(logger func(string)) *ConfigService {
	return &ConfigService{
		logger:    logger,
		callbacks: make([]func(config.Config), 0),
	}
}

// Name returns the service name.
func (cs *ConfigService) Name() string {
	return "config"
}

// Initialize ensures the storage directory exists.
func (cs *ConfigService) Initialize(ctx context.Context) error {
	dir, err := cs.GetStorageDir()
	if err != nil {
		return WrapError("config", "Initialize", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return WrapError("config", "Initialize", fmt.Errorf("failed to create storage dir: %w", err))
	}
	cs.log(fmt.Sprintf("ConfigService initialized, storage dir: %s", dir))
	return nil
}

// Shutdown closes the config service (no-op).
func (cs *ConfigService) Shutdown() error {
	return nil
}

// SetStorageDir overrides the storage directory, mainly for tests.
func (cs *ConfigService) SetStorageDir(dir string) {
	cs.mu.Lock()
	cs.storageDir = dir
	cs.mu.Unlock()
}

// GetStorageDir returns the storage directory path (~/.slideforge by default).
func (cs *ConfigService) GetStorageDir() (string, error) {
	cs.mu.RLock()
	sd := cs.storageDir
	cs.mu.RUnlock()

	if sd != "" {
		return sd, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".slideforge"), nil
}

func (cs *ConfigService) configPath() (string, error) {
	dir, err := cs.GetStorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfig loads the configuration file, falling back to defaults when it
// does not exist yet. Relative data/export directories resolve under the
// storage dir.
func (cs *ConfigService) GetConfig() (config.Config, error) {
	path, err := cs.configPath()
	if err != nil {
		return config.Config{}, WrapError("config", "GetConfig", err)
	}

	cfg := config.Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return config.Config{}, WrapError("config", "GetConfig", err)
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return config.Config{}, WrapError("config", "GetConfig", fmt.Errorf("invalid config file: %w", err))
	}

	dir, err := cs.GetStorageDir()
	if err != nil {
		return config.Config{}, WrapError("config", "GetConfig", err)
	}
	if cfg.DataCacheDir == "" {
		cfg.DataCacheDir = filepath.Join(dir, "templates")
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = filepath.Join(dir, "exports")
	}
	return cfg, nil
}

// SaveConfig persists the configuration and notifies change callbacks.
func (cs *ConfigService) SaveConfig(cfg config.Config) error {
	path, err := cs.configPath()
	if err != nil {
		return WrapError("config", "SaveConfig", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return WrapError("config", "SaveConfig", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return WrapError("config", "SaveConfig", err)
	}

	cs.mu.RLock()
	callbacks := append([]func(config.Config){}, cs.callbacks...)
	cs.mu.RUnlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
	cs.log("Configuration saved")
	return nil
}

// OnConfigChanged registers a callback invoked after every successful save.
func (cs *ConfigService) OnConfigChanged(callback func(config.Config)) {
	cs.mu.Lock()
	cs.callbacks = append(cs.callbacks, callback)
	cs.mu.Unlock()
}

func (cs *ConfigService) log(msg string) {
	if cs.logger != nil {
		cs.logger(msg)
	}
}
