// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	cConfigDir     = ".logicapps-mcp"
	configFileName = "config.json"

	permissionDirectory = 0o755
	permissionFile      = 0o644
)

// Manager loads and saves configuration documents
type Manager interface {
	Save(config Config, writer io.Writer) error
	Load(io.Reader) (Config, error)
}

type manager struct {
}

func NewManager() Manager {
	return &manager{}
}

func (c *manager) Save(config Config, writer io.Writer) error {
	configJson, err := json.MarshalIndent(config.Raw(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed marshalling config JSON: %w", err)
	}

	_, err = writer.Write(configJson)
	if err != nil {
		return fmt.Errorf("failed writing configuration data: %w", err)
	}

	return nil
}

func (c *manager) Load(reader io.Reader) (Config, error) {
	jsonBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed reading configuration: %w", err)
	}

	return Parse(jsonBytes)
}

// Parses configuration JSON and returns a Config instance
func Parse(configJson []byte) (Config, error) {
	var data map[string]any
	err := json.Unmarshal(configJson, &data)
	if err != nil {
		return nil, fmt.Errorf("failed unmarshalling configuration JSON: %w", err)
	}

	return NewConfig(data), nil
}

// GetUserConfigDir returns the directory holding user wide configuration. LOGICAPPS_MCP_CONFIG_DIR overrides the
// default of ~/.logicapps-mcp.
func GetUserConfigDir() (string, error) {
	configDirPath := os.Getenv("LOGICAPPS_MCP_CONFIG_DIR")
	if configDirPath != "" {
		return configDirPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine current home directory: %w", err)
	}

	return filepath.Join(homeDir, cConfigDir), nil
}

// DefaultConfigPath returns the path of the user configuration file.
func DefaultConfigPath() (string, error) {
	configDir, err := GetUserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, configFileName), nil
}

// FileConfigManager loads and saves configuration files
type FileConfigManager interface {
	// Saves the configuration to the specified file path
	// Path is automatically created if it does not exist
	Save(config Config, filePath string) error

	// Loads configuration from the specified file path
	Load(filePath string) (Config, error)

	// Loads configuration from the specified file path, returning an empty configuration when the file does not exist
	LoadOrEmpty(filePath string) (Config, error)
}

func NewFileConfigManager(configManager Manager) FileConfigManager {
	return &fileConfigManager{
		manager: configManager,
	}
}

type fileConfigManager struct {
	manager Manager
}

func (m *fileConfigManager) Load(filePath string) (Config, error) {
	unlock, err := lockFile(filePath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed opening configuration file: %w", err)
	}

	defer file.Close()

	return m.manager.Load(file)
}

func (m *fileConfigManager) LoadOrEmpty(filePath string) (Config, error) {
	config, err := m.Load(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return NewEmptyConfig(), nil
	}

	return config, err
}

func (m *fileConfigManager) Save(c Config, filePath string) error {
	folderPath := filepath.Dir(filePath)
	if err := os.MkdirAll(folderPath, permissionDirectory); err != nil {
		return fmt.Errorf("failed creating config directory: %w", err)
	}

	unlock, err := lockFile(filePath)
	if err != nil {
		return err
	}
	defer unlock()

	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, permissionFile)
	if err != nil {
		return fmt.Errorf("failed creating config file: %w", err)
	}
	defer file.Close()

	return m.manager.Save(c, file)
}

// lockFile takes an exclusive lock on a sibling .lock file, serializing access to filePath across processes.
// The lock is skipped when the directory of filePath does not exist yet.
func lockFile(filePath string) (func(), error) {
	if _, err := os.Stat(filepath.Dir(filePath)); errors.Is(err, fs.ErrNotExist) {
		return func() {}, nil
	}

	lockPath := filePath + ".lock"
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("locking file %s: %w", lockPath, err)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			log.Printf("failed to release file lock: %v", err)
		}
	}, nil
}
