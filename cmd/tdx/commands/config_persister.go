package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdxclient"
)

// ConfigPersister implements the tdx.TokenPersister interface by writing
// issued tokens to the settings file.
type ConfigPersister struct {
	mutex sync.Mutex
	file  SettingsFile
}

// NewConfigPersister creates a new config persister for the file at path.
func NewConfigPersister(path string) *ConfigPersister {
	return &ConfigPersister{file: SettingsFile{Path: path}}
}

// SaveToken stores the token. Its expiry is read back from the token itself.
func (p *ConfigPersister) SaveToken(token string, _ time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.file.Set(map[string]string{tdxclient.KeyToken: token})
}

// SettingsFile edits a yaml or ini settings file in place.
type SettingsFile struct {
	Path string
}

// Set writes values, keeping every other key in the file.
func (f SettingsFile) Set(values map[string]string) error {
	var (
		data []byte
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(f.Path)); ext {
	case ".ini":
		data, err = f.setIni(values)
	case ".yaml", ".yml":
		data, err = f.setYAML(values)
	default:
		return fmt.Errorf("%w: %s", constants.ErrSettingsFormat, f.Path)
	}

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(f.Path, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Unset removes keys from the file.
func (f SettingsFile) Unset(keys ...string) error {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		values[key] = ""
	}

	return f.Set(values)
}

func (f SettingsFile) setIni(values map[string]string) ([]byte, error) {
	cfg, err := ini.LooseLoad(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	section := cfg.Section(tdxclient.SettingsSection)

	for key, value := range values {
		if value == "" {
			section.DeleteKey(key)

			continue
		}

		section.Key(key).SetValue(value)
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode config file: %w", err)
	}

	return buf.Bytes(), nil
}

func (f SettingsFile) setYAML(values map[string]string) ([]byte, error) {
	doc := map[string]interface{}{}

	// #nosec G304 -- the path is the user's own settings file
	raw, err := os.ReadFile(f.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	target := doc
	if nested, ok := doc[tdxclient.SettingsSection].(map[string]interface{}); ok {
		target = nested
	}

	for key, value := range values {
		if value == "" {
			delete(target, key)

			continue
		}

		target[key] = typedValue(key, value)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	return data, nil
}

// typedValue keeps booleans and numbers unquoted in yaml. Timezones such as
// -0500 stay strings.
func typedValue(key, value string) interface{} {
	switch key {
	case tdxclient.KeySandbox, tdxclient.KeyCaching, tdxclient.KeyHTTP2:
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	case tdxclient.KeyTicketAppID, tdxclient.KeyAssetAppID, tdxclient.KeyRetries:
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}

	return value
}
