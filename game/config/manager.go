package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/wricardo/sky-garden-race/game/engine"
	"github.com/wricardo/sky-garden-race/game/service"
)

var (
	ErrConfigNotFound = fmt.Errorf("configuration %w", service.ErrNotFound)
	ErrInvalidConfig  = fmt.Errorf("%w: configuration", service.ErrInvalidInput)
)

// Supported ruleset file formats
const (
	FormatJSON = "json"
	FormatHCL  = "hcl"
)

var extensions = []string{".json", ".hcl"}

// Manager handles ruleset loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.Rules
	configs       map[string]*engine.Rules
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.Rules),
	}

	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a ruleset by name. The name may carry a .json or .hcl
// extension; without one, JSON is tried before HCL.
func (m *Manager) LoadConfig(name string) (*engine.Rules, error) {
	id := configID(name)

	m.mu.RLock()
	// Check cache first
	if rules, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return rules, nil
	}
	m.mu.RUnlock()

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	rules, err := ParseFile(path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if cached, exists := m.configs[id]; exists {
		return cached, nil
	}
	m.configs[id] = rules
	return rules, nil
}

// ListConfigs returns information about all valid rulesets in the directory
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	configs := []*service.ConfigInfo{}
	for _, entry := range entries {
		format := formatOf(entry.Name())
		if entry.IsDir() || format == "" {
			continue
		}

		rules, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:      entry.Name(),
			ConfigID:      configID(entry.Name()),
			Name:          rules.Name,
			Description:   rules.Description,
			Format:        format,
			EventEvery:    rules.EventEvery,
			ComebackGap:   rules.ComebackGap,
			ComebackBoost: rules.ComebackBoost,
			Locale:        rules.Locale,
		})
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Filename < configs[j].Filename
	})
	return configs, nil
}

// GetDefault returns the default ruleset
func (m *Manager) GetDefault() *engine.Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default ruleset by name
func (m *Manager) SetDefault(name string) error {
	rules, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = rules
	return nil
}

// RefreshCache drops cached rulesets and reloads the default from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.Rules)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// loadDefaultConfig picks classic, then the first valid file, then the
// built-in rules.
func (m *Manager) loadDefaultConfig() {
	rules, err := m.LoadConfig("classic")
	if err != nil {
		rules = engine.DefaultRules()
		if configs, listErr := m.ListConfigs(); listErr == nil && len(configs) > 0 {
			if first, loadErr := m.LoadConfig(configs[0].Filename); loadErr == nil {
				rules = first
			}
		}
	}

	m.mu.Lock()
	m.defaultConfig = rules
	m.mu.Unlock()
}

// SaveConfig validates a ruleset and writes it to disk as JSON
func (m *Manager) SaveConfig(name string, rules *engine.Rules) error {
	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: invalid name %q", ErrInvalidConfig, name)
	}
	if rules != nil {
		rules.ApplyDefaults()
	}
	if err := engine.ValidateRules(rules); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	configPath := filepath.Join(m.configDir, id+".json")

	// Marshal rules to JSON with indentation
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[id] = rules
	m.mu.Unlock()

	return nil
}

// resolve finds the file backing a ruleset name
func (m *Manager) resolve(name string) (string, error) {
	if formatOf(name) != "" {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
			}
			return "", fmt.Errorf("failed to read config file: %w", err)
		}
		return path, nil
	}

	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
}

// ParseFile reads a JSON or HCL ruleset, fills defaults and validates it
func ParseFile(path string) (*engine.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(filepath.Base(path), data)
}

// Parse decodes a ruleset named filename. The extension picks the format.
func Parse(filename string, data []byte) (*engine.Rules, error) {
	var rules engine.Rules

	switch formatOf(filename) {
	case FormatJSON:
		if err := json.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, filename, err)
		}
	case FormatHCL:
		if err := decodeHCL(filename, data, &rules); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unsupported file type %s", ErrInvalidConfig, filename)
	}

	rules.ApplyDefaults()
	if err := engine.ValidateRules(&rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &rules, nil
}

func decodeHCL(filename string, data []byte, rules *engine.Rules) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return fmt.Errorf("%w: failed to parse HCL file %s: %v", ErrInvalidConfig, filename, diags)
	}

	diags = gohcl.DecodeBody(file.Body, evalContext(), rules)
	if diags.HasErrors() {
		return fmt.Errorf("%w: failed to decode HCL file %s: %v", ErrInvalidConfig, filename, diags)
	}
	return nil
}

// evalContext exposes the board constants and classic defaults to HCL
// expressions, e.g. `comeback_gap = board.goal / 4`.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"board": cty.ObjectVal(map[string]cty.Value{
				"tiles": cty.NumberIntVal(engine.TotalTiles),
				"goal":  cty.NumberIntVal(engine.TotalTiles),
				"cap":   cty.NumberIntVal(engine.EventCap),
			}),
			"defaults": cty.ObjectVal(map[string]cty.Value{
				"event_every":    cty.NumberIntVal(engine.DefaultEventEvery),
				"comeback_gap":   cty.NumberIntVal(engine.DefaultComebackGap),
				"comeback_boost": cty.NumberIntVal(engine.DefaultComebackBoost),
				"log_limit":      cty.NumberIntVal(engine.DefaultLogSize),
				"locale":         cty.StringVal(engine.DefaultLocale),
			}),
		},
	}
}

func formatOf(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".hcl":
		return FormatHCL
	}
	return ""
}

func configID(name string) string {
	if formatOf(name) != "" {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
