package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/sky-garden-race/game/engine"
	"github.com/wricardo/sky-garden-race/game/service"
)

func createValidRules(name string) *engine.Rules {
	rules := engine.DefaultRules()
	rules.Name = name
	rules.Description = "Test rules"
	return rules
}

func writeJSON(t *testing.T, dir, name string, rules *engine.Rules) {
	t.Helper()
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal rules: %v", err)
	}
	writeFile(t, dir, name+".json", string(data))
}

func writeFile(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("classic becomes the default", func(t *testing.T) {
		dir := t.TempDir()
		writeJSON(t, dir, "classic", createValidRules("Classic"))
		writeJSON(t, dir, "aaa", createValidRules("First"))

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Classic" {
			t.Errorf("Expected classic default, got %q", got)
		}
	})

	t.Run("first file when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		writeJSON(t, dir, "zeta", createValidRules("Zeta"))
		writeJSON(t, dir, "alpha", createValidRules("Alpha"))

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Alpha" {
			t.Errorf("Expected first sorted config as default, got %q", got)
		}
	})

	t.Run("built-in rules for an empty directory", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without config files, got: %v", err)
		}
		if got := manager.GetDefault(); got == nil || got.Name != engine.DefaultRules().Name {
			t.Errorf("Expected built-in default rules, got %+v", got)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "classic", createValidRules("Classic"))
	writeFile(t, dir, "garden.hcl", `
name        = "Garden"
description = "HCL rules"
event_every = 3
`)
	writeFile(t, dir, "broken.json", `{"name": "Broken", "description": "x", "comeback_boost": 99}`)
	writeFile(t, dir, "garbled.json", `{not json`)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name       string
		config     string
		wantName   string
		wantErr    error
		wantEvery  int
		wantLocale string
	}{
		{name: "json without extension", config: "classic", wantName: "Classic", wantEvery: 5, wantLocale: "en-US"},
		{name: "json with extension", config: "classic.json", wantName: "Classic", wantEvery: 5, wantLocale: "en-US"},
		{name: "hcl without extension", config: "garden", wantName: "Garden", wantEvery: 3, wantLocale: "en-US"},
		{name: "hcl with extension", config: "garden.hcl", wantName: "Garden", wantEvery: 3, wantLocale: "en-US"},
		{name: "missing", config: "nope", wantErr: ErrConfigNotFound},
		{name: "missing with extension", config: "nope.hcl", wantErr: ErrConfigNotFound},
		{name: "out of range", config: "broken", wantErr: ErrInvalidConfig},
		{name: "malformed", config: "garbled", wantErr: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := manager.LoadConfig(tt.config)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}
			if rules.Name != tt.wantName {
				t.Errorf("Expected name %q, got %q", tt.wantName, rules.Name)
			}
			if rules.EventEvery != tt.wantEvery {
				t.Errorf("Expected event_every %d, got %d", tt.wantEvery, rules.EventEvery)
			}
			if rules.Locale != tt.wantLocale {
				t.Errorf("Expected locale %q, got %q", tt.wantLocale, rules.Locale)
			}
		})
	}
}

func TestManager_ErrorClasses(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := manager.LoadConfig("missing"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected not-found class, got %v", err)
	}
	bad := createValidRules("Bad")
	bad.EventEvery = 0
	bad.LogLimit = 9999
	if err := manager.SaveConfig("bad", bad); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("Expected invalid-input class, got %v", err)
	}
}

func TestParseHCLExpressions(t *testing.T) {
	rules, err := Parse("expr.hcl", []byte(`
name           = "Expr"
description    = "Uses the board and default variables"
event_every    = defaults.event_every * 2
comeback_gap   = board.goal / 4
comeback_boost = defaults.comeback_boost - 3
locale         = "pt-BR"
`))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if rules.EventEvery != 10 {
		t.Errorf("Expected event_every 10, got %d", rules.EventEvery)
	}
	if rules.ComebackGap != 16 {
		t.Errorf("Expected comeback_gap 16, got %d", rules.ComebackGap)
	}
	if rules.ComebackBoost != 5 {
		t.Errorf("Expected comeback_boost 5, got %d", rules.ComebackBoost)
	}
	if rules.LogLimit != engine.DefaultLogSize {
		t.Errorf("Expected default log limit, got %d", rules.LogLimit)
	}
	if rules.Locale != "pt-BR" {
		t.Errorf("Expected pt-BR, got %q", rules.Locale)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{"unsupported extension", "rules.yaml", "name: x"},
		{"hcl syntax error", "bad.hcl", `name = "unterminated`},
		{"hcl unknown attribute", "bad.hcl", "name = \"x\"\ndescription = \"y\"\nwind_speed = 3\n"},
		{"hcl missing name", "bad.hcl", `description = "y"`},
		{"hcl unknown variable", "bad.hcl", "name = \"x\"\ndescription = \"y\"\nevent_every = nope.value\n"},
		{"json empty name", "bad.json", `{"description": "y"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.filename, []byte(tt.content)); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "classic", createValidRules("Classic"))
	writeFile(t, dir, "chaos.hcl", "name = \"Chaos\"\ndescription = \"Busy\"\nevent_every = 2\n")
	writeFile(t, dir, "invalid.json", `{"name": ""}`)
	writeFile(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "subdir.json"), 0755); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 valid configs, got %d", len(configs))
	}

	if configs[0].ConfigID != "chaos" || configs[0].Format != FormatHCL || configs[0].EventEvery != 2 {
		t.Errorf("Unexpected first config: %+v", configs[0])
	}
	if configs[1].ConfigID != "classic" || configs[1].Format != FormatJSON || configs[1].Filename != "classic.json" {
		t.Errorf("Unexpected second config: %+v", configs[1])
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("save and reload", func(t *testing.T) {
		rules := &engine.Rules{Name: "Saved", Description: "Partial rules", EventEvery: 4}
		if err := manager.SaveConfig("saved", rules); err != nil {
			t.Fatalf("Failed to save config: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Fatalf("Expected saved.json on disk: %v", err)
		}

		manager.RefreshCache()
		loaded, err := manager.LoadConfig("saved")
		if err != nil {
			t.Fatalf("Failed to load saved config: %v", err)
		}
		if loaded.EventEvery != 4 || loaded.ComebackGap != engine.DefaultComebackGap {
			t.Errorf("Unexpected reloaded rules: %+v", loaded)
		}
	})

	t.Run("bad names", func(t *testing.T) {
		for _, name := range []string{"", "../escape", "a/b", ".."} {
			if err := manager.SaveConfig(name, createValidRules("x")); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig for %q, got %v", name, err)
			}
		}
	})

	t.Run("nil rules", func(t *testing.T) {
		if err := manager.SaveConfig("nil", nil); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "classic", createValidRules("Classic"))
	writeJSON(t, dir, "other", createValidRules("Other"))

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("other"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if got := manager.GetDefault().Name; got != "Other" {
		t.Errorf("Expected Other, got %q", got)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	// Edits on disk show up after a refresh
	writeJSON(t, dir, "classic", createValidRules("Classic v2"))
	manager.RefreshCache()
	if got := manager.GetDefault().Name; got != "Classic v2" {
		t.Errorf("Expected refreshed classic default, got %q", got)
	}
}

func TestManager_ConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "classic", createValidRules("Classic"))
	writeFile(t, dir, "chaos.hcl", "name = \"Chaos\"\ndescription = \"Busy\"\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "classic"
			if i%2 == 0 {
				name = "chaos"
			}
			if _, err := manager.LoadConfig(name); err != nil {
				errs <- err
			}
			if i%10 == 0 {
				manager.RefreshCache()
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent load: %v", err)
	}
}

func TestShippedConfigs(t *testing.T) {
	manager, err := NewManager(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	ids := map[string]bool{}
	for _, c := range configs {
		ids[c.ConfigID] = true
	}
	for _, want := range []string{"classic", "chaos", "gentle", "jardim"} {
		if !ids[want] {
			t.Errorf("Expected shipped config %q to be valid", want)
		}
	}
	if got := manager.GetDefault().Name; got != "classic" {
		t.Errorf("Expected classic default, got %q", got)
	}
}
