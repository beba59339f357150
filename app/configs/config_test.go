package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaultsFillsEmptyConfig(t *testing.T) {
	cfg := Config{}

	applyDefaults(&cfg)

	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %s", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 700 || cfg.LLM.TimeoutSec != 90 {
		t.Fatalf("unexpected llm limits: %+v", cfg.LLM)
	}
	if cfg.Catalog.Provider != "rainforest" || cfg.Catalog.CacheTTLHours != 24 {
		t.Fatalf("unexpected catalog defaults: %+v", cfg.Catalog)
	}
	if cfg.Places.CacheTTLMin != 15 {
		t.Fatalf("unexpected places ttl: %d", cfg.Places.CacheTTLMin)
	}
	if cfg.Commute.ArriveBy != "09:00" || cfg.Commute.BufferMin != 10 || cfg.Commute.RerouteThresholdMin != 8 {
		t.Fatalf("unexpected commute defaults: %+v", cfg.Commute)
	}
	if cfg.Brief.At != "06:30" || cfg.Brief.Timezone != "America/Phoenix" {
		t.Fatalf("unexpected brief defaults: %+v", cfg.Brief)
	}
	if !cfg.Brief.Fahrenheit {
		t.Fatal("expected fahrenheit default")
	}
}

func TestApplyDefaultsSanitizesBadValues(t *testing.T) {
	cfg := Config{}
	cfg.LLM.Temperature = 5
	cfg.Commute.ArriveBy = "25:99"
	cfg.Commute.BufferMin = -3
	cfg.Brief.At = "soon"

	applyDefaults(&cfg)

	if cfg.LLM.Temperature != 0.2 {
		t.Fatalf("temperature not sanitized: %f", cfg.LLM.Temperature)
	}
	if cfg.Commute.ArriveBy != "09:00" || cfg.Commute.BufferMin != 10 {
		t.Fatalf("commute not sanitized: %+v", cfg.Commute)
	}
	if cfg.Brief.At != "06:30" {
		t.Fatalf("brief trigger not sanitized: %s", cfg.Brief.At)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.LLM.Model = "llama3.1"
	cfg.LLM.BaseURL = "http://127.0.0.1:11434/v1"
	cfg.Commute.ArriveBy = "08:15"
	cfg.Home = GeoPoint{Lat: 33.45, Lon: -112.07}
	cfg.Brief.Fahrenheit = false

	applyDefaults(&cfg)

	if cfg.LLM.Model != "llama3.1" || cfg.LLM.BaseURL != "http://127.0.0.1:11434/v1" {
		t.Fatalf("llm overrides lost: %+v", cfg.LLM)
	}
	if cfg.Commute.ArriveBy != "08:15" {
		t.Fatalf("arrive-by override lost: %s", cfg.Commute.ArriveBy)
	}
	if cfg.Home.Lat != 33.45 {
		t.Fatalf("home override lost: %+v", cfg.Home)
	}
	if cfg.Brief.Fahrenheit {
		t.Fatal("explicit fahrenheit=false must survive")
	}
}

func TestDefaultConfigIsNormalized(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Brief.At != "06:30" || cfg.Commute.BufferMin != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.json"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestNewManagerCreatesFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.json")

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if got := mgr.Get().Brief.At; got != "06:30" {
		t.Fatalf("unexpected default trigger: %s", got)
	}
}

func TestManagerLoadsAndUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	seed := `{"llm": {"model": "llama3.1"}, "commute": {"arrive_by": "08:00"}}`
	if err := os.WriteFile(path, []byte(seed), 0644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	cfg := mgr.Get()
	if cfg.LLM.Model != "llama3.1" || cfg.Commute.ArriveBy != "08:00" {
		t.Fatalf("file values not loaded: %+v", cfg)
	}
	if cfg.Commute.BufferMin != 10 {
		t.Fatalf("omitted buffer_min must default to 10, got %d", cfg.Commute.BufferMin)
	}
	if cfg.Catalog.Provider != "rainforest" {
		t.Fatalf("defaults not applied over file: %+v", cfg.Catalog)
	}

	updated, err := mgr.Update(func(c *Config) {
		c.Commute.BufferMin = 20
		c.Commute.ArriveBy = "bad"
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Commute.BufferMin != 20 {
		t.Fatalf("update lost: %+v", updated.Commute)
	}
	if updated.Commute.ArriveBy != "09:00" {
		t.Fatalf("update not sanitized: %s", updated.Commute.ArriveBy)
	}

	reloaded, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Commute.BufferMin != 20 {
		t.Fatalf("update not persisted: %+v", reloaded.Commute)
	}
}
