package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Config struct {
	LLM     LLMConfig     `json:"llm"`
	Catalog CatalogConfig `json:"catalog"`
	Places  PlacesConfig  `json:"places"`
	Commute CommuteConfig `json:"commute"`
	Brief   BriefConfig   `json:"brief"`
	Home    GeoPoint      `json:"home"`
	Office  GeoPoint      `json:"office"`
}

type LLMConfig struct {
	BaseURL     string  `json:"base_url"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TimeoutSec  int     `json:"timeout_sec"`
}

type CatalogConfig struct {
	Provider      string `json:"provider"`
	Zip           string `json:"zip"`
	CacheDir      string `json:"cache_dir"`
	CacheTTLHours int    `json:"cache_ttl_hours"`
}

type PlacesConfig struct {
	CacheDir    string `json:"cache_dir"`
	CacheTTLMin int    `json:"cache_ttl_min"`
}

type CommuteConfig struct {
	ArriveBy            string `json:"arrive_by"`
	BufferMin           int    `json:"buffer_min"`
	RerouteThresholdMin int    `json:"reroute_threshold_min"`
}

type BriefConfig struct {
	At          string `json:"at"`
	Timezone    string `json:"timezone"`
	Fahrenheit  bool   `json:"fahrenheit"`
	ReportDir   string `json:"report_dir"`
	DataDir     string `json:"data_dir"`
	ProfilePath string `json:"profile_path"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Manager struct {
	path string
	mu   sync.RWMutex
	cfg  Config
}

func DefaultPath() string {
	return filepath.Join("config", "config.json")
}

func NewManager(path string) (*Manager, error) {
	cfg := defaultConfig()
	mgr := &Manager{
		path: path,
		cfg:  cfg,
	}
	if err := mgr.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	if err := mgr.save(); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Update(apply func(*Config)) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply(&m.cfg)
	applyDefaults(&m.cfg)
	if err := m.saveLocked(); err != nil {
		return Config{}, err
	}
	return m.cfg, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return err
	}
	m.cfg = fileCfg
	applyDefaults(&m.cfg)
	return nil
}

func (m *Manager) save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

func defaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   700,
			TimeoutSec:  90,
		},
		Catalog: CatalogConfig{
			Provider:      "rainforest",
			Zip:           "85281",
			CacheDir:      filepath.Join("data", "cache", "catalog"),
			CacheTTLHours: 24,
		},
		Places: PlacesConfig{
			CacheDir:    filepath.Join("data", "cache", "places"),
			CacheTTLMin: 15,
		},
		Commute: CommuteConfig{
			ArriveBy:            "09:00",
			BufferMin:           10,
			RerouteThresholdMin: 8,
		},
		Brief: BriefConfig{
			At:          "06:30",
			Timezone:    "America/Phoenix",
			Fahrenheit:  true,
			ReportDir:   filepath.Join("output", "reports"),
			DataDir:     "data",
			ProfilePath: filepath.Join("config", "profile.json"),
		},
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()

	if strings.TrimSpace(cfg.LLM.Model) == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		cfg.LLM.Temperature = def.LLM.Temperature
	}
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = def.LLM.MaxTokens
	}
	if cfg.LLM.TimeoutSec <= 0 {
		cfg.LLM.TimeoutSec = def.LLM.TimeoutSec
	}

	if strings.TrimSpace(cfg.Catalog.Provider) == "" {
		cfg.Catalog.Provider = def.Catalog.Provider
	}
	if strings.TrimSpace(cfg.Catalog.Zip) == "" {
		cfg.Catalog.Zip = def.Catalog.Zip
	}
	if strings.TrimSpace(cfg.Catalog.CacheDir) == "" {
		cfg.Catalog.CacheDir = def.Catalog.CacheDir
	}
	if cfg.Catalog.CacheTTLHours <= 0 {
		cfg.Catalog.CacheTTLHours = def.Catalog.CacheTTLHours
	}

	if strings.TrimSpace(cfg.Places.CacheDir) == "" {
		cfg.Places.CacheDir = def.Places.CacheDir
	}
	if cfg.Places.CacheTTLMin <= 0 {
		cfg.Places.CacheTTLMin = def.Places.CacheTTLMin
	}

	if !validClock(cfg.Commute.ArriveBy) {
		cfg.Commute.ArriveBy = def.Commute.ArriveBy
	}
	if cfg.Commute.BufferMin <= 0 {
		cfg.Commute.BufferMin = def.Commute.BufferMin
	}
	if cfg.Commute.RerouteThresholdMin <= 0 {
		cfg.Commute.RerouteThresholdMin = def.Commute.RerouteThresholdMin
	}

	if !validClock(cfg.Brief.At) {
		cfg.Brief.At = def.Brief.At
	}
	if strings.TrimSpace(cfg.Brief.Timezone) == "" {
		cfg.Brief.Timezone = def.Brief.Timezone
	}
	if strings.TrimSpace(cfg.Brief.ReportDir) == "" {
		cfg.Brief.ReportDir = def.Brief.ReportDir
	}
	if strings.TrimSpace(cfg.Brief.DataDir) == "" {
		cfg.Brief.DataDir = def.Brief.DataDir
	}
	if strings.TrimSpace(cfg.Brief.ProfilePath) == "" {
		cfg.Brief.ProfilePath = def.Brief.ProfilePath
	}
}

// validClock accepts "HH:MM" wall-clock strings.
func validClock(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil
}
