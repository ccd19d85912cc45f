package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// StagesCfg controls the waterfall composition.
type StagesCfg struct {
	// EnableStateFallback turns on the exact-name, state-only stage.
	// Off by default: its cross-city matches are verified false positives
	// in the source filings, so enabling it is an explicit operator
	// decision and its match count is always reported separately.
	EnableStateFallback bool `yaml:"enable_state_fallback" json:"enable_state_fallback"`

	// MiddleNameMinLength guards the middle-name stage against matching
	// bare initials.
	MiddleNameMinLength int `yaml:"middle_name_min_length" json:"middle_name_min_length"`
}

// EngineCfg is the matching-engine configuration, loaded from yaml with a
// few env overrides for deploy-time toggles.
type EngineCfg struct {
	Workers       int    `yaml:"workers" json:"workers"`
	CityCacheSize int    `yaml:"city_cache_size" json:"city_cache_size"`
	NearMissLimit int    `yaml:"near_miss_limit" json:"near_miss_limit"`
	NicknameTable string `yaml:"nickname_table" json:"nickname_table"` // path; empty = embedded default

	Stages StagesCfg `yaml:"stages" json:"stages"`
}

var C EngineCfg

// Load reads the engine config file into C. Missing file falls back to
// defaults so the worker can run with zero local setup.
func Load(path string) error {
	C = EngineCfg{
		Workers:       4,
		CityCacheSize: 4096,
		NearMissLimit: 50,
		Stages: StagesCfg{
			EnableStateFallback: false,
			MiddleNameMinLength: 2,
		},
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read engine config: %w", err)
	}
	if err := yaml.Unmarshal(b, &C); err != nil {
		return fmt.Errorf("parse engine config: %w", err)
	}

	// ENV overrides
	switch os.Getenv("ENABLE_STATE_FALLBACK") {
	case "0":
		C.Stages.EnableStateFallback = false
	case "1":
		C.Stages.EnableStateFallback = true
	}
	if v := os.Getenv("MATCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			C.Workers = n
		}
	}
	return nil
}
