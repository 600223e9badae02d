/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config manages the user-editable YAML configuration persisted in
// the user scope. Environment variables act as read-only overrides at
// runtime; config_version is bumped on backward-incompatible structure
// changes.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ShowConfig holds defaults applied when a track has no detected beat grid.
type ShowConfig struct {
	DefaultBPM         float64 `yaml:"default_bpm"`
	DefaultBeatsPerBar int     `yaml:"default_beats_per_bar"`
	SnapshotKeep       int     `yaml:"snapshot_keep"`
}

// LoggingConfig mirrors the options of internal/log.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// GeneralConfig holds application-wide toggles.
type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

// AppConfig is the root of the persisted configuration.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Show          ShowConfig    `yaml:"show"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Show:          ShowConfig{DefaultBPM: 120, DefaultBeatsPerBar: 4, SnapshotKeep: 50},
		Logging:       LoggingConfig{Level: "info", Format: "console", File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvTelemetryOptIn = "LS_TELEMETRY_OPT_IN"
	EnvDefaultBPM     = "LS_DEFAULT_BPM"
	EnvLogLevel       = "LS_LOG_LEVEL"
	EnvLogFormat      = "LS_LOG_FORMAT"
	EnvLogFile        = "LS_LOG_FILE"
)

// Path returns the per-user config file path.
func Path() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Lightscript")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Lightscript")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "lightscript")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := Path()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML, creating the config directory if needed.
func Save(cfg AppConfig) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans copy directly so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Show.DefaultBPM > 0 {
		dst.Show.DefaultBPM = src.Show.DefaultBPM
	}
	if src.Show.DefaultBeatsPerBar > 0 {
		dst.Show.DefaultBeatsPerBar = src.Show.DefaultBeatsPerBar
	}
	if src.Show.SnapshotKeep > 0 {
		dst.Show.SnapshotKeep = src.Show.SnapshotKeep
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		lv := strings.ToLower(v)
		cfg.General.TelemetryOptIn = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvDefaultBPM)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Show.DefaultBPM = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}
