// Package config loads the go-istage configuration from YAML and git config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cszczepaniak/go-istage/internal/theme"
	"gopkg.in/yaml.v3"
)

// AppConfig defines the global go-istage configuration options.
type AppConfig struct {
	Theme         string // Theme name: see AvailableThemes in internal/theme
	AutoRefresh   bool   // Reload the diff when the working tree changes (default: false)
	ShowIcons     bool   // Render Nerd Font icons in the file list (default: true)
	ContextLines  int    // Unified diff context, -1 means git's default
	UpdateDelayMS int    // Watcher debounce window in milliseconds
	DebugLog      string
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Theme:         "",
		AutoRefresh:   false,
		ShowIcons:     true,
		ContextLines:  -1,
		UpdateDelayMS: 600,
	}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		switch text {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return defaultVal
	case int:
		return v
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}
	return defaultVal
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()

	if themeName, ok := data["theme"].(string); ok {
		if normalized := NormalizeThemeName(themeName); normalized != "" {
			cfg.Theme = normalized
		}
	}

	cfg.AutoRefresh = coerceBool(data["auto_refresh"], cfg.AutoRefresh)
	cfg.ShowIcons = coerceBool(data["show_icons"], cfg.ShowIcons)
	cfg.ContextLines = coerceInt(data["context_lines"], cfg.ContextLines)
	cfg.UpdateDelayMS = coerceInt(data["update_delay_ms"], cfg.UpdateDelayMS)

	if debugLog, ok := data["debug_log"].(string); ok {
		debugLog = strings.TrimSpace(debugLog)
		if debugLog != "" {
			cfg.DebugLog = debugLog
		}
	}

	// Any negative context means "let git choose"; git rejects negative
	// --unified values outright.
	if cfg.ContextLines < 0 {
		cfg.ContextLines = -1
	}
	if cfg.UpdateDelayMS < 0 {
		cfg.UpdateDelayMS = 0
	}

	return cfg
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// LoadConfig reads the application configuration. Values come from, in
// increasing precedence: built-in defaults, the YAML file, and istage.*
// keys in the repository's git config when repoPath names a repository.
// A malformed YAML file yields the defaults along with the parse error so
// the caller can warn without aborting.
func LoadConfig(configPath, repoPath string) (*AppConfig, error) {
	configBase := filepath.Join(getConfigDir(), "go-istage")
	configBase = filepath.Clean(configBase)

	var paths []string

	if configPath != "" {
		expanded, err := expandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return DefaultConfig(), err
		}
		if !isPathWithin(configBase, absPath) {
			return DefaultConfig(), fmt.Errorf("config path must reside inside %s", configBase)
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	data := map[string]any{}

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		// #nosec G304 -- path is constrained to the config directory after validation
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		if err := yaml.Unmarshal(raw, &data); err != nil {
			return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}

	if repoPath != "" && isInGitRepo(repoPath) {
		gitData, err := loadGitConfig(repoPath)
		if err == nil {
			for key, value := range gitData {
				data[key] = value
			}
		}
	}

	cfg := parseConfig(data)

	if cfg.Theme == "" {
		detected, err := theme.DetectBackground(500 * time.Millisecond)
		if err == nil {
			cfg.Theme = detected
		} else {
			cfg.Theme = theme.DefaultDark()
		}
	}

	return cfg, nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}

func isPathWithin(base, target string) bool {
	base = filepath.Clean(base)
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}

// NormalizeThemeName returns the canonical theme name if it is supported.
func NormalizeThemeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case theme.DraculaName,
		theme.CleanLightName,
		theme.SolarizedDarkName,
		theme.SolarizedLightName,
		theme.GruvboxDarkName,
		theme.NordName:
		return name
	default:
		return ""
	}
}
