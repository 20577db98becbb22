package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// StateDirName is the project-local directory holding the repository index
// and the model-output cache. Both files inside it are disposable.
const StateDirName = ".glint"

// Config is the effective, immutable run configuration.
type Config struct {
	Provider      string `json:"provider" yaml:"provider"`
	Model         string `json:"model" yaml:"model"`
	EmbedProvider string `json:"embedProvider" yaml:"embedProvider"`
	EmbedModel    string `json:"embedModel" yaml:"embedModel"`

	MaxFindings    int `json:"maxFindings" yaml:"maxFindings"`
	ContextPadding int `json:"contextPadding" yaml:"contextPadding"`
	RetrievalK     int `json:"retrievalK" yaml:"retrievalK"`

	RulesEnabled     bool `json:"rulesEnabled" yaml:"rulesEnabled"`
	LLMEnabled       bool `json:"llmEnabled" yaml:"llmEnabled"`
	RetrievalEnabled bool `json:"retrievalEnabled" yaml:"retrievalEnabled"`
	AllowConsole     bool `json:"allowConsole" yaml:"allowConsole"`
	Skip             bool `json:"-" yaml:"-"`

	Include []string `json:"include" yaml:"include"`
	Exclude []string `json:"exclude" yaml:"exclude"`

	Budget  BudgetConfig  `json:"budget" yaml:"budget"`
	AutoFix AutoFixConfig `json:"autofix" yaml:"autofix"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
	Pricing PricingConfig `json:"pricing" yaml:"pricing"`

	Verbose bool `json:"-" yaml:"-"`
}

// BudgetConfig holds the soft cooperative limits on model-dependent work.
// Each gate is checked before scheduling a new call, never mid-flight.
type BudgetConfig struct {
	MaxLLMCalls    int `json:"maxLLMCalls" yaml:"maxLLMCalls"`
	TimeSeconds    int `json:"timeSeconds" yaml:"timeSeconds"`
	TokenBudget    int `json:"tokenBudget" yaml:"tokenBudget"`
	MaxConcurrency int `json:"maxConcurrency" yaml:"maxConcurrency"`
}

// AutoFixConfig controls which findings may be applied automatically.
type AutoFixConfig struct {
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	Categories []string `json:"categories" yaml:"categories"`
	MaxLines   int      `json:"maxLines" yaml:"maxLines"`
	Commit     bool     `json:"commit" yaml:"commit"`
}

// CacheConfig controls model-output caching.
type CacheConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled"`
	TTLSeconds int  `json:"ttlSeconds" yaml:"ttlSeconds"`
}

// PricingConfig holds optional per-1K-token unit prices for cost estimates.
// Zero values disable the estimate in the run summary.
type PricingConfig struct {
	PromptPer1K     float64 `json:"promptPer1K" yaml:"promptPer1K"`
	CompletionPer1K float64 `json:"completionPer1K" yaml:"completionPer1K"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:         "anthropic",
		Model:            "claude-sonnet-4-20250514",
		EmbedProvider:    "openai",
		EmbedModel:       "text-embedding-3-small",
		MaxFindings:      20,
		ContextPadding:   30,
		RetrievalK:       5,
		RulesEnabled:     true,
		LLMEnabled:       true,
		RetrievalEnabled: true,
		Include:          []string{"**/*"},
		Exclude:          []string{"vendor/**", "**/node_modules/**", "**/*.gen.go", "**/dist/**"},
		Budget: BudgetConfig{
			MaxLLMCalls:    30,
			TimeSeconds:    600,
			TokenBudget:    200000,
			MaxConcurrency: 4,
		},
		AutoFix: AutoFixConfig{
			Enabled:    false,
			Categories: []string{"style", "docs"},
			MaxLines:   10,
			Commit:     true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 7 * 86400,
		},
	}
}

// MatchesPath reports whether a repository-relative path passes the
// include/exclude glob filters.
func (c Config) MatchesPath(path string) bool {
	path = filepath.ToSlash(path)
	included := len(c.Include) == 0
	for _, pat := range c.Include {
		if ok, _ := doublestar.Match(pat, path); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pat := range c.Exclude {
		if ok, _ := doublestar.Match(pat, path); ok {
			return false
		}
	}
	return true
}

// IndexPath returns the repository index file location under root.
func IndexPath(root string) string {
	return filepath.Join(root, StateDirName, "index.json")
}

// CachePath returns the model-output cache file location under root.
func CachePath(root string) string {
	return filepath.Join(root, StateDirName, "cache.json")
}

// ConfigDir returns the platform-appropriate global config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "glint"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "glint"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "glint"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "glint"), nil
	default:
		return filepath.Join(home, ".config", "glint"), nil
	}
}

// ConfigPath returns the full path to the global config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load builds the effective config: defaults <- global file <- project file
// <- env <- labels <- flag overrides. root locates the project overlay; pass
// "" to skip it.
func Load(root string, labels []string, overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := loadGlobalFile()
	if err != nil {
		return Config{}, err
	}
	mergePartial(&cfg, fileCfg)

	if root != "" {
		projCfg, err := loadProjectFile(root)
		if err != nil {
			return Config{}, err
		}
		mergePartial(&cfg, projCfg)
	}

	mergeEnv(&cfg)
	ApplyLabels(&cfg, labels)
	mergeOverrides(&cfg, overrides)

	// A zero or negative concurrency would stall the worker pool.
	if cfg.Budget.MaxConcurrency < 1 {
		cfg.Budget.MaxConcurrency = 1
	}

	return cfg, nil
}

// partial mirrors Config with pointer fields so that unset values can be
// distinguished from explicit zero values in both JSON and YAML sources.
type partial struct {
	Provider      *string `json:"provider" yaml:"provider"`
	Model         *string `json:"model" yaml:"model"`
	EmbedProvider *string `json:"embedProvider" yaml:"embedProvider"`
	EmbedModel    *string `json:"embedModel" yaml:"embedModel"`

	MaxFindings    *int `json:"maxFindings" yaml:"maxFindings"`
	ContextPadding *int `json:"contextPadding" yaml:"contextPadding"`
	RetrievalK     *int `json:"retrievalK" yaml:"retrievalK"`

	RulesEnabled     *bool `json:"rulesEnabled" yaml:"rulesEnabled"`
	LLMEnabled       *bool `json:"llmEnabled" yaml:"llmEnabled"`
	RetrievalEnabled *bool `json:"retrievalEnabled" yaml:"retrievalEnabled"`
	AllowConsole     *bool `json:"allowConsole" yaml:"allowConsole"`

	Include []string `json:"include" yaml:"include"`
	Exclude []string `json:"exclude" yaml:"exclude"`

	Budget *struct {
		MaxLLMCalls    *int `json:"maxLLMCalls" yaml:"maxLLMCalls"`
		TimeSeconds    *int `json:"timeSeconds" yaml:"timeSeconds"`
		TokenBudget    *int `json:"tokenBudget" yaml:"tokenBudget"`
		MaxConcurrency *int `json:"maxConcurrency" yaml:"maxConcurrency"`
	} `json:"budget" yaml:"budget"`

	AutoFix *struct {
		Enabled    *bool    `json:"enabled" yaml:"enabled"`
		Categories []string `json:"categories" yaml:"categories"`
		MaxLines   *int     `json:"maxLines" yaml:"maxLines"`
		Commit     *bool    `json:"commit" yaml:"commit"`
	} `json:"autofix" yaml:"autofix"`

	Cache *struct {
		Enabled    *bool `json:"enabled" yaml:"enabled"`
		TTLSeconds *int  `json:"ttlSeconds" yaml:"ttlSeconds"`
	} `json:"cache" yaml:"cache"`

	Pricing *struct {
		PromptPer1K     *float64 `json:"promptPer1K" yaml:"promptPer1K"`
		CompletionPer1K *float64 `json:"completionPer1K" yaml:"completionPer1K"`
	} `json:"pricing" yaml:"pricing"`
}

func loadGlobalFile() (partial, error) {
	path, err := ConfigPath()
	if err != nil {
		return partial{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return partial{}, nil
		}
		return partial{}, fmt.Errorf("reading config file: %w", err)
	}
	var p partial
	if err := json.Unmarshal(data, &p); err != nil {
		return partial{}, fmt.Errorf("parsing config file: %w", err)
	}
	return p, nil
}

func loadProjectFile(root string) (partial, error) {
	for _, name := range []string{".glint.yml", ".glint.yaml"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return partial{}, fmt.Errorf("reading %s: %w", name, err)
		}
		var p partial
		if err := yaml.Unmarshal(data, &p); err != nil {
			return partial{}, fmt.Errorf("parsing %s: %w", name, err)
		}
		return p, nil
	}
	return partial{}, nil
}

func mergePartial(dst *Config, src partial) {
	setString(&dst.Provider, src.Provider)
	setString(&dst.Model, src.Model)
	setString(&dst.EmbedProvider, src.EmbedProvider)
	setString(&dst.EmbedModel, src.EmbedModel)
	setInt(&dst.MaxFindings, src.MaxFindings)
	setInt(&dst.ContextPadding, src.ContextPadding)
	setInt(&dst.RetrievalK, src.RetrievalK)
	setBool(&dst.RulesEnabled, src.RulesEnabled)
	setBool(&dst.LLMEnabled, src.LLMEnabled)
	setBool(&dst.RetrievalEnabled, src.RetrievalEnabled)
	setBool(&dst.AllowConsole, src.AllowConsole)
	if len(src.Include) > 0 {
		dst.Include = src.Include
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.Budget != nil {
		setInt(&dst.Budget.MaxLLMCalls, src.Budget.MaxLLMCalls)
		setInt(&dst.Budget.TimeSeconds, src.Budget.TimeSeconds)
		setInt(&dst.Budget.TokenBudget, src.Budget.TokenBudget)
		setInt(&dst.Budget.MaxConcurrency, src.Budget.MaxConcurrency)
	}
	if src.AutoFix != nil {
		setBool(&dst.AutoFix.Enabled, src.AutoFix.Enabled)
		if len(src.AutoFix.Categories) > 0 {
			dst.AutoFix.Categories = src.AutoFix.Categories
		}
		setInt(&dst.AutoFix.MaxLines, src.AutoFix.MaxLines)
		setBool(&dst.AutoFix.Commit, src.AutoFix.Commit)
	}
	if src.Cache != nil {
		setBool(&dst.Cache.Enabled, src.Cache.Enabled)
		setInt(&dst.Cache.TTLSeconds, src.Cache.TTLSeconds)
	}
	if src.Pricing != nil {
		if src.Pricing.PromptPer1K != nil {
			dst.Pricing.PromptPer1K = *src.Pricing.PromptPer1K
		}
		if src.Pricing.CompletionPer1K != nil {
			dst.Pricing.CompletionPer1K = *src.Pricing.CompletionPer1K
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("GLINT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("GLINT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GLINT_EMBED_PROVIDER"); v != "" {
		cfg.EmbedProvider = v
	}
	if v := os.Getenv("GLINT_EMBED_MODEL"); v != "" {
		cfg.EmbedModel = v
	}
	if v := os.Getenv("GLINT_MAX_FINDINGS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFindings = n
		}
	}
	if v := os.Getenv("GLINT_RETRIEVAL_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetrievalK = n
		}
	}
	if v := os.Getenv("GLINT_DISABLE_LLM"); v == "1" || strings.EqualFold(v, "true") {
		cfg.LLMEnabled = false
	}
	if v := os.Getenv("GLINT_DISABLE_RAG"); v == "1" || strings.EqualFold(v, "true") {
		cfg.RetrievalEnabled = false
	}
}

// ApplyLabels folds review labels into toggles. Unknown labels are ignored.
func ApplyLabels(cfg *Config, labels []string) {
	for _, label := range labels {
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "glint:skip":
			cfg.Skip = true
		case "glint:rules-only":
			cfg.LLMEnabled = false
		case "glint:no-rag":
			cfg.RetrievalEnabled = false
		case "glint:no-autofix":
			cfg.AutoFix.Enabled = false
		case "glint:autofix":
			cfg.AutoFix.Enabled = true
		case "glint:allow-console":
			cfg.AllowConsole = true
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["maxFindings"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFindings = n
		}
	}
	if v, ok := overrides["retrievalK"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetrievalK = n
		}
	}
	if v, ok := overrides["noLLM"]; ok && v == "true" {
		cfg.LLMEnabled = false
	}
	if v, ok := overrides["noRules"]; ok && v == "true" {
		cfg.RulesEnabled = false
	}
	if v, ok := overrides["noRAG"]; ok && v == "true" {
		cfg.RetrievalEnabled = false
	}
	if v, ok := overrides["autofix"]; ok && v == "true" {
		cfg.AutoFix.Enabled = true
	}
}

// Save writes cfg to the global config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SetField sets a single config field by key name.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "embedProvider":
		cfg.EmbedProvider = value
	case "embedModel":
		cfg.EmbedModel = value
	case "maxFindings":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxFindings must be an integer: %w", err)
		}
		cfg.MaxFindings = n
	case "retrievalK":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("retrievalK must be an integer: %w", err)
		}
		cfg.RetrievalK = n
	case "contextPadding":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("contextPadding must be an integer: %w", err)
		}
		cfg.ContextPadding = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
