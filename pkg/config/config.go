package config

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider      string `mapstructure:"provider" yaml:"provider,omitempty"`
	Model         string `mapstructure:"model" yaml:"model,omitempty"`
	MaxTokens     int    `mapstructure:"max_tokens" yaml:"max_tokens,omitempty"`
	BaseURL       string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	EndpointPath  string `mapstructure:"endpoint_path" yaml:"endpoint_path,omitempty"`
	DataDir       string `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir,omitempty"`
	TemplatesDir  string `mapstructure:"templates_dir" yaml:"templates_dir,omitempty"`
	PromptsDir    string `mapstructure:"prompts_dir" yaml:"prompts_dir,omitempty"`
	CostTracking  bool   `mapstructure:"cost_tracking" yaml:"cost_tracking"`
	CostLogDir    string `mapstructure:"cost_log_dir" yaml:"cost_log_dir,omitempty"`
	PricingFile   string `mapstructure:"pricing_file" yaml:"pricing_file,omitempty"`
	PricingRemote bool   `mapstructure:"pricing_remote" yaml:"pricing_remote"`
	PricingURL    string `mapstructure:"pricing_url" yaml:"pricing_url,omitempty"`
	LatexEngine   string `mapstructure:"latex_engine" yaml:"latex_engine,omitempty"`
}

// Dir holds per-project state such as customized prompts and templates.
const Dir = ".texcv"

var defaults = map[string]any{
	"provider":       "anthropic",
	"model":          "",
	"max_tokens":     4096,
	"base_url":       "",
	"endpoint_path":  "/chat/completions",
	"data_dir":       "data",
	"output_dir":     ".",
	"templates_dir":  Dir + "/templates",
	"prompts_dir":    Dir + "/prompts",
	"cost_tracking":  true,
	"cost_log_dir":   "logs",
	"pricing_file":   "pricing.json",
	"pricing_remote": true,
	"pricing_url":    "https://raw.githubusercontent.com/gramener/llmpricing/master/elo.csv",
	"latex_engine":   "xelatex",
}

var (
	configFile = ".texcv.yaml"
	v          *viper.Viper
)

func init() {
	v = newViper()
	// Try to read config file (ignore if not exists)
	_ = v.ReadInConfig()
}

func newViper() *viper.Viper {
	nv := viper.New()
	nv.SetConfigFile(configFile)

	for k, d := range defaults {
		nv.SetDefault(k, d)
	}

	// Environment variables, e.g. TEXCV_PROVIDER
	nv.SetEnvPrefix("TEXCV")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()
	return nv
}

func Path() string {
	return configFile
}

// Keys lists the valid config keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func isKey(key string) bool {
	_, ok := defaults[key]
	return ok
}

func Load() (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func Get(key string) (string, error) {
	if !isKey(key) {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	return v.GetString(key), nil
}

// Set validates value for key and writes it to the config file. Keys not
// set before are not added to the file.
func Set(key, value string) error {
	if !isKey(key) {
		return fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys(), ", "))
	}

	var typed any = value
	switch defaults[key].(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		typed = b
	case int:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer", key)
		}
		typed = n
	}

	file, err := readFile()
	if err != nil {
		return err
	}
	file[key] = typed

	v.Set(key, typed) // keep viper in sync
	return writeFile(file)
}

func readFile() (map[string]any, error) {
	file := map[string]any{}
	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return file, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configFile, err)
	}
	if file == nil {
		file = map[string]any{}
	}
	return file, nil
}

func writeFile(file map[string]any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return err
	}
	return os.WriteFile(configFile, buf.Bytes(), 0o644)
}

// All returns every key with its effective value.
func All() map[string]string {
	all := make(map[string]string, len(defaults))
	for k := range defaults {
		all[k] = v.GetString(k)
	}
	return all
}

// ResetForTest resets viper for testing (only use in tests)
func ResetForTest(testPath string) {
	configFile = testPath + "/.texcv.yaml"
	v = newViper()
	_ = v.ReadInConfig()
}
