package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. REPODOC_OLLAMA_MODEL for ollama.model.
const EnvPrefix = "REPODOC"

// LLMConfig selects the text-generation provider.
type LLMConfig struct {
	Provider              string  `yaml:"provider" mapstructure:"provider"`
	MaxRetries            int     `yaml:"max_retries" mapstructure:"max_retries"`
	RequestTimeoutSeconds int     `yaml:"request_timeout_seconds" mapstructure:"request_timeout_seconds"`
	Temperature           float64 `yaml:"temperature" mapstructure:"temperature"`
}

// OllamaConfig defines the Ollama configuration.
type OllamaConfig struct {
	Host  string `yaml:"host" mapstructure:"host"`
	Model string `yaml:"model" mapstructure:"model"`
}

// GeminiConfig defines the Gemini configuration.
type GeminiConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	Model  string `yaml:"model" mapstructure:"model"`
}

// AnalysisConfig defines the analysis parameters.
type AnalysisConfig struct {
	MaxFileReadSize    int64   `yaml:"max_file_read_size" mapstructure:"max_file_read_size"`
	MaxPromptLength    int     `yaml:"max_prompt_length" mapstructure:"max_prompt_length"`
	MaxStructureLength int     `yaml:"max_structure_length" mapstructure:"max_structure_length"`
	Language           string  `yaml:"language" mapstructure:"language"`
	InputCostPer1K     float64 `yaml:"input_cost_per_1k" mapstructure:"input_cost_per_1k"`
	OutputCostPer1K    float64 `yaml:"output_cost_per_1k" mapstructure:"output_cost_per_1k"`
}

// ExplorerConfig defines the file explorer configuration.
type ExplorerConfig struct {
	IgnoreDirs       []string `yaml:"ignore_dirs" mapstructure:"ignore_dirs"`
	IgnorePrefixes   []string `yaml:"ignore_prefixes" mapstructure:"ignore_prefixes"`
	IgnoreExtensions []string `yaml:"ignore_extensions" mapstructure:"ignore_extensions"`
	IgnoreFile       string   `yaml:"ignore_file" mapstructure:"ignore_file"`
	GlobalIgnoreFile string   `yaml:"global_ignore_file" mapstructure:"global_ignore_file"`
}

// FilesConfig names the checkpoint files.
type FilesConfig struct {
	Intermediate string `yaml:"intermediate" mapstructure:"intermediate"`
	Final        string `yaml:"final" mapstructure:"final"`
}

// LoggingConfig defines the logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// Config is the top-level configuration struct.
type Config struct {
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Ollama   OllamaConfig   `yaml:"ollama" mapstructure:"ollama"`
	Gemini   GeminiConfig   `yaml:"gemini" mapstructure:"gemini"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Explorer ExplorerConfig `yaml:"explorer" mapstructure:"explorer"`
	Files    FilesConfig    `yaml:"files" mapstructure:"files"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// AppConfig holds the loaded configuration.
var AppConfig *Config

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:              "ollama",
			MaxRetries:            0,
			RequestTimeoutSeconds: 120,
			Temperature:           0.7,
		},
		Ollama: OllamaConfig{
			Host:  "http://127.0.0.1:11434",
			Model: "gemma3:latest",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Analysis: AnalysisConfig{
			MaxFileReadSize:    150000, // 150 KB
			MaxPromptLength:    7500,
			MaxStructureLength: 4000,
			Language:           "English",
			InputCostPer1K:     0.0025,
			OutputCostPer1K:    0.01,
		},
		Explorer: ExplorerConfig{
			IgnoreDirs:       []string{".git"},
			IgnorePrefixes:   []string{},
			IgnoreExtensions: []string{},
			IgnoreFile:       ".gitignore",
			GlobalIgnoreFile: ".repodocignore",
		},
		Files: FilesConfig{
			Intermediate: "stats_intermediate.json",
			Final:        "stats_final.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// LoadConfig loads the configuration at path into AppConfig.
func LoadConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Load layers the defaults, the YAML file at path (skipped when absent) and
// REPODOC_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v, Default()); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("could not stat config file at %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}

	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return &cfg, nil
}

// WriteDefault writes the default configuration as YAML.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write config file at %s: %w", path, err)
	}
	return nil
}

// setDefaults registers every key of cfg with viper so that AutomaticEnv can
// override nested keys during Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	for key, value := range flatten("", tree) {
		v.SetDefault(key, value)
	}
	return nil
}

func flatten(prefix string, tree map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]interface{}); ok {
			for sk, sv := range flatten(key, sub) {
				out[sk] = sv
			}
			continue
		}
		out[key] = val
	}
	return out
}
