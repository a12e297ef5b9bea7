package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mcuadros/go-defaults"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"batchgen/internal/engine"
	"batchgen/internal/prompt"
)

// Config holds runtime parameters for batchgen. Precedence, lowest first:
// struct defaults, config file, environment, command-line flags (applied by
// the caller).
type Config struct {
	// Runtime selects the inference runtime: openai (vLLM) or llama. The
	// default pairs with the default AWQ safetensors repository; llama needs
	// a gguf repository instead.
	Runtime string `json:"runtime" yaml:"runtime" toml:"runtime" env:"BATCHGEN_RUNTIME" default:"openai"`

	Model    Model                 `json:"model" yaml:"model" toml:"model"`
	Hub      Hub                   `json:"hub" yaml:"hub" toml:"hub"`
	OpenAI   OpenAI                `json:"openai" yaml:"openai" toml:"openai"`
	Prompt   Prompt                `json:"prompt" yaml:"prompt" toml:"prompt"`
	Sampling engine.SamplingConfig `json:"sampling" yaml:"sampling" toml:"sampling"`
	Serve    Serve                 `json:"serve" yaml:"serve" toml:"serve"`
	Log      Log                   `json:"log" yaml:"log" toml:"log"`

	// QuestionsFile overrides the built-in question list (one per line).
	QuestionsFile string `json:"questions_file" yaml:"questions_file" toml:"questions_file" env:"BATCHGEN_QUESTIONS_FILE"`
	// PushgatewayURL, when set, receives the batch metrics after `run`.
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url" toml:"pushgateway_url" env:"BATCHGEN_PUSHGATEWAY_URL"`
}

// Model locates the weights and how the runtime loads them.
type Model struct {
	Repo     string `json:"repo" yaml:"repo" toml:"repo" env:"BATCHGEN_MODEL_REPO" default:"TheBloke/Mistral-7B-Instruct-v0.1-AWQ"`
	Revision string `json:"revision" yaml:"revision" toml:"revision" env:"BATCHGEN_MODEL_REVISION" default:"main"`
	Dir      string `json:"dir" yaml:"dir" toml:"dir" env:"BATCHGEN_MODEL_DIR" default:"/model"`
	Name     string `json:"name" yaml:"name" toml:"name" env:"BATCHGEN_MODEL_NAME"`
	// Quantization labels the weights in logs; runtimes read it from the files.
	Quantization string   `json:"quantization" yaml:"quantization" toml:"quantization" env:"BATCHGEN_QUANTIZATION" default:"awq"`
	ContextSize  int      `json:"context_size" yaml:"context_size" toml:"context_size" env:"BATCHGEN_CONTEXT_SIZE" default:"4096"`
	Threads      int      `json:"threads" yaml:"threads" toml:"threads" env:"BATCHGEN_THREADS"`
	GPULayers    int      `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers" env:"BATCHGEN_GPU_LAYERS"`
	Allow        []string `json:"allow" yaml:"allow" toml:"allow" default:"[*.json,*.safetensors,*.model,*.gguf,tokenizer*]"`
	Ignore       []string `json:"ignore" yaml:"ignore" toml:"ignore" default:"[*.pt,*.bin]"`
}

// Hub configures the model hub the weights are fetched from.
type Hub struct {
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint" env:"HF_ENDPOINT" default:"https://huggingface.co"`
	// Token is the access credential; normally injected as HF_TOKEN.
	Token string `json:"-" yaml:"-" toml:"-" env:"HF_TOKEN"`
}

// OpenAI configures the OpenAI-compatible runtime.
type OpenAI struct {
	BaseURL        string `json:"base_url" yaml:"base_url" toml:"base_url" env:"BATCHGEN_OPENAI_BASE_URL" default:"http://127.0.0.1:8000/v1"`
	APIKey         string `json:"-" yaml:"-" toml:"-" env:"BATCHGEN_OPENAI_API_KEY"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds" env:"BATCHGEN_OPENAI_TIMEOUT_SECONDS" default:"600"`
}

// Prompt selects the instruction template.
type Prompt struct {
	Template string `json:"template" yaml:"template" toml:"template" env:"BATCHGEN_PROMPT_TEMPLATE" default:"mistral-instruct"`
	System   string `json:"system" yaml:"system" toml:"system" env:"BATCHGEN_SYSTEM_PROMPT"`
}

// Serve configures the HTTP surface.
type Serve struct {
	Addr           string `json:"addr" yaml:"addr" toml:"addr" env:"BATCHGEN_ADDR" default:":8080"`
	MaxQueueDepth  int    `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth" env:"BATCHGEN_MAX_QUEUE_DEPTH" default:"8"`
	MaxWaitSeconds int    `json:"max_wait_seconds" yaml:"max_wait_seconds" toml:"max_wait_seconds" env:"BATCHGEN_MAX_WAIT_SECONDS" default:"30"`
	MaxBodyBytes   int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"BATCHGEN_MAX_BODY_BYTES" default:"1048576"`
	// GenerateTimeoutSeconds bounds one /generate call; 0 disables the limit.
	GenerateTimeoutSeconds int      `json:"generate_timeout_seconds" yaml:"generate_timeout_seconds" toml:"generate_timeout_seconds" env:"BATCHGEN_GENERATE_TIMEOUT_SECONDS" default:"900"`
	CORSOrigins            []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" env:"BATCHGEN_CORS_ORIGINS"`
}

// Log configures zerolog output.
type Log struct {
	Level string `json:"level" yaml:"level" toml:"level" env:"BATCHGEN_LOG_LEVEL" default:"info"`
	// Format is console, json, or auto (console on a terminal).
	Format string `json:"format" yaml:"format" toml:"format" env:"BATCHGEN_LOG_FORMAT" default:"auto"`
}

// Default returns a Config with only the struct defaults applied.
func Default() Config {
	var cfg Config
	defaults.SetDefaults(&cfg)
	return cfg
}

// Load builds the configuration: defaults, then the file at path (if any),
// then the environment. A .env file in the working directory is read first
// when present; variables already set in the process win.
func Load(ctx context.Context, path string) (Config, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, path, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit environment source.
func LoadWith(ctx context.Context, path string, env envconfig.Lookuper) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:           &cfg,
		Lookuper:         env,
		DefaultOverwrite: true,
	}); err != nil {
		return cfg, fmt.Errorf("env: %w", err)
	}
	return cfg, cfg.Validate()
}

// decodeFile reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func decodeFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
	return nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Runtime {
	case "llama", "openai", "vllm":
	default:
		return fmt.Errorf("unknown runtime %q (want openai|llama)", c.Runtime)
	}
	if _, err := prompt.Lookup(c.Prompt.Template); err != nil {
		return err
	}
	if err := c.Sampling.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Model.Dir) == "" {
		return fmt.Errorf("model.dir is required")
	}
	if c.Serve.GenerateTimeoutSeconds < 0 {
		return fmt.Errorf("serve.generate_timeout_seconds must be >= 0, got %d", c.Serve.GenerateTimeoutSeconds)
	}
	return nil
}

// Formatter builds the prompt formatter the configuration selects.
func (c Config) Formatter() (prompt.Formatter, error) {
	t, err := prompt.Lookup(c.Prompt.Template)
	if err != nil {
		return prompt.Formatter{}, err
	}
	return prompt.New(t, c.Prompt.System), nil
}

// LoadOptions maps the model section to engine load options.
func (c Config) LoadOptions() engine.LoadOptions {
	return engine.LoadOptions{
		Model:        c.Model.Name,
		Quantization: c.Model.Quantization,
		ContextSize:  c.Model.ContextSize,
		Threads:      c.Model.Threads,
		GPULayers:    c.Model.GPULayers,
	}
}
