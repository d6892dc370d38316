package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/randalmurphal/textflow/pkg/textflow/llm"
	"github.com/randalmurphal/textflow/pkg/textflow/prompt"
)

// Environment variable names.
const (
	EnvAPIKey       = "DEEPSEEK_API_KEY"
	EnvBackend      = "TEXTFLOW_BACKEND"
	EnvModel        = "TEXTFLOW_MODEL"
	EnvBaseURL      = "TEXTFLOW_BASE_URL"
	EnvLogLevel     = "TEXTFLOW_LOG_LEVEL"
	EnvAddr         = "TEXTFLOW_ADDR"
	EnvCanvasDriver = "TEXTFLOW_CANVAS_DRIVER"
	EnvCanvasDSN    = "TEXTFLOW_CANVAS_DSN"
)

// Generation backends.
const (
	BackendOpenAI  = "openai"
	BackendCommand = "command"
)

// Settings is the complete runtime configuration.
type Settings struct {
	LLM       LLMSettings       `yaml:"llm"`
	Prompt    PromptSettings    `yaml:"prompt"`
	Log       LogSettings       `yaml:"log"`
	Server    ServerSettings    `yaml:"server"`
	Canvas    CanvasSettings    `yaml:"canvas"`
	Telemetry TelemetrySettings `yaml:"telemetry"`
}

// LLMSettings configures the generation service.
type LLMSettings struct {
	Backend string `yaml:"backend" validate:"oneof=openai command"`
	// APIKey is only read from the environment.
	APIKey      string        `yaml:"-"`
	BaseURL     string        `yaml:"base_url" validate:"required_if=Backend openai,omitempty,url"`
	Model       string        `yaml:"model" validate:"required"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	Temperature float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	Command     string        `yaml:"command" validate:"required_if=Backend command"`
}

// PromptSettings overrides the instructions sent to the service.
type PromptSettings struct {
	System string `yaml:"system" validate:"required"`
	User   string `yaml:"user" validate:"required"`
}

// LogSettings configures the slog handler.
type LogSettings struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// ServerSettings configures the HTTP server.
type ServerSettings struct {
	Addr            string        `yaml:"addr" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// CanvasSettings selects the drawing surface.
type CanvasSettings struct {
	Driver string `yaml:"driver" validate:"required"`
	DSN    string `yaml:"dsn"`
	Page   string `yaml:"page" validate:"required"`
}

// TelemetrySettings toggles OpenTelemetry instrumentation.
type TelemetrySettings struct {
	Metrics bool `yaml:"metrics"`
	Tracing bool `yaml:"tracing"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		LLM: LLMSettings{
			Backend:     BackendOpenAI,
			BaseURL:     llm.DefaultBaseURL,
			Model:       llm.DefaultModel,
			Timeout:     60 * time.Second,
			Temperature: 0.7,
			Command:     "claude",
		},
		Prompt: PromptSettings{System: prompt.DefaultSystem, User: prompt.DefaultUser},
		Log:    LogSettings{Level: "info", Format: "text"},
		Server: ServerSettings{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		Canvas: CanvasSettings{Driver: "memory", Page: "default"},
	}
}

// HasCredential reports whether the generation service can be called.
// The command backend authenticates on its own.
func (s Settings) HasCredential() bool {
	if s.LLM.Backend == BackendCommand {
		return true
	}
	return strings.TrimSpace(s.LLM.APIKey) != ""
}

// Prompts returns the configured prompt set.
func (s Settings) Prompts() prompt.Set {
	return prompt.Set{System: s.Prompt.System, User: s.Prompt.User}
}

// NewClient builds the configured generation client.
func (s Settings) NewClient() llm.Client {
	if s.LLM.Backend == BackendCommand {
		return llm.NewCommand(s.LLM.Command,
			llm.WithCommandModel(s.LLM.Model),
			llm.WithCommandTimeout(s.LLM.Timeout),
		)
	}
	return llm.NewOpenAI(s.LLM.APIKey,
		llm.WithBaseURL(s.LLM.BaseURL),
		llm.WithModel(s.LLM.Model),
		llm.WithTimeout(s.LLM.Timeout),
		llm.WithTemperature(s.LLM.Temperature),
	)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml key names so errors match what users write.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks field constraints and the prompt templates.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
	}
	if err := s.Prompts().Validate(); err != nil {
		return fmt.Errorf("invalid settings: prompt: %w", err)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	// Namespace is "Settings.llm.model"; drop the root type.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	case "hostname_port":
		return field + " must be host:port"
	default:
		return fmt.Sprintf("%s failed %s%s", field, fe.Tag(), paramSuffix(fe.Param()))
	}
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

type loadConfig struct {
	envFile string
	lookup  func(string) (string, bool)
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// WithEnvFile sets the dotenv file consulted for unset variables.
// Default ".env"; an empty path disables it. A missing file is not an error.
func WithEnvFile(path string) LoadOption {
	return func(c *loadConfig) {
		c.envFile = path
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) LoadOption {
	return func(c *loadConfig) {
		if fn != nil {
			c.lookup = fn
		}
	}
}

// Load builds Settings from defaults, the optional file at path, and the
// environment, then validates the result.
func Load(path string, opts ...LoadOption) (Settings, error) {
	lc := loadConfig{envFile: ".env", lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&lc)
	}

	s := Defaults()
	if path != "" {
		cfg, err := FromFile(path)
		if err != nil {
			return Settings{}, err
		}
		s.apply(cfg)
	}

	dotenv := map[string]string{}
	if lc.envFile != "" {
		m, err := godotenv.Read(lc.envFile)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Settings{}, fmt.Errorf("read env file: %w", err)
		}
	}
	s.applyEnv(func(key string) (string, bool) {
		if v, ok := lc.lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) apply(cfg Config) {
	l := cfg.Section("llm")
	s.LLM.Backend = l.String("backend", s.LLM.Backend)
	s.LLM.BaseURL = l.String("base_url", s.LLM.BaseURL)
	s.LLM.Model = l.String("model", s.LLM.Model)
	s.LLM.Timeout = l.Duration("timeout", s.LLM.Timeout)
	s.LLM.Temperature = l.Float("temperature", s.LLM.Temperature)
	s.LLM.Command = l.String("command", s.LLM.Command)

	p := cfg.Section("prompt")
	s.Prompt.System = p.String("system", s.Prompt.System)
	s.Prompt.User = p.String("user", s.Prompt.User)

	lg := cfg.Section("log")
	s.Log.Level = lg.String("level", s.Log.Level)
	s.Log.Format = lg.String("format", s.Log.Format)

	srv := cfg.Section("server")
	s.Server.Addr = srv.String("addr", s.Server.Addr)
	s.Server.ShutdownTimeout = srv.Duration("shutdown_timeout", s.Server.ShutdownTimeout)

	c := cfg.Section("canvas")
	s.Canvas.Driver = c.String("driver", s.Canvas.Driver)
	s.Canvas.DSN = c.String("dsn", s.Canvas.DSN)
	s.Canvas.Page = c.String("page", s.Canvas.Page)

	t := cfg.Section("telemetry")
	s.Telemetry.Metrics = t.Bool("metrics", s.Telemetry.Metrics)
	s.Telemetry.Tracing = t.Bool("tracing", s.Telemetry.Tracing)
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvAPIKey, &s.LLM.APIKey)
	set(EnvBackend, &s.LLM.Backend)
	set(EnvModel, &s.LLM.Model)
	set(EnvBaseURL, &s.LLM.BaseURL)
	set(EnvLogLevel, &s.Log.Level)
	set(EnvAddr, &s.Server.Addr)
	set(EnvCanvasDriver, &s.Canvas.Driver)
	set(EnvCanvasDSN, &s.Canvas.DSN)
}
