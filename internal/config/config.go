// Package config loads the hub's layered configuration (spec §6) with
// github.com/spf13/viper, grounded on marmos91-dittofs's
// pkg/config/config.go: defaults seeded with SetDefault, a config file
// merged on top, and a strict mapstructure decode that rejects unknown
// keys.
package config

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// Config is the fully decoded, validated configuration tree for one
// hub process (spec §6).
type Config struct {
	Log               LogConfig               `mapstructure:"log"`
	Server            ServerConfig            `mapstructure:"server"`
	Encoder           EncoderConfig           `mapstructure:"encoder"`
	Matcher           MatcherConfig           `mapstructure:"matcher"`
	SubmoduleStore    SubmoduleStoreConfig    `mapstructure:"submodule_store"`
	OperationRecorder OperationRecorderConfig `mapstructure:"operation_recorder"`
}

// LogConfig lists the sinks the process-wide slog handler fans out to.
type LogConfig struct {
	Sinks []LogSinkConfig `mapstructure:"sinks"`
}

// LogSinkConfig configures a single logging sink (spec §6: "list of
// sinks (console | file <path>), each with its own level").
type LogSinkConfig struct {
	Kind      string `mapstructure:"kind"` // console | file
	Path      string `mapstructure:"path"` // required when kind == file
	Level     string `mapstructure:"level"`
	AddSource bool   `mapstructure:"add_source"`
	JSON      bool   `mapstructure:"json"`
}

// ServerConfig groups every inbound transport's settings.
type ServerConfig struct {
	GRPC              GRPCConfig              `mapstructure:"grpc"`
	Multicast         MulticastConfig         `mapstructure:"multicast"`
	Pipe              PipeConfig              `mapstructure:"pipe"`
	WindowsNamedPipes WindowsNamedPipesConfig `mapstructure:"windows_named_pipes"`
}

// GRPCConfig configures the rpcx transport server.
type GRPCConfig struct {
	Enable bool   `mapstructure:"enable"`
	Addr   string `mapstructure:"addr"`
	Port   int    `mapstructure:"port"`
}

// MulticastConfig configures the UDP discovery beacon. Parsed (unknown
// keys are rejected like everywhere else) but its values are not
// checked by validate and nothing reads them — multicast discovery is
// out of scope (spec.md Non-goals); the section is kept so a future
// build can turn it on without a config-format break.
type MulticastConfig struct {
	Enable         bool   `mapstructure:"enable"`
	BindAddr       string `mapstructure:"bind_addr"`
	BindPort       int    `mapstructure:"bind_port"`
	MulticastGroup string `mapstructure:"multicast_group"`
	MulticastPort  int    `mapstructure:"multicast_port"`
	MulticastInfo  string `mapstructure:"multicast_info"`
	IntervalSecs   int    `mapstructure:"interval_seconds"`
}

// PipeConfig configures the POSIX named-pipe transport.
type PipeConfig struct {
	Enable    bool   `mapstructure:"enable"`
	Directory string `mapstructure:"directory"`
}

// WindowsNamedPipesConfig configures the Windows named-pipe transport.
type WindowsNamedPipesConfig struct {
	Enable             bool   `mapstructure:"enable"`
	ModulePipe         string `mapstructure:"module_pipe"`
	InstructPipe       string `mapstructure:"instruct_pipe"`
	ManipulatePipe     string `mapstructure:"manipulate_pipe"`
}

// EncoderConfig selects and configures the instruction encoder (C2).
type EncoderConfig struct {
	Kind      string `mapstructure:"kind"` // http (alias: sentence_transformers) | mock
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model_name"`
	APIKey    string `mapstructure:"api_key"`
	Dimension uint64 `mapstructure:"dimension"`
}

// MatcherConfig selects and configures the instruction matcher (C3).
type MatcherConfig struct {
	Kind string `mapstructure:"kind"` // in_process_hnsw | mock
}

// SubmoduleStoreConfig selects the submodule registry backend (C4).
type SubmoduleStoreConfig struct {
	Kind string `mapstructure:"kind"` // in_memory
}

// OperationRecorderConfig selects and configures the operation
// recorder (C5).
type OperationRecorderConfig struct {
	Kind       string `mapstructure:"kind"` // log | sqlite
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Load reads config.{toml,yaml,json} from the working directory,
// writing a default-populated config.toml if none exists (spec §6: "a
// single binary... writes a default on first run"). Unknown keys are a
// ConfigError (spec §6: "unknown keys are an error").
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, domain.NewConfigError("config file", err)
		}
		v.SetConfigType("toml")
		if err := v.SafeWriteConfigAs("config.toml"); err != nil {
			return nil, domain.NewConfigError("config file", fmt.Errorf("write default config.toml: %w", err))
		}
	}

	var cfg Config
	decodeOpt := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
	})
	if err := v.Unmarshal(&cfg, decodeOpt); err != nil {
		return nil, domain.NewConfigError("config file", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.sinks", []map[string]any{
		{"kind": "console", "level": "info", "add_source": false, "json": false},
	})

	v.SetDefault("server.grpc.enable", true)
	v.SetDefault("server.grpc.addr", "0.0.0.0")
	v.SetDefault("server.grpc.port", 5050)

	v.SetDefault("server.multicast.enable", false)
	v.SetDefault("server.multicast.bind_addr", "0.0.0.0")
	v.SetDefault("server.multicast.bind_port", 0)
	v.SetDefault("server.multicast.multicast_group", "224.0.0.123")
	v.SetDefault("server.multicast.multicast_port", 1234)
	v.SetDefault("server.multicast.multicast_info", "")
	v.SetDefault("server.multicast.interval_seconds", 5)

	v.SetDefault("server.pipe.enable", false)
	v.SetDefault("server.pipe.directory", "./communication")

	v.SetDefault("server.windows_named_pipes.enable", false)
	v.SetDefault("server.windows_named_pipes.module_pipe", `\\.\pipe\hub-module`)
	v.SetDefault("server.windows_named_pipes.instruct_pipe", `\\.\pipe\hub-instruct`)
	v.SetDefault("server.windows_named_pipes.manipulate_pipe", `\\.\pipe\hub-manipulate`)

	v.SetDefault("encoder.kind", "mock")
	v.SetDefault("encoder.base_url", "http://localhost:8000/v1")
	v.SetDefault("encoder.model_name", "onnx_bge_small_zh")
	v.SetDefault("encoder.dimension", 384)

	v.SetDefault("matcher.kind", "in_process_hnsw")

	v.SetDefault("submodule_store.kind", "in_memory")

	v.SetDefault("operation_recorder.kind", "log")
	v.SetDefault("operation_recorder.sqlite_path", "./operations.db")
}

func validate(cfg *Config) error {
	switch cfg.Encoder.Kind {
	case "http", "sentence_transformers", "mock":
	default:
		return domain.NewConfigError("encoder.kind", fmt.Errorf("unsupported kind %q", cfg.Encoder.Kind))
	}
	switch cfg.Matcher.Kind {
	case "in_process_hnsw", "mock":
	default:
		return domain.NewConfigError("matcher.kind", fmt.Errorf("unsupported kind %q", cfg.Matcher.Kind))
	}
	switch cfg.SubmoduleStore.Kind {
	case "in_memory":
	default:
		return domain.NewConfigError("submodule_store.kind", fmt.Errorf("unsupported kind %q", cfg.SubmoduleStore.Kind))
	}
	switch cfg.OperationRecorder.Kind {
	case "log", "sqlite":
	default:
		return domain.NewConfigError("operation_recorder.kind", fmt.Errorf("unsupported kind %q", cfg.OperationRecorder.Kind))
	}
	return nil
}
