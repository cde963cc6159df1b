// Command hubd runs the terminal hub: it loads config.toml, wires the
// encoder/matcher/store/recorder and transport servers the config
// selects, and blocks until signalled to stop. Mirrors the teacher's
// cmd/ployzd/main.go shape: a cobra root command whose PersistentPreRunE
// configures logging and whose RunE builds and runs the long-lived
// process under a signal-derived context.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"context"

	"github.com/spf13/cobra"

	"github.com/terminalhub/hub/internal/buildinfo"
	"github.com/terminalhub/hub/internal/config"
	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/encoder/httpencoder"
	"github.com/terminalhub/hub/internal/hub/encoder/mockencoder"
	"github.com/terminalhub/hub/internal/hub/manager"
	"github.com/terminalhub/hub/internal/hub/matcher/inprocess"
	"github.com/terminalhub/hub/internal/hub/matcher/mockmatcher"
	"github.com/terminalhub/hub/internal/hub/recorder"
	"github.com/terminalhub/hub/internal/hub/recorder/logrecorder"
	"github.com/terminalhub/hub/internal/hub/recorder/sqliterecorder"
	"github.com/terminalhub/hub/internal/hub/store"
	"github.com/terminalhub/hub/internal/hub/supervisor"
	"github.com/terminalhub/hub/internal/hub/transport/localpipe"
	"github.com/terminalhub/hub/internal/hub/transport/namedpipe"
	"github.com/terminalhub/hub/internal/hub/transport/rpcx"
	"github.com/terminalhub/hub/internal/logging"
)

func main() {
	if err := logging.Configure(logging.LevelInfo, nil); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "hubd",
		Short:   "Terminal hub daemon",
		Version: buildinfo.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level, nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			sinks := make([]logging.SinkConfig, 0, len(cfg.Log.Sinks))
			for _, s := range cfg.Log.Sinks {
				sinks = append(sinks, logging.SinkConfig{
					Kind:      s.Kind,
					Path:      s.Path,
					Level:     s.Level,
					AddSource: s.AddSource,
					JSON:      s.JSON,
				})
			}
			level := logging.LevelInfo
			if debug {
				level = logging.LevelDebug
			}
			if err := logging.Configure(level, sinks); err != nil {
				return err
			}

			sup, err := buildSupervisor(cfg)
			if err != nil {
				return err
			}

			slog.Info("hub starting", "version", buildinfo.Version)
			return sup.Run(ctx)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}

// buildSupervisor translates a decoded config.Config into a running
// supervisor.Supervisor, selecting the concrete component for each
// *.Kind field, registering the RPC, local-pipe and named-pipe client
// factories unconditionally, and adding a transport.Server per enabled
// transport (spec §4.7, §6).
func buildSupervisor(cfg *config.Config) (*supervisor.Supervisor, error) {
	opts := []supervisor.Option{
		supervisor.WithStore(store.New()),
	}

	switch cfg.Matcher.Kind {
	case "mock":
		opts = append(opts, supervisor.WithMatcher(mockmatcher.New(cfg.Encoder.Dimension)))
	default:
		opts = append(opts, supervisor.WithMatcher(inprocess.New(cfg.Encoder.Dimension)))
	}

	switch cfg.Encoder.Kind {
	case "mock":
		opts = append(opts, supervisor.WithEncoder(mockencoder.New(cfg.Encoder.Dimension)))
	default:
		opts = append(opts, supervisor.WithEncoder(httpencoder.New(httpencoder.Config{
			BaseURL: cfg.Encoder.BaseURL,
			Model:   cfg.Encoder.Model,
			APIKey:  cfg.Encoder.APIKey,
			Dim:     cfg.Encoder.Dimension,
		})))
	}

	switch cfg.OperationRecorder.Kind {
	case "sqlite":
		rec, err := sqliterecorder.Open(cfg.OperationRecorder.SQLitePath)
		if err != nil {
			return nil, domain.NewConfigError("operation_recorder.sqlite_path", err)
		}
		opts = append(opts, supervisor.WithRecorder(recorderAdapter{rec}))
	default:
		opts = append(opts, supervisor.WithRecorder(recorderAdapter{logrecorder.New(slog.Default())}))
	}

	opts = append(opts,
		supervisor.WithClientFactory(domain.ConnectionRPC, rpcx.ClientFactory{}),
		supervisor.WithClientFactory(domain.ConnectionLocalPipe, localpipe.ClientFactory{}),
		supervisor.WithClientFactory(domain.ConnectionOSNamedPipe, namedpipe.ClientFactory{}),
	)

	if cfg.Server.GRPC.Enable {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GRPC.Addr, cfg.Server.GRPC.Port)
		opts = append(opts, supervisor.WithTransportServer(rpcx.New(addr)))
	}
	if cfg.Server.Pipe.Enable {
		opts = append(opts, supervisor.WithTransportServer(localpipe.New(cfg.Server.Pipe.Directory)))
	}
	if cfg.Server.WindowsNamedPipes.Enable {
		opts = append(opts, supervisor.WithTransportServer(namedpipe.New(
			cfg.Server.WindowsNamedPipes.ModulePipe,
			cfg.Server.WindowsNamedPipes.InstructPipe,
			cfg.Server.WindowsNamedPipes.ManipulatePipe,
		)))
	}

	return supervisor.New(opts...)
}

// recorderAdapter satisfies manager.Recorder on top of a
// recorder.Recorder: the two packages define structurally identical
// but distinct entry types so manager never has to import recorder,
// so the conversion happens here at the wiring boundary instead.
type recorderAdapter struct {
	rec recorder.Recorder
}

func (a recorderAdapter) Record(ctx context.Context, e manager.RecordEntry) error {
	return a.rec.Record(ctx, recorder.Entry{
		Kind:          recorder.Kind(e.Kind),
		SubmoduleName: e.SubmoduleName,
		Detail:        e.Detail,
	})
}
