// Package supervisor wires the hub's components together and owns the
// process-wide lifecycle (spec §4.7, component C8), the way the
// teacher's internal/daemon/supervisor.Manager wires its engine, store,
// and controller: a functional-options constructor, a Run that blocks on
// ctx.Done, and named-task completion reported on a shutdown channel.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/terminalhub/hub/internal/check"
	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/manager"
	"github.com/terminalhub/hub/internal/hub/transport"
)

// channelBufferSize bounds the three event queues. The spec calls
// these "bounded unbounded-capacity" — in practice a generous fixed
// buffer so a slow manager loop never blocks a transport goroutine
// under normal load; sized the way the original's
// module_manager.channel_buffer default (10) was, scaled up for a
// buffered Go channel instead of an async mpsc.
const channelBufferSize = 256

// Supervisor owns the shared encoder, matcher, store, and recorder,
// plus every manager loop and transport server built on top of them.
type Supervisor struct {
	deps            manager.Deps
	transportServers []transport.Server
	logger          *slog.Logger
}

// Option configures a Supervisor under construction.
type Option func(*supervisorCfg)

type supervisorCfg struct {
	store           manager.Store
	matcher         manager.Matcher
	encoder         manager.Encoder
	recorder        manager.Recorder
	clientFactories map[domain.ConnectionKind]manager.ClientFactory
	transportServers []transport.Server
	logger          *slog.Logger
}

// WithStore injects the submodule registry (C4).
func WithStore(s manager.Store) Option { return func(c *supervisorCfg) { c.store = s } }

// WithMatcher injects the instruction matcher (C3).
func WithMatcher(m manager.Matcher) Option { return func(c *supervisorCfg) { c.matcher = m } }

// WithEncoder injects the instruction encoder (C2).
func WithEncoder(e manager.Encoder) Option { return func(c *supervisorCfg) { c.encoder = e } }

// WithRecorder injects the operation recorder (C5). Optional — a nil
// recorder disables recording entirely rather than erroring, since the
// recorder is explicitly best-effort (spec §4.5).
func WithRecorder(r manager.Recorder) Option { return func(c *supervisorCfg) { c.recorder = r } }

// WithClientFactory registers the outbound transport.ClientFactory for
// kind, used by the submodule manager at Register time.
func WithClientFactory(kind domain.ConnectionKind, f manager.ClientFactory) Option {
	return func(c *supervisorCfg) {
		if c.clientFactories == nil {
			c.clientFactories = make(map[domain.ConnectionKind]manager.ClientFactory)
		}
		c.clientFactories[kind] = f
	}
}

// WithTransportServer adds an inbound transport.Server to start
// alongside the manager loops. Call once per enabled transport.
func WithTransportServer(s transport.Server) Option {
	return func(c *supervisorCfg) { c.transportServers = append(c.transportServers, s) }
}

// WithLogger overrides the default logger every manager loop inherits.
func WithLogger(l *slog.Logger) Option { return func(c *supervisorCfg) { c.logger = l } }

// New validates and assembles a Supervisor. Missing required
// dependencies surface as a typed domain.ConfigError naming the
// offending component (spec §4.7).
func New(opts ...Option) (*Supervisor, error) {
	var cfg supervisorCfg
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.store == nil {
		return nil, domain.NewConfigError("submodule_store", errors.New("store unset"))
	}
	if cfg.matcher == nil {
		return nil, domain.NewConfigError("matcher", errors.New("matcher unset"))
	}
	if cfg.encoder == nil {
		return nil, domain.NewConfigError("encoder", errors.New("encoder unset"))
	}
	if len(cfg.transportServers) == 0 {
		return nil, domain.NewConfigError("server", errors.New("no transport servers enabled"))
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Supervisor{
		deps: manager.Deps{
			Store:           cfg.store,
			Matcher:         cfg.matcher,
			Encoder:         cfg.encoder,
			Recorder:        cfg.recorder,
			ClientFactories: cfg.clientFactories,
			Logger:          logger,
		},
		transportServers: cfg.transportServers,
		logger:           logger,
	}, nil
}

// Run spawns the four manager loops and every configured transport
// server, then blocks until ctx is cancelled or a task signals an
// unrecoverable error, at which point it cancels the internal token,
// waits for every task to report exit, and returns (spec §4.7). The
// event queues are never closed; the manager loops stop on the
// cancelled context.
func (s *Supervisor) Run(ctx context.Context) error {
	check.Assert(s.deps.Store != nil, "Supervisor.Run: store must not be nil")
	check.Assert(s.deps.Matcher != nil, "Supervisor.Run: matcher must not be nil")
	check.Assert(s.deps.Encoder != nil, "Supervisor.Run: encoder must not be nil")
	check.Assert(len(s.transportServers) > 0, "Supervisor.Run: at least one transport server must be registered")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	submoduleOperate := make(chan domain.ModuleOperate, channelBufferSize)
	instruct := make(chan domain.InstructEntity, channelBufferSize)
	manipulate := make(chan domain.ManipulateEntity, channelBufferSize)

	// managerCount + len(transportServers): every spawned task sends
	// exactly one name on shutdown before returning.
	shutdown := make(chan string, 4+len(s.transportServers))

	var taskErr error
	var taskErrOnce sync.Once
	failTask := func(name string, err error) {
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		taskErrOnce.Do(func() { taskErr = fmt.Errorf("%s: %w", name, err) })
		s.logger.Error("task failed, cancelling supervisor", "task", name, "err", err)
		cancel()
	}

	sm := &manager.SubmoduleManager{Deps: s.deps}
	im := &manager.InstructManager{Deps: s.deps}
	mm := &manager.ManipulateManager{Deps: s.deps}
	hm := &manager.HeartbeatManager{Deps: s.deps}

	go sm.Run(ctx, submoduleOperate, shutdown)
	go im.Run(ctx, instruct, shutdown)
	go mm.Run(ctx, manipulate, shutdown)
	go hm.Run(ctx, manager.HeartbeatTime, submoduleOperate, shutdown)

	inbox := transport.Inbox{
		SubmoduleOperate: submoduleOperate,
		Instruct:         instruct,
		Manipulate:       manipulate,
	}
	for i, srv := range s.transportServers {
		name := fmt.Sprintf("transport-%d", i)
		go func(name string, srv transport.Server) {
			defer func() { shutdown <- name }()
			if err := srv.Serve(ctx, inbox); err != nil {
				failTask(name, err)
			}
		}(name, srv)
	}

	<-ctx.Done()

	wantExits := 4 + len(s.transportServers)
	for range wantExits {
		<-shutdown
	}

	if taskErr != nil {
		return taskErr
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
