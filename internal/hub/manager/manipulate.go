package manager

import (
	"context"
	"log/slog"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// ManipulateManager consumes domain.ManipulateEntity and dispatches it
// directly to the named submodule — no matcher lookup (spec §4.6.3).
type ManipulateManager struct {
	Deps
}

// Run drains in until it is closed or ctx is cancelled.
func (m *ManipulateManager) Run(ctx context.Context, in <-chan domain.ManipulateEntity, shutdown chan<- string) {
	defer func() { shutdown <- "manipulate" }()
	log := m.logger().With("component", "manipulate-manager")

	for {
		select {
		case <-ctx.Done():
			return
		case ent, ok := <-in:
			if !ok {
				return
			}
			m.handle(ctx, log, ent)
		}
	}
}

func (m *ManipulateManager) handle(ctx context.Context, log *slog.Logger, ent domain.ManipulateEntity) {
	recordBestEffort(ctx, m.Recorder, m.logger(), RecordEntry{
		Kind:          "manipulate",
		SubmoduleName: ent.UseModuleName,
	})

	if ent.ManipulateType == domain.ManipulateOfflineType {
		log.Error("offline manipulate rejected, use the submodule-operate channel instead", "submodule", ent.UseModuleName)
		return
	}

	sub := m.Store.Get(ent.UseModuleName)
	if sub == nil {
		log.Error("manipulate target not registered", "submodule", ent.UseModuleName)
		return
	}
	if sub.Client == nil {
		log.Error("manipulate target has no client", "submodule", ent.UseModuleName)
		return
	}
	if !sub.Capability.AcceptsManipulate() {
		log.Warn("submodule does not accept manipulate, dropping", "submodule", ent.UseModuleName, "code", domain.ResponseUnableToProcess.String())
		return
	}

	code, err := sub.Client.SendManipulate(ctx, ent)
	if err != nil {
		log.Error("send manipulate failed", "submodule", ent.UseModuleName, "err", err)
		return
	}
	if code != domain.ResponseSuccess {
		log.Error("submodule rejected manipulate", "submodule", ent.UseModuleName, "code", code.String())
		return
	}
	log.Debug("manipulate delivered", "submodule", ent.UseModuleName)
}
