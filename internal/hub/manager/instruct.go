package manager

import (
	"context"
	"log/slog"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// InstructManager consumes domain.InstructEntity, routes it through the
// matcher, and forwards it to the resolved submodule's client (spec
// §4.6.2). No retries — the submodule is responsible for idempotency.
type InstructManager struct {
	Deps
}

// Run drains in until it is closed or ctx is cancelled.
func (m *InstructManager) Run(ctx context.Context, in <-chan domain.InstructEntity, shutdown chan<- string) {
	defer func() { shutdown <- "instruct" }()
	log := m.logger().With("component", "instruct-manager")

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

func (m *InstructManager) handle(ctx context.Context, log *slog.Logger, ent domain.InstructEntity) {
	recordBestEffort(ctx, m.Recorder, m.logger(), RecordEntry{
		Kind:   "instruct",
		Detail: ent.Text,
	})

	if ent.PayloadKind != domain.InstructPayloadText {
		log.Warn("dropping non-text instruct payload", "kind", int(ent.PayloadKind))
		return
	}

	encoded, err := m.Encoder.Encode(ctx, ent.Text)
	if err != nil {
		log.Error("encode failed", "text", ent.Text, "err", err)
		return
	}

	point, err := m.Matcher.Search(ctx, encoded)
	if err != nil {
		log.Warn("no matching submodule for instruct, dropping", "text", ent.Text, "err", err)
		return
	}

	sub := m.Store.Get(point.SubmoduleName)
	if sub == nil {
		log.Error("matched submodule no longer registered", "submodule", point.SubmoduleName)
		return
	}
	if sub.Client == nil {
		log.Error("matched submodule has no client", "submodule", point.SubmoduleName)
		return
	}
	if !sub.Capability.AcceptsInstruct() {
		log.Warn("submodule does not accept instruct, dropping", "submodule", point.SubmoduleName, "code", domain.ResponseUnableToProcess.String())
		return
	}

	code, err := sub.Client.SendTextInstruct(ctx, ent.Text)
	if err != nil {
		log.Error("send text instruct failed", "submodule", point.SubmoduleName, "err", err)
		return
	}
	if code != domain.ResponseSuccess {
		log.Error("submodule rejected instruct", "submodule", point.SubmoduleName, "code", code.String())
		return
	}
	log.Debug("instruct delivered", "submodule", point.SubmoduleName)
}
