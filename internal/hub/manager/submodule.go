package manager

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// SubmoduleManager consumes domain.ModuleOperate and keeps the store
// and matcher coherent (spec §4.6.1, invariant I1).
type SubmoduleManager struct {
	Deps
}

// Run drains in until it is closed or ctx is cancelled. On exit it
// sends its own name on shutdown, per spec §4.6's "send its name on a
// shutdown-notification channel so the supervisor can report orderly
// exit".
func (m *SubmoduleManager) Run(ctx context.Context, in <-chan domain.ModuleOperate, shutdown chan<- string) {
	defer func() { shutdown <- "submodule" }()
	log := m.logger().With("component", "submodule-manager")

	for {
		select {
		case <-ctx.Done():
			return
		case op, ok := <-in:
			if !ok {
				return
			}
			m.handle(ctx, log, op)
		}
	}
}

func (m *SubmoduleManager) handle(ctx context.Context, log interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}, op domain.ModuleOperate) {
	recordBestEffort(ctx, m.Recorder, m.logger(), RecordEntry{
		Kind:          "submodule_operate",
		SubmoduleName: op.Name,
		Detail:        op.OperateType.String(),
	})

	switch op.OperateType {
	case domain.OperateRegister:
		if err := m.handleRegister(ctx, op); err != nil {
			log.Error("register failed", "submodule", op.Name, "err", err)
		}
	case domain.OperateOffline:
		m.handleOffline(ctx, op.Name, log)
	case domain.OperateHeartbeat:
		if err := m.Store.TouchHeartbeat(op.Name); err != nil {
			log.Error("heartbeat failed", "submodule", op.Name, "err", err)
		}
	case domain.OperateUpdate:
		if err := m.handleUpdate(ctx, op); err != nil {
			log.Error("update failed", "submodule", op.Name, "err", err)
		}
	default:
		log.Error("unknown operate type", "submodule", op.Name, "type", int(op.OperateType))
	}
}

func (m *SubmoduleManager) handleRegister(ctx context.Context, op domain.ModuleOperate) error {
	if op.Info == nil {
		return fmt.Errorf("register %q: missing info", op.Name)
	}

	factory, ok := m.ClientFactories[op.Info.ConnectionKind]
	if !ok {
		return fmt.Errorf("register %q: %w: connection kind %s", op.Name, domain.ErrNotSupported, op.Info.ConnectionKind)
	}
	client, err := factory.Dial(ctx, op.Info.ConnConfig)
	if err != nil {
		return fmt.Errorf("register %q: dial: %w", op.Name, err)
	}

	points := make(map[string]domain.PointPayload, len(op.Info.DefaultInstruct))
	newPoints := make([]domain.PointPayload, 0, len(op.Info.DefaultInstruct))
	for _, phrase := range op.Info.DefaultInstruct {
		vec, err := m.Encoder.Encode(ctx, phrase)
		if err != nil {
			_ = client.Close()
			return fmt.Errorf("register %q: encode %q: %w", op.Name, phrase, err)
		}
		p := domain.PointPayload{UUID: uuid.NewString(), SubmoduleName: op.Name, Instruct: phrase, Encode: vec}
		points[phrase] = p
		newPoints = append(newPoints, p)
	}

	sub := &domain.Submodule{
		Name:               op.Name,
		AuthID:             uuid.NewString(),
		ConnectionKind:     op.Info.ConnectionKind,
		Capability:         op.Info.Capability,
		DefaultInstructMap: points,
		Client:             client,
	}

	// Mutate holds the matcher's write lock across the point inserts and
	// the store insert, and rolls the points back if the store insert
	// fails, so a concurrent Search can only ever observe a point whose
	// owning submodule is already registered, or neither (spec.md:130:
	// acquire the matcher lock first, release last).
	if err := m.Matcher.Mutate(ctx, newPoints, nil, func() error {
		return m.Store.Insert(sub)
	}); err != nil {
		_ = client.Close()
		return fmt.Errorf("register %q: %w", op.Name, err)
	}
	return nil
}

func uuidsOf(points []domain.PointPayload) []string {
	ids := make([]string, len(points))
	for i, p := range points {
		ids[i] = p.UUID
	}
	return ids
}

func (m *SubmoduleManager) handleOffline(ctx context.Context, name string, log interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}) {
	sub := m.Store.Get(name)
	if sub == nil {
		log.Warn("offline for unregistered submodule, ignoring", "submodule", name)
		return
	}
	// Mutate holds the matcher lock across the point removal and the
	// store removal, so a concurrent Search never observes a submodule's
	// points without the submodule, or vice versa (spec.md:130).
	err := m.Matcher.Mutate(ctx, nil, uuidsOf(sub.Points()), func() error {
		m.Store.Remove(name)
		return nil
	})
	if err != nil {
		log.Error("matcher remove failed", "submodule", name, "err", err)
	}
	if sub.Client != nil {
		_ = sub.Client.Close()
	}
}

func (m *SubmoduleManager) handleUpdate(ctx context.Context, op domain.ModuleOperate) error {
	if op.Info == nil {
		return fmt.Errorf("update %q: missing info", op.Name)
	}

	wanted := make(map[string]struct{}, len(op.Info.DefaultInstruct))
	for _, phrase := range op.Info.DefaultInstruct {
		wanted[phrase] = struct{}{}
	}

	var newPoints []domain.PointPayload
	var dropped []string
	var kept map[string]domain.PointPayload
	err := m.Store.WithMut(op.Name, func(sub *domain.Submodule) {
		kept = make(map[string]domain.PointPayload, len(sub.DefaultInstructMap))
		for phrase, p := range sub.DefaultInstructMap {
			if _, ok := wanted[phrase]; ok {
				kept[phrase] = p
			} else {
				dropped = append(dropped, p.UUID)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("update %q: %w", op.Name, err)
	}

	for phrase := range wanted {
		if _, ok := kept[phrase]; ok {
			continue
		}
		vec, err := m.Encoder.Encode(ctx, phrase)
		if err != nil {
			return fmt.Errorf("update %q: encode %q: %w", op.Name, phrase, err)
		}
		p := domain.PointPayload{UUID: uuid.NewString(), SubmoduleName: op.Name, Instruct: phrase, Encode: vec}
		newPoints = append(newPoints, p)
		kept[phrase] = p
	}

	// Mutate holds the matcher lock across the new-point inserts, the
	// stale-point removals, and the store update, so a concurrent Search
	// never observes a half-applied diff (spec.md:130: acquire the
	// matcher lock first, release last).
	if err := m.Matcher.Mutate(ctx, newPoints, dropped, func() error {
		return m.Store.WithMut(op.Name, func(sub *domain.Submodule) {
			sub.DefaultInstructMap = kept
		})
	}); err != nil {
		return fmt.Errorf("update %q: matcher/store mutate: %w", op.Name, err)
	}
	return nil
}
