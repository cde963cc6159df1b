package manager

import (
	"context"
	"time"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// HeartbeatTime is the tick period between liveness sweeps (spec
// §4.6.4). A submodule is declared expired after two missed ticks.
const HeartbeatTime = 30 * time.Second

// HeartbeatManager periodically sweeps the store for submodules that
// have gone quiet and synthesizes an Offline operate for each one,
// letting the submodule manager run its normal offline path.
type HeartbeatManager struct {
	Deps
}

// Run ticks every interval until ctx is cancelled, sending one
// synthesized domain.ModuleOperate per expired submodule on out. The
// supervisor passes HeartbeatTime in production; tests pass a shorter
// interval to exercise the loop without waiting 30 seconds.
func (m *HeartbeatManager) Run(ctx context.Context, interval time.Duration, out chan<- domain.ModuleOperate, shutdown chan<- string) {
	defer func() { shutdown <- "heartbeat" }()
	log := m.logger().With("component", "heartbeat-manager")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	thresholdSeconds := int64(2 * HeartbeatTime / time.Second)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, name := range m.Store.Expired(thresholdSeconds) {
				op := domain.ModuleOperate{OperateType: domain.OperateOffline, Name: name}
				select {
				case out <- op:
				case <-ctx.Done():
					return
				}
				log.Debug("submodule expired, sent offline", "submodule", name)
			}
		}
	}
}
