package websocket

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
)

const (
	StateConnecting  = "connecting"
	StateConfiguring = "configuring"
	StateRelaying    = "relaying"
	StateClosed      = "closed"

	eventUpstreamOpen = "upstream_open"
	eventConfigured   = "configured"
	eventClose        = "close"
)

// newLifecycle tracks a bridge from upstream dial to teardown.
func newLifecycle(logger *Logger.Logger) *fsm.FSM {
	return fsm.NewFSM(
		StateConnecting,
		fsm.Events{
			{Name: eventUpstreamOpen, Src: []string{StateConnecting}, Dst: StateConfiguring},
			{Name: eventConfigured, Src: []string{StateConfiguring}, Dst: StateRelaying},
			{Name: eventClose, Src: []string{StateConnecting, StateConfiguring, StateRelaying}, Dst: StateClosed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debugf("bridge %s -> %s on %s", e.Src, e.Dst, e.Event)
			},
		},
	)
}
