package websocket

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
)

// ConnectionManager tracks live bridges by connection id. Session ids are
// client supplied and may collide, so they are not used as keys.
type ConnectionManager struct {
	logger  *Logger.Logger
	bridges map[uuid.UUID]*Bridge
	mutex   sync.RWMutex
	closed  bool
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(logger *Logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		logger:  logger,
		bridges: make(map[uuid.UUID]*Bridge),
	}
}

// Register adds a bridge. It returns false once the manager is closed; the
// caller should then refuse the connection.
func (cm *ConnectionManager) Register(bridge *Bridge) bool {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if cm.closed {
		return false
	}
	cm.bridges[bridge.ID] = bridge
	cm.logger.Infof("Registered bridge %s for session %s (%d active)",
		bridge.ID, bridge.SessionID, len(cm.bridges))
	return true
}

func (cm *ConnectionManager) Unregister(id uuid.UUID) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if bridge, exists := cm.bridges[id]; exists {
		delete(cm.bridges, id)
		cm.logger.Infof("Unregistered bridge %s for session %s (%d active)",
			id, bridge.SessionID, len(cm.bridges))
	}
}

func (cm *ConnectionManager) Get(id uuid.UUID) (*Bridge, bool) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	bridge, exists := cm.bridges[id]
	return bridge, exists
}

func (cm *ConnectionManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	return len(cm.bridges)
}

// Close tears down every live bridge and waits up to timeout for them to
// finish.
func (cm *ConnectionManager) Close(timeout time.Duration) {
	cm.mutex.Lock()
	cm.closed = true
	bridges := make([]*Bridge, 0, len(cm.bridges))
	for _, bridge := range cm.bridges {
		bridges = append(bridges, bridge)
	}
	cm.mutex.Unlock()

	for _, bridge := range bridges {
		bridge.Close(ReasonServerShutdown)
	}

	deadline := time.After(timeout)
	for _, bridge := range bridges {
		select {
		case <-bridge.Done():
		case <-deadline:
			cm.logger.Warnf("Timed out waiting for %d bridges to close", len(bridges))
			return
		}
	}
	cm.logger.Infof("Connection manager closed")
}

// GetStats returns connection manager statistics
func (cm *ConnectionManager) GetStats() Stats {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	stats := Stats{
		ActiveBridges: len(cm.bridges),
		Bridges:       make([]BridgeStats, 0, len(cm.bridges)),
	}
	for _, bridge := range cm.bridges {
		stats.Bridges = append(stats.Bridges, bridge.Stats())
	}
	sort.Slice(stats.Bridges, func(i, j int) bool {
		return stats.Bridges[i].ConnectedAt.Before(stats.Bridges[j].ConnectedAt)
	})
	return stats
}
