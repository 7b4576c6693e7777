package storage

import (
	"strings"
	"time"

	"taskhub/metrics"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/description"
)

// ConnectionEventKind names a connection lifecycle transition
type ConnectionEventKind string

const (
	// EventConnected fires when the first reachable server is found
	EventConnected ConnectionEventKind = "connected"
	// EventDisconnected fires when no server is reachable anymore
	EventDisconnected ConnectionEventKind = "disconnected"
	// EventReconnected fires when a server is reachable again after a disconnect
	EventReconnected ConnectionEventKind = "reconnected"
	// EventError fires when the driver reports a connection failure
	EventError ConnectionEventKind = "error"
)

// ConnectionState is the current reachability of the deployment
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnected    ConnectionState = "connected"
)

// ConnectionEvent is delivered to every subscribed Listener
type ConnectionEvent struct {
	Kind ConnectionEventKind
	Host string
	Err  error
	Time time.Time
}

// Listener receives connection lifecycle events. Listeners run synchronously on
// the driver's monitoring goroutine and must not block.
type Listener func(ConnectionEvent)

type subscription struct {
	id uint64
	fn Listener
}

// Subscribe registers l for every future lifecycle event and returns a function
// that removes it.
func (m *Manager) Subscribe(l Listener) (unsubscribe func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, subscription{id: id, fn: l})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.listeners {
			if s.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of registered listeners
func (m *Manager) ListenerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.listeners)
}

// State reports whether a server is currently reachable
func (m *Manager) State() ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) emit(evt ConnectionEvent) {
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}
	metrics.MongoLifecycleEvents.WithLabelValues(string(evt.Kind)).Inc()

	m.mu.RLock()
	subs := make([]subscription, len(m.listeners))
	copy(subs, m.listeners)
	m.mu.RUnlock()

	for _, s := range subs {
		s.fn(evt)
	}
}

// setReachable records a reachability change and emits the matching event.
// Repeated reports of the same state are ignored.
func (m *Manager) setReachable(reachable bool, host string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	var kind ConnectionEventKind
	switch {
	case reachable && m.state != StateConnected:
		kind = EventConnected
		if m.everConnected {
			kind = EventReconnected
		}
		m.state = StateConnected
		m.everConnected = true
		m.heartbeatFailing = false
		metrics.MongoConnected.Set(1)
	case !reachable && m.state == StateConnected:
		kind = EventDisconnected
		m.state = StateDisconnected
		metrics.MongoConnected.Set(0)
	}
	m.mu.Unlock()

	if kind != "" {
		m.emit(ConnectionEvent{Kind: kind, Host: host})
	}
}

// newServerMonitor translates driver SDAM events into lifecycle events
func (m *Manager) newServerMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		TopologyDescriptionChanged: func(evt *event.TopologyDescriptionChangedEvent) {
			was, wasHost := reachableServers(evt.PreviousDescription)
			now, nowHost := reachableServers(evt.NewDescription)
			if was == now {
				return
			}
			host := nowHost
			if !now {
				host = wasHost
			}
			m.setReachable(now, host)
		},
		ServerHeartbeatSucceeded: func(*event.ServerHeartbeatSucceededEvent) {
			m.mu.Lock()
			m.heartbeatFailing = false
			m.mu.Unlock()
		},
		ServerHeartbeatFailed: func(evt *event.ServerHeartbeatFailedEvent) {
			m.mu.Lock()
			report := !m.heartbeatFailing && !m.closed
			m.heartbeatFailing = true
			m.mu.Unlock()

			// only the first failure of a run is reported
			if report {
				m.emit(ConnectionEvent{Kind: EventError, Host: evt.ConnectionID, Err: evt.Failure})
			}
		},
	}
}

// newPoolMonitor keeps the pool size gauge current
func (m *Manager) newPoolMonitor() *event.PoolMonitor {
	return &event.PoolMonitor{
		Event: func(evt *event.PoolEvent) {
			switch evt.Type {
			case event.ConnectionCreated:
				metrics.MongoPoolConnections.Inc()
			case event.ConnectionClosed:
				metrics.MongoPoolConnections.Dec()
			}
		},
	}
}

func reachableServers(t description.Topology) (bool, string) {
	var hosts []string
	for _, s := range t.Servers {
		if s.Kind != description.Unknown {
			hosts = append(hosts, s.Addr.String())
		}
	}
	return len(hosts) > 0, strings.Join(hosts, ",")
}

// logListener forwards lifecycle events to the process logger
func (m *Manager) logListener(evt ConnectionEvent) {
	switch evt.Kind {
	case EventError:
		m.logger.Errorw("MongoDB connection error", "host", evt.Host, "error", evt.Err)
	case EventConnected:
		m.logger.Infow("MongoDB connected successfully", "host", evt.Host)
	case EventDisconnected:
		m.logger.Warnw("MongoDB disconnected. Attempting to reconnect...", "host", evt.Host)
	case EventReconnected:
		m.logger.Infow("MongoDB reconnected successfully", "host", evt.Host)
	}
}
