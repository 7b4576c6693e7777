package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/address"
	"go.mongodb.org/mongo-driver/mongo/description"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []ConnectionEvent
}

func (r *eventRecorder) record(evt ConnectionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *eventRecorder) kinds() []ConnectionEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]ConnectionEventKind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func topology(kind description.ServerKind) description.Topology {
	return description.Topology{
		Servers: []description.Server{
			{Addr: address.Address("localhost:27017"), Kind: kind},
		},
	}
}

func changeTopology(m *Manager, from, to description.ServerKind) {
	m.serverMonitor.TopologyDescriptionChanged(&event.TopologyDescriptionChangedEvent{
		PreviousDescription: topology(from),
		NewDescription:      topology(to),
	})
}

func TestNewManager_RegistersLoggingListenerOnce(t *testing.T) {
	dialer := &MockDialer{}
	dialer.On("Dial", mock.Anything, mock.Anything).Return(newTestClient(t), nil)

	m := NewManager(DefaultConnectionOptions(), zap.NewNop().Sugar(), WithDialer(dialer))
	assert.Equal(t, 1, m.ListenerCount())

	for i := 0; i < 3; i++ {
		_, err := m.Connect(context.Background(), testURI)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, m.ListenerCount())
}

func TestNewManager_MissingURIDoesNotRegisterListeners(t *testing.T) {
	m := NewManager(DefaultConnectionOptions(), zap.NewNop().Sugar(), WithDialer(&MockDialer{}))

	_, err := m.Connect(context.Background(), "")
	require.Error(t, err)

	assert.Equal(t, 1, m.ListenerCount())
}

func TestManager_TopologyTransitions(t *testing.T) {
	logger, logs := newObservedLogger()
	m := NewManager(DefaultConnectionOptions(), logger)
	rec := &eventRecorder{}
	m.Subscribe(rec.record)

	changeTopology(m, description.Unknown, description.Standalone)
	assert.Equal(t, StateConnected, m.State())

	changeTopology(m, description.Standalone, description.Unknown)
	assert.Equal(t, StateDisconnected, m.State())

	changeTopology(m, description.Unknown, description.RSPrimary)
	assert.Equal(t, StateConnected, m.State())

	assert.Equal(t, []ConnectionEventKind{EventConnected, EventDisconnected, EventReconnected}, rec.kinds())
	for _, e := range rec.events {
		assert.Equal(t, "localhost:27017", e.Host)
		assert.False(t, e.Time.IsZero())
	}

	connected := logs.FilterMessage("MongoDB connected successfully").All()
	require.Len(t, connected, 1)
	assert.Equal(t, zapcore.InfoLevel, connected[0].Level)

	disconnected := logs.FilterMessage("MongoDB disconnected. Attempting to reconnect...").All()
	require.Len(t, disconnected, 1)
	assert.Equal(t, zapcore.WarnLevel, disconnected[0].Level)

	reconnected := logs.FilterMessage("MongoDB reconnected successfully").All()
	require.Len(t, reconnected, 1)
	assert.Equal(t, zapcore.InfoLevel, reconnected[0].Level)
}

func TestManager_TopologyUnchangedReachability(t *testing.T) {
	m := NewManager(DefaultConnectionOptions(), zap.NewNop().Sugar())
	rec := &eventRecorder{}
	m.Subscribe(rec.record)

	changeTopology(m, description.Unknown, description.Unknown)
	changeTopology(m, description.Unknown, description.Standalone)
	changeTopology(m, description.Standalone, description.Standalone)

	assert.Equal(t, []ConnectionEventKind{EventConnected}, rec.kinds())
}

func TestManager_HeartbeatFailureReportsOncePerOutage(t *testing.T) {
	logger, logs := newObservedLogger()
	m := NewManager(DefaultConnectionOptions(), logger)
	rec := &eventRecorder{}
	m.Subscribe(rec.record)

	failure := errors.New("connection reset by peer")
	fail := func() {
		m.serverMonitor.ServerHeartbeatFailed(&event.ServerHeartbeatFailedEvent{
			Failure:      failure,
			ConnectionID: "localhost:27017",
		})
	}

	fail()
	fail()
	m.serverMonitor.ServerHeartbeatSucceeded(&event.ServerHeartbeatSucceededEvent{ConnectionID: "localhost:27017"})
	fail()

	assert.Equal(t, []ConnectionEventKind{EventError, EventError}, rec.kinds())
	assert.ErrorIs(t, rec.events[0].Err, failure)

	errorLogs := logs.FilterMessage("MongoDB connection error").All()
	require.Len(t, errorLogs, 2)
	assert.Equal(t, zapcore.ErrorLevel, errorLogs[0].Level)
}

func TestManager_ConnectSuccessDoesNotDuplicateConnected(t *testing.T) {
	dialer := &MockDialer{}
	m := NewManager(DefaultConnectionOptions(), zap.NewNop().Sugar(), WithDialer(dialer))
	rec := &eventRecorder{}
	m.Subscribe(rec.record)

	// the driver reports the topology before Ping returns
	dialer.On("Dial", mock.Anything, mock.Anything).
		Return(newTestClient(t), nil).
		Run(func(mock.Arguments) {
			changeTopology(m, description.Unknown, description.Standalone)
		})

	_, err := m.Connect(context.Background(), testURI)
	require.NoError(t, err)

	assert.Equal(t, []ConnectionEventKind{EventConnected}, rec.kinds())
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager(DefaultConnectionOptions(), zap.NewNop().Sugar())
	first := &eventRecorder{}
	second := &eventRecorder{}
	unsubscribe := m.Subscribe(first.record)
	m.Subscribe(second.record)
	assert.Equal(t, 3, m.ListenerCount())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 2, m.ListenerCount())

	changeTopology(m, description.Unknown, description.Standalone)

	assert.Empty(t, first.kinds())
	assert.Equal(t, []ConnectionEventKind{EventConnected}, second.kinds())
}

func TestManager_CloseSilencesEvents(t *testing.T) {
	dialer := &MockDialer{}
	dialer.On("Dial", mock.Anything, mock.Anything).Return(newTestClient(t), nil)

	m := NewManager(DefaultConnectionOptions(), zap.NewNop().Sugar(), WithDialer(dialer))
	rec := &eventRecorder{}
	m.Subscribe(rec.record)

	db, err := m.Connect(context.Background(), testURI)
	require.NoError(t, err)

	// the client never connected, so Disconnect reports that; the manager is detached either way
	_ = db.Close(context.Background())
	assert.Equal(t, StateDisconnected, m.State())

	changeTopology(m, description.Standalone, description.Unknown)
	m.serverMonitor.ServerHeartbeatFailed(&event.ServerHeartbeatFailedEvent{Failure: errors.New("closed")})

	assert.Equal(t, []ConnectionEventKind{EventConnected}, rec.kinds())
}

func TestManager_ConnectAfterCloseReportsConnected(t *testing.T) {
	dialer := &MockDialer{}
	dialer.On("Dial", mock.Anything, mock.Anything).Return(newTestClient(t), nil).Once()
	dialer.On("Dial", mock.Anything, mock.Anything).Return(newTestClient(t), nil).Once()

	m := NewManager(DefaultConnectionOptions(), zap.NewNop().Sugar(), WithDialer(dialer))
	rec := &eventRecorder{}
	m.Subscribe(rec.record)

	db, err := m.Connect(context.Background(), testURI)
	require.NoError(t, err)
	_ = db.Close(context.Background())

	_, err = m.Connect(context.Background(), testURI)
	require.NoError(t, err)

	assert.Equal(t, []ConnectionEventKind{EventConnected, EventConnected}, rec.kinds())
}

func TestManager_PoolMonitor(t *testing.T) {
	m := NewManager(DefaultConnectionOptions(), zap.NewNop().Sugar())

	assert.NotPanics(t, func() {
		m.poolMonitor.Event(&event.PoolEvent{Type: event.ConnectionCreated, Address: "localhost:27017"})
		m.poolMonitor.Event(&event.PoolEvent{Type: event.ConnectionClosed, Address: "localhost:27017"})
		m.poolMonitor.Event(&event.PoolEvent{Type: event.PoolCleared, Address: "localhost:27017"})
	})
}
