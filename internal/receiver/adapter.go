package receiver

import (
	"fmt"
	"sync"

	"github.com/stagecue/cuelight-core/internal/channel"
	"github.com/stagecue/cuelight-core/internal/infrastructure/mqtt"
	"github.com/stagecue/cuelight-core/internal/protocol"
)

// Bus is the transport surface the adapter uses.
// Satisfied by *mqtt.Client; mocked in tests.
type Bus interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Logger is the logging interface used by the adapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Adapter is the receiving side of the cue light protocol: one device
// watching one channel.
//
// It holds no authoritative state. Every incoming status message replaces
// the view wholesale and resets the confirmation handshake; the only
// state the adapter originates is the single confirmation publish per
// standby request.
type Adapter struct {
	mu       sync.Mutex
	settings Settings

	// identity is the durable receiver id sent in confirmations.
	identity string

	bus    Bus
	topics mqtt.Topics
	qos    byte

	// Handshake state from the last standby status.
	requestID     string
	responseTopic string

	view     View
	onUpdate func(View)

	settingsPath string
	logger       Logger
}

// New creates a receiver adapter.
//
// settings and identity come from LoadSettings and LoadOrCreateIdentity;
// settingsPath is where ApplySettings persists changes.
func New(settings Settings, identity string, bus Bus, topics mqtt.Topics, qos byte, settingsPath string) *Adapter {
	return &Adapter{
		settings:     settings,
		identity:     identity,
		bus:          bus,
		topics:       topics,
		qos:          qos,
		settingsPath: settingsPath,
		logger:       noopLogger{},
		view: View{
			Status: channel.StatusIdle,
		},
	}
}

// SetLogger sets the logger for the adapter.
func (a *Adapter) SetLogger(logger Logger) {
	a.logger = logger
}

// SetOnUpdate registers a callback invoked with a copy of the view after
// every change. Called from transport goroutines; the callback must not
// call back into the adapter.
func (a *Adapter) SetOnUpdate(fn func(View)) {
	a.mu.Lock()
	a.onUpdate = fn
	a.mu.Unlock()
}

// Settings returns a copy of the current settings.
func (a *Adapter) Settings() Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// Identity returns the durable receiver id.
func (a *Adapter) Identity() string {
	return a.identity
}

// View returns a copy of the current view.
func (a *Adapter) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Adapter) snapshotLocked() View {
	v := a.view
	if a.view.ConfirmedSubscribers != nil {
		v.ConfirmedSubscribers = make([]string, len(a.view.ConfirmedSubscribers))
		copy(v.ConfirmedSubscribers, a.view.ConfirmedSubscribers)
	}
	return v
}

func (a *Adapter) notifyLocked() {
	if a.onUpdate != nil {
		a.onUpdate(a.snapshotLocked())
	}
}

// subscriptionTopics returns the receiver's exact subscription set:
// its channel's status, the reserved cue info topic, and its channel's
// config. Never a wildcard.
func (a *Adapter) subscriptionTopics(channelID int) []string {
	return []string{
		a.topics.ChannelStatus(channelID),
		a.topics.SystemCueInfo(),
		a.topics.ChannelConfig(channelID),
	}
}

// Start subscribes to the receiver's topic set.
func (a *Adapter) Start() error {
	a.mu.Lock()
	channelID := a.settings.ChannelID
	a.mu.Unlock()

	return a.subscribe(channelID)
}

func (a *Adapter) subscribe(channelID int) error {
	handlers := map[string]mqtt.MessageHandler{
		a.topics.ChannelStatus(channelID): a.handleStatus,
		a.topics.SystemCueInfo():          a.handleCueInfo,
		a.topics.ChannelConfig(channelID): a.handleConfig,
	}
	for _, topic := range a.subscriptionTopics(channelID) {
		if err := a.bus.Subscribe(topic, a.qos, handlers[topic]); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}
	return nil
}

// handleStatus processes a status message for the subscribed channel.
//
// Every status replaces the view and resets the handshake, whether or not
// the status carries a new request: a receiver never holds a confirmation
// opportunity across a state change.
func (a *Adapter) handleStatus(_ string, payload []byte) error {
	var msg protocol.StatusMessage
	if err := protocol.Decode(payload, &msg); err != nil {
		return fmt.Errorf("decoding status: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.requestID = ""
	a.responseTopic = ""

	status := channel.Status(msg.Status)
	if !status.Valid() {
		status = channel.StatusIdle
	}

	a.view.Status = status
	a.view.Label = msg.Label
	a.view.ColorHex = msg.ColorHex
	a.view.TextColorHex = msg.TextColorHex
	a.view.CueLabel = msg.CueLabel
	a.view.ConfirmedSubscribers = append([]string(nil), msg.ConfirmedSubscribers...)
	a.view.Confirmed = false
	a.view.CanConfirm = false

	if status.IsStandby() && msg.RequestID != "" && msg.ResponseTopic != "" {
		a.requestID = msg.RequestID
		a.responseTopic = msg.ResponseTopic
		a.view.CanConfirm = true
	}

	a.logger.Debug("status received", "status", status, "can_confirm", a.view.CanConfirm)
	a.notifyLocked()
	return nil
}

// handleConfig processes a channel config message. Config only carries
// presentation; protocol state is never derived from it.
func (a *Adapter) handleConfig(_ string, payload []byte) error {
	var msg protocol.ConfigMessage
	if err := protocol.Decode(payload, &msg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.view.Label = msg.Label
	a.notifyLocked()
	return nil
}

// handleCueInfo is the reserved system cue info subscription.
// Present for forward compatibility; payloads are ignored.
func (a *Adapter) handleCueInfo(string, []byte) error {
	return nil
}

// Confirm answers the current standby request.
//
// Exactly one confirmation goes out per request: a second press returns
// ErrAlreadyConfirmed without publishing, and pressing with no open
// request returns ErrNothingToConfirm. The latch reopens only when the
// next status message arrives.
func (a *Adapter) Confirm() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.requestID == "" || a.responseTopic == "" || !a.view.CanConfirm {
		return ErrNothingToConfirm
	}
	if a.view.Confirmed {
		return ErrAlreadyConfirmed
	}

	payload, err := protocol.Encode(protocol.ConfirmationMessage{
		RequestID:    a.requestID,
		ReceiverID:   a.identity,
		ReceiverName: a.settings.Name,
	})
	if err != nil {
		return fmt.Errorf("encoding confirmation: %w", err)
	}
	if err := a.bus.Publish(a.responseTopic, a.qos, false, payload); err != nil {
		return fmt.Errorf("publishing confirmation: %w", err)
	}

	a.view.Confirmed = true
	a.logger.Info("standby confirmed", "request_id", a.requestID)
	a.notifyLocked()
	return nil
}

// SetConnected feeds the transport's connectivity signal into the view.
// Wired to the client's connect/disconnect callbacks.
func (a *Adapter) SetConnected(connected bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.view.Connected = connected
	if !connected {
		// Everything we knew is stale now.
		a.requestID = ""
		a.responseTopic = ""
		a.view.CanConfirm = false
		a.view.Confirmed = false
	}
	a.notifyLocked()
}

// ApplySettings validates and persists new settings, then moves the
// subscription set to the new channel.
//
// A broker change cannot be applied on the live connection: the adapter
// persists it and returns reconnect=true, and the caller tears the session
// down and rebuilds it from the saved settings.
func (a *Adapter) ApplySettings(s Settings) (reconnect bool, err error) {
	if err := s.Validate(); err != nil {
		return false, err
	}

	a.mu.Lock()
	old := a.settings
	a.mu.Unlock()

	if err := SaveSettings(a.settingsPath, s); err != nil {
		return false, err
	}

	if s.BrokerIP != old.BrokerIP {
		a.mu.Lock()
		a.settings = s
		a.mu.Unlock()
		a.logger.Info("broker changed, session rebuild required", "broker", s.BrokerIP)
		return true, nil
	}

	channelMoved := s.ChannelID != old.ChannelID
	if channelMoved {
		for _, topic := range a.subscriptionTopics(old.ChannelID) {
			if err := a.bus.Unsubscribe(topic); err != nil {
				a.logger.Warn("unsubscribe failed", "topic", topic, "error", err)
			}
		}
		if err := a.subscribe(s.ChannelID); err != nil {
			return false, err
		}
	}

	a.mu.Lock()
	a.settings = s
	if channelMoved {
		// The old channel's state means nothing on the new one. A
		// name-only edit keeps the open handshake: renaming a receiver
		// mid-standby must not discard its confirm opportunity.
		a.requestID = ""
		a.responseTopic = ""
		a.view.Status = channel.StatusIdle
		a.view.CueLabel = ""
		a.view.ConfirmedSubscribers = nil
		a.view.CanConfirm = false
		a.view.Confirmed = false
	}
	a.notifyLocked()
	a.mu.Unlock()

	a.logger.Info("settings applied", "name", s.Name, "channel", s.ChannelID)
	return false, nil
}
