package transmitter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stagecue/cuelight-core/internal/channel"
	"github.com/stagecue/cuelight-core/internal/cue"
	"github.com/stagecue/cuelight-core/internal/infrastructure/mqtt"
	"github.com/stagecue/cuelight-core/internal/pending"
	"github.com/stagecue/cuelight-core/internal/protocol"
	"github.com/stagecue/cuelight-core/internal/show"
)

// DefaultGoDuration is how long a channel holds go before the scheduled
// revert returns it to idle.
const DefaultGoDuration = 5000 * time.Millisecond

// Transition sources recorded in show history.
const (
	sourceOperator = "operator"
	sourceCue      = "cue"
	sourceRevert   = "revert"
)

// Bus is the transport surface the adapter publishes and subscribes
// through. Satisfied by *mqtt.Client; mocked in tests.
type Bus interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// History receives show history points. Satisfied by *influxdb.Client.
// A nil History disables recording.
type History interface {
	WriteTransition(channelID int, from, to, source string)
	WriteConfirmation(channelID int, receiverName string)
	WriteCueFired(cueNumber, label string, channelCount int)
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

// Adapter is the transmitter's control plane.
//
// Every mutation — operator intents, cue batches, received confirmations,
// scheduled reverts — runs under one mutex, so the store, tracker, and
// sequencer only ever see serialised access. Within one mutation the order
// is fixed: transition, revoke stale requests, mutate the store, then
// publish. Revocation before publish guarantees a confirmation for the old
// standby can never land after the channel has moved on.
type Adapter struct {
	mu      sync.Mutex
	store   *channel.Store
	tracker *pending.Tracker
	seq     *cue.Sequencer

	bus    Bus
	topics mqtt.Topics
	qos    byte

	// instanceID names this transmitter's confirmation topic.
	instanceID string

	repo    show.Repository
	history History
	logger  Logger

	goDuration  time.Duration
	generations map[int]uint64

	// schedule defaults to time.AfterFunc; replaced in tests.
	schedule func(d time.Duration, f func())
}

// New creates a transmitter adapter over the given channel store.
// The sequencer is attached separately via AttachCues once the show
// document is loaded.
func New(store *channel.Store, bus Bus, topics mqtt.Topics, qos byte) *Adapter {
	return &Adapter{
		store:       store,
		tracker:     pending.NewTracker(),
		bus:         bus,
		topics:      topics,
		qos:         qos,
		instanceID:  uuid.NewString(),
		logger:      noopLogger{},
		goDuration:  DefaultGoDuration,
		generations: make(map[int]uint64),
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// SetLogger sets the logger for the adapter.
func (a *Adapter) SetLogger(logger Logger) {
	a.logger = logger
}

// SetHistory enables show history recording.
func (a *Adapter) SetHistory(history History) {
	a.history = history
}

// SetRepository enables show document persistence for config mutations.
func (a *Adapter) SetRepository(repo show.Repository) {
	a.repo = repo
}

// InstanceID returns this transmitter's unique identity, the final segment
// of its confirmation topic.
func (a *Adapter) InstanceID() string {
	return a.instanceID
}

// AttachCues builds the cue sequencer over the loaded cue list.
// The sequencer drives channels through this adapter and persists cue
// mutations through saver (which may be nil).
func (a *Adapter) AttachCues(cues []cue.Cue, saver cue.Saver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq = cue.NewSequencer(cues, lockedDriver{a}, saver)
}

// lockedDriver lets the sequencer apply intents while the adapter mutex is
// already held. The sequencer is only ever invoked from locked methods.
type lockedDriver struct{ a *Adapter }

func (d lockedDriver) Apply(channelID int, intent channel.Intent) {
	d.a.applyLocked(channelID, intent, sourceCue)
}

// Start subscribes to this transmitter's confirmation topic and publishes
// the retained baseline status for every channel.
func (a *Adapter) Start() error {
	topic := a.topics.Confirmations(a.instanceID)
	if err := a.bus.Subscribe(topic, a.qos, a.handleConfirmation); err != nil {
		return fmt.Errorf("subscribing to confirmations: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range a.store.IDs() {
		a.publishStatusLocked(id)
	}
	return nil
}

// Apply runs one operator intent against a channel.
// Undefined transitions are rejected silently: no mutation, no publish.
func (a *Adapter) Apply(channelID int, intent channel.Intent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applyLocked(channelID, intent, sourceOperator)
}

// SnapshotChannels returns a copy of every channel's current state.
func (a *Adapter) SnapshotChannels() []channel.Channel {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.SnapshotAll()
}

// SnapshotChannel returns a copy of one channel's current state.
func (a *Adapter) SnapshotChannel(channelID int) (*channel.Channel, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Snapshot(channelID)
}

// MasterGo fires every channel currently in master standby.
// Solo standbys and idle channels are untouched.
func (a *Adapter) MasterGo() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, id := range a.store.IDs() {
		if status, ok := a.store.Status(id); ok && status == channel.StatusStandbyMaster {
			a.applyLocked(id, channel.IntentMasterGo, sourceOperator)
		}
	}
}

// applyLocked is the single transition path. Callers hold a.mu.
func (a *Adapter) applyLocked(channelID int, intent channel.Intent, source string) {
	current, ok := a.store.Status(channelID)
	if !ok {
		return
	}
	next, ok := channel.Transition(current, intent)
	if !ok {
		a.logger.Debug("transition rejected",
			"channel", channelID, "status", current, "intent", intent)
		return
	}

	// Revoke before anything becomes visible: a confirmation for the
	// standby we are leaving must already resolve to nothing.
	if current.IsStandby() && !next.IsStandby() {
		a.tracker.RevokeForChannel(channelID)
	}
	if current == channel.StatusGo && next == channel.StatusIdle {
		a.store.ClearConfirmedSubscribers(channelID)
	}

	a.store.SetStatus(channelID, next)

	if next == channel.StatusGo {
		a.generations[channelID]++
		gen := a.generations[channelID]
		a.schedule(a.goDuration, func() {
			a.revert(channelID, gen)
		})
	}

	a.publishStatusLocked(channelID)

	if a.history != nil {
		a.history.WriteTransition(channelID, string(current), string(next), source)
	}
	a.logger.Info("channel transition",
		"channel", channelID, "from", current, "to", next, "source", source)
}

// revert is the scheduled return to idle after the go duration.
//
// The generation guard handles the refire race: if the channel left go and
// re-entered it while this revert was pending, the generation no longer
// matches and the stale revert does nothing.
func (a *Adapter) revert(channelID int, gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.generations[channelID] != gen {
		return
	}
	if status, ok := a.store.Status(channelID); !ok || status != channel.StatusGo {
		return
	}
	a.applyLocked(channelID, channel.IntentRevert, sourceRevert)
}

// publishStatusLocked publishes the retained status payload for a channel.
// Standby statuses carry a freshly issued request id and the response
// topic; the cue label rides along whenever a cue is current.
func (a *Adapter) publishStatusLocked(channelID int) {
	snap, err := a.store.Snapshot(channelID)
	if err != nil {
		return
	}

	msg := protocol.StatusMessage{
		Status:               string(snap.Status),
		Label:                snap.Label,
		ColorHex:             snap.ColorHex,
		TextColorHex:         snap.TextColorHex,
		ConfirmedSubscribers: snap.ConfirmedSubscribers,
	}
	if a.seq != nil {
		msg.CueLabel = a.seq.CurrentLabel()
	}
	if snap.Status.IsStandby() {
		msg.RequestID = a.tracker.Issue(channelID)
		msg.ResponseTopic = a.topics.Confirmations(a.instanceID)
	}

	payload, err := protocol.Encode(msg)
	if err != nil {
		a.logger.Warn("encoding status failed", "channel", channelID, "error", err)
		return
	}
	if err := a.bus.Publish(a.topics.ChannelStatus(channelID), a.qos, true, payload); err != nil {
		a.logger.Warn("publishing status failed", "channel", channelID, "error", err)
	}
}

// handleConfirmation processes a receiver's acknowledgement of a standby
// request. Confirmations whose request id resolves to nothing are stale
// (the channel left standby, or the id was never ours) and are dropped.
func (a *Adapter) handleConfirmation(_ string, payload []byte) error {
	var msg protocol.ConfirmationMessage
	if err := protocol.Decode(payload, &msg); err != nil {
		return fmt.Errorf("decoding confirmation: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	channelID, ok := a.tracker.Resolve(msg.RequestID)
	if !ok {
		a.logger.Debug("stale confirmation dropped", "request_id", msg.RequestID)
		return nil
	}

	name := msg.ReceiverName
	if name == "" {
		name = "Unknown Receiver"
	}
	a.store.AppendConfirmedSubscriber(channelID, name)

	if a.history != nil {
		a.history.WriteConfirmation(channelID, name)
	}
	a.logger.Info("standby confirmed", "channel", channelID, "receiver", name)
	return nil
}

// UpdateChannelConfig applies a channel configuration change, persists the
// show, and publishes the new config for every channel.
func (a *Adapter) UpdateChannelConfig(ctx context.Context, channelID int, label, colorName, colorHex, textColorHex string) error {
	if len(label) > channel.MaxLabelLength {
		return fmt.Errorf("%w: label %q exceeds %d characters",
			channel.ErrInvalidChannel, label, channel.MaxLabelLength)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.store.Snapshot(channelID); err != nil {
		return err
	}
	a.store.UpdateConfig(channelID, label, colorName, colorHex, textColorHex)

	if a.repo != nil {
		if err := a.repo.SaveChannels(ctx, a.store.SnapshotAll()); err != nil {
			return err
		}
	}

	a.publishAllConfigsLocked()
	a.logger.Info("channel config updated", "channel", channelID, "label", label)
	return nil
}

// publishAllConfigsLocked publishes the retained config payload for every
// channel. Config changes go out as a full set so receivers never see a
// mixed generation.
func (a *Adapter) publishAllConfigsLocked() {
	for _, snap := range a.store.SnapshotAll() {
		msg := protocol.ConfigMessage{
			Label:    snap.Label,
			ColorHex: snap.ColorHex,
		}
		payload, err := protocol.Encode(msg)
		if err != nil {
			a.logger.Warn("encoding config failed", "channel", snap.NumericID, "error", err)
			continue
		}
		if err := a.bus.Publish(a.topics.ChannelConfig(snap.NumericID), a.qos, true, payload); err != nil {
			a.logger.Warn("publishing config failed", "channel", snap.NumericID, "error", err)
		}
	}
}
