package transmitter

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stagecue/cuelight-core/internal/channel"
	"github.com/stagecue/cuelight-core/internal/cue"
	"github.com/stagecue/cuelight-core/internal/infrastructure/mqtt"
	"github.com/stagecue/cuelight-core/internal/protocol"
	"github.com/stagecue/cuelight-core/internal/receiver"
)

// mockBus captures published payloads and registered subscriptions.
type mockBus struct {
	mu        sync.Mutex
	published []busMessage
	handlers  map[string]mqtt.MessageHandler
}

type busMessage struct {
	topic    string
	retained bool
	payload  []byte
}

func newMockBus() *mockBus {
	return &mockBus{handlers: make(map[string]mqtt.MessageHandler)}
}

func (b *mockBus) Publish(topic string, _ byte, retained bool, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, busMessage{topic: topic, retained: retained, payload: payload})
	return nil
}

func (b *mockBus) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = handler
	return nil
}

// lastStatus decodes the most recent status payload published for a channel.
func (b *mockBus) lastStatus(t *testing.T, topic string) protocol.StatusMessage {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := len(b.published) - 1; i >= 0; i-- {
		if b.published[i].topic == topic {
			var msg protocol.StatusMessage
			if err := json.Unmarshal(b.published[i].payload, &msg); err != nil {
				t.Fatalf("decoding status payload: %v", err)
			}
			return msg
		}
	}
	t.Fatalf("no message published on %s", topic)
	return protocol.StatusMessage{}
}

func (b *mockBus) countOn(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.published {
		if m.topic == topic {
			n++
		}
	}
	return n
}

// newTestAdapter builds an adapter over the default channels with manual
// revert scheduling: scheduled functions are collected, not timed.
func newTestAdapter(t *testing.T) (*Adapter, *mockBus, *[]func()) {
	t.Helper()

	bus := newMockBus()
	store := channel.NewStore(channel.Defaults())
	a := New(store, bus, mqtt.Topics{}, 1)

	var scheduled []func()
	a.schedule = func(_ time.Duration, f func()) {
		scheduled = append(scheduled, f)
	}
	return a, bus, &scheduled
}

// confirm sends a confirmation payload through the adapter's handler.
func confirm(t *testing.T, a *Adapter, requestID, receiverName string) {
	t.Helper()
	payload, err := json.Marshal(protocol.ConfirmationMessage{
		RequestID:    requestID,
		ReceiverID:   "rx-1",
		ReceiverName: receiverName,
	})
	if err != nil {
		t.Fatalf("encoding confirmation: %v", err)
	}
	if err := a.handleConfirmation("", payload); err != nil {
		t.Fatalf("handleConfirmation() error = %v", err)
	}
}

func TestApplyToggleMaster(t *testing.T) {
	a, bus, _ := newTestAdapter(t)

	a.Apply(3, channel.IntentToggleMaster)

	status, _ := a.store.Status(3)
	if status != channel.StatusStandbyMaster {
		t.Fatalf("status = %q, want standby_master", status)
	}

	msg := bus.lastStatus(t, "cuelight/channel/3/status")
	if msg.Status != "standby_master" {
		t.Errorf("published status = %q, want standby_master", msg.Status)
	}
	if msg.RequestID == "" {
		t.Error("standby status missing request_id")
	}
	if msg.ResponseTopic != "cuelight/confirmations/"+a.InstanceID() {
		t.Errorf("response_topic = %q, want confirmations topic", msg.ResponseTopic)
	}

	// Toggle back to idle: no handshake fields.
	a.Apply(3, channel.IntentToggleMaster)
	msg = bus.lastStatus(t, "cuelight/channel/3/status")
	if msg.Status != "idle" {
		t.Errorf("published status = %q, want idle", msg.Status)
	}
	if msg.RequestID != "" || msg.ResponseTopic != "" {
		t.Error("idle status must not carry handshake fields")
	}
}

func TestApplyRejectedTransitionPublishesNothing(t *testing.T) {
	a, bus, _ := newTestAdapter(t)

	// go is unreachable from idle for every operator intent.
	a.Apply(1, channel.IntentMasterGo)
	a.Apply(1, channel.IntentCueGo)
	a.Apply(1, channel.IntentRevert)

	if n := bus.countOn("cuelight/channel/1/status"); n != 0 {
		t.Errorf("rejected transitions published %d messages, want 0", n)
	}
	status, _ := a.store.Status(1)
	if status != channel.StatusIdle {
		t.Errorf("status = %q, want idle", status)
	}
}

func TestUnknownChannelIgnored(t *testing.T) {
	a, bus, _ := newTestAdapter(t)

	a.Apply(99, channel.IntentToggleMaster)

	if len(bus.published) != 0 {
		t.Errorf("unknown channel published %d messages, want 0", len(bus.published))
	}
}

func TestConfirmationTargetsIssuingChannel(t *testing.T) {
	a, bus, _ := newTestAdapter(t)

	a.Apply(2, channel.IntentToggleMaster)
	a.Apply(5, channel.IntentToggleMaster)

	reqCh2 := bus.lastStatus(t, "cuelight/channel/2/status").RequestID
	confirm(t, a, reqCh2, "SM Desk")

	snap2, _ := a.store.Snapshot(2)
	if len(snap2.ConfirmedSubscribers) != 1 || snap2.ConfirmedSubscribers[0] != "SM Desk" {
		t.Errorf("channel 2 subscribers = %v, want [SM Desk]", snap2.ConfirmedSubscribers)
	}
	snap5, _ := a.store.Snapshot(5)
	if len(snap5.ConfirmedSubscribers) != 0 {
		t.Errorf("channel 5 subscribers = %v, want empty", snap5.ConfirmedSubscribers)
	}
}

func TestConfirmationDedupByName(t *testing.T) {
	a, bus, _ := newTestAdapter(t)

	a.Apply(1, channel.IntentToggleMaster)
	req := bus.lastStatus(t, "cuelight/channel/1/status").RequestID

	confirm(t, a, req, "Flys")
	confirm(t, a, req, "Flys")
	confirm(t, a, req, "LX")

	snap, _ := a.store.Snapshot(1)
	want := []string{"Flys", "LX"}
	if len(snap.ConfirmedSubscribers) != len(want) {
		t.Fatalf("subscribers = %v, want %v", snap.ConfirmedSubscribers, want)
	}
	for i, name := range want {
		if snap.ConfirmedSubscribers[i] != name {
			t.Errorf("subscribers[%d] = %q, want %q", i, snap.ConfirmedSubscribers[i], name)
		}
	}
}

func TestStaleConfirmationDroppedAfterStandbyExit(t *testing.T) {
	a, bus, _ := newTestAdapter(t)

	a.Apply(4, channel.IntentToggleMaster)
	req := bus.lastStatus(t, "cuelight/channel/4/status").RequestID

	// Leave standby before the confirmation lands.
	a.Apply(4, channel.IntentToggleMaster)
	confirm(t, a, req, "Late Receiver")

	snap, _ := a.store.Snapshot(4)
	if len(snap.ConfirmedSubscribers) != 0 {
		t.Errorf("stale confirmation recorded: %v", snap.ConfirmedSubscribers)
	}
}

func TestGoSchedulesRevertAndClearsSubscribers(t *testing.T) {
	a, bus, scheduled := newTestAdapter(t)

	a.Apply(1, channel.IntentToggleMaster)
	req := bus.lastStatus(t, "cuelight/channel/1/status").RequestID
	confirm(t, a, req, "SM Desk")

	a.Apply(1, channel.IntentMasterGo)
	if status, _ := a.store.Status(1); status != channel.StatusGo {
		t.Fatalf("status = %q, want go", status)
	}
	if len(*scheduled) != 1 {
		t.Fatalf("scheduled %d reverts, want 1", len(*scheduled))
	}

	// Fire the scheduled revert.
	(*scheduled)[0]()

	if status, _ := a.store.Status(1); status != channel.StatusIdle {
		t.Errorf("status after revert = %q, want idle", status)
	}
	snap, _ := a.store.Snapshot(1)
	if len(snap.ConfirmedSubscribers) != 0 {
		t.Errorf("subscribers not cleared on revert: %v", snap.ConfirmedSubscribers)
	}
	msg := bus.lastStatus(t, "cuelight/channel/1/status")
	if msg.Status != "idle" {
		t.Errorf("published status after revert = %q, want idle", msg.Status)
	}
}

func TestStaleRevertLeavesNewStandbyAlone(t *testing.T) {
	a, _, scheduled := newTestAdapter(t)

	// Solo standby, fire, then re-arm master standby before the revert runs.
	a.Apply(2, channel.IntentToggleSolo)
	a.Apply(2, channel.IntentToggleSolo)
	(*scheduled)[0]() // revert: go -> idle
	a.Apply(2, channel.IntentToggleMaster)

	// A duplicate stale revert must not touch the new standby.
	(*scheduled)[0]()

	if status, _ := a.store.Status(2); status != channel.StatusStandbyMaster {
		t.Errorf("status = %q, want standby_master", status)
	}
}

func TestStaleRevertAfterRefireIgnored(t *testing.T) {
	a, _, scheduled := newTestAdapter(t)

	// First fire.
	a.Apply(3, channel.IntentToggleSolo)
	a.Apply(3, channel.IntentToggleSolo)
	// Revert, then refire before the first revert's duplicate runs.
	(*scheduled)[0]()
	a.Apply(3, channel.IntentToggleSolo)
	a.Apply(3, channel.IntentToggleSolo)

	// The stale generation-1 revert fires while the channel is in its
	// second go. It must not cut the second go short.
	(*scheduled)[0]()

	if status, _ := a.store.Status(3); status != channel.StatusGo {
		t.Errorf("status = %q, want go (stale revert must be ignored)", status)
	}

	// The second go's own revert still works.
	(*scheduled)[1]()
	if status, _ := a.store.Status(3); status != channel.StatusIdle {
		t.Errorf("status = %q, want idle", status)
	}
}

func TestMasterGoFiresOnlyMasterStandbys(t *testing.T) {
	a, _, _ := newTestAdapter(t)

	a.Apply(1, channel.IntentToggleMaster)
	a.Apply(2, channel.IntentToggleMaster)
	a.Apply(3, channel.IntentToggleSolo)

	a.MasterGo()

	wantStatuses := map[int]channel.Status{
		1: channel.StatusGo,
		2: channel.StatusGo,
		3: channel.StatusStandbySolo,
		4: channel.StatusIdle,
	}
	for id, want := range wantStatuses {
		if got, _ := a.store.Status(id); got != want {
			t.Errorf("channel %d status = %q, want %q", id, got, want)
		}
	}
}

func TestCueArmAndGo(t *testing.T) {
	a, bus, _ := newTestAdapter(t)

	cues := []cue.Cue{
		{ID: "c3", Number: "3", NumberFloat: 3, Label: "Act 2 top", Channels: []int{1}},
		{ID: "c1", Number: "1", NumberFloat: 1, Label: "House out", Channels: []int{1, 2}},
		{ID: "c25", Number: "2.5", NumberFloat: 2.5, Label: "Blackout", Channels: []int{3}},
	}
	a.AttachCues(cues, nil)

	// Sorted order: 1, 2.5, 3; pointer starts at cue 1.
	cur, ok := a.CurrentCue()
	if !ok || cur.Number != "1" {
		t.Fatalf("current cue = %v, want cue 1", cur.Number)
	}

	if err := a.ArmCue(); err != nil {
		t.Fatalf("ArmCue() error = %v", err)
	}
	for _, id := range []int{1, 2} {
		if status, _ := a.store.Status(id); status != channel.StatusStandbyMaster {
			t.Errorf("channel %d = %q, want standby_master", id, status)
		}
	}

	// Cue label rides on the standby payload.
	msg := bus.lastStatus(t, "cuelight/channel/2/status")
	if msg.CueLabel != "House out" {
		t.Errorf("cueLabel = %q, want %q", msg.CueLabel, "House out")
	}

	if err := a.GoCue(); err != nil {
		t.Fatalf("GoCue() error = %v", err)
	}
	for _, id := range []int{1, 2} {
		if status, _ := a.store.Status(id); status != channel.StatusGo {
			t.Errorf("channel %d = %q, want go", id, status)
		}
	}

	// Pointer advanced to cue 2.5, armed cleared.
	cur, _ = a.CurrentCue()
	if cur.Number != "2.5" {
		t.Errorf("current cue after go = %q, want 2.5", cur.Number)
	}
	if a.CueArmed() {
		t.Error("armed flag not cleared after go")
	}
}

func TestCueArmDoesNotToggleArmedChannels(t *testing.T) {
	a, _, _ := newTestAdapter(t)

	a.AttachCues([]cue.Cue{
		{ID: "c1", Number: "1", NumberFloat: 1, Channels: []int{1, 2}},
	}, nil)

	// Channel 1 is already standing by when the cue arms.
	a.Apply(1, channel.IntentToggleMaster)
	if err := a.ArmCue(); err != nil {
		t.Fatalf("ArmCue() error = %v", err)
	}

	for _, id := range []int{1, 2} {
		if status, _ := a.store.Status(id); status != channel.StatusStandbyMaster {
			t.Errorf("channel %d = %q, want standby_master", id, status)
		}
	}
}

func TestCueGoNotArmed(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	a.AttachCues([]cue.Cue{
		{ID: "c1", Number: "1", NumberFloat: 1, Channels: []int{1}},
	}, nil)

	if err := a.GoCue(); !errors.Is(err, cue.ErrNotArmed) {
		t.Errorf("GoCue() error = %v, want ErrNotArmed", err)
	}
}

func TestCueTraversalCircular(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	a.AttachCues([]cue.Cue{
		{ID: "a", Number: "1", NumberFloat: 1, Channels: []int{1}},
		{ID: "b", Number: "2", NumberFloat: 2, Channels: []int{2}},
	}, nil)

	a.PrevCue() // wraps to last
	if cur, _ := a.CurrentCue(); cur.Number != "2" {
		t.Errorf("after Prev from first, cue = %q, want 2", cur.Number)
	}
	a.NextCue() // wraps to first
	if cur, _ := a.CurrentCue(); cur.Number != "1" {
		t.Errorf("after Next from last, cue = %q, want 1", cur.Number)
	}
}

func TestStartPublishesBaselineAndSubscribes(t *testing.T) {
	a, bus, _ := newTestAdapter(t)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, ok := bus.handlers["cuelight/confirmations/"+a.InstanceID()]; !ok {
		t.Error("Start() did not subscribe to the confirmation topic")
	}
	for id := channel.MinID; id <= channel.MaxID; id++ {
		msg := bus.lastStatus(t, mqtt.Topics{}.ChannelStatus(id))
		if msg.Status != "idle" {
			t.Errorf("baseline status for channel %d = %q, want idle", id, msg.Status)
		}
	}
}

func TestUpdateChannelConfigPublishesAndValidates(t *testing.T) {
	a, bus, _ := newTestAdapter(t)
	ctx := context.Background()

	if err := a.UpdateChannelConfig(ctx, 2, "LX Desk", "Red", "#e74c3c", "#FFFFFF"); err != nil {
		t.Fatalf("UpdateChannelConfig() error = %v", err)
	}

	snap, _ := a.store.Snapshot(2)
	if snap.Label != "LX Desk" || snap.ColorHex != "#e74c3c" {
		t.Errorf("store config = %q/%q, want LX Desk/#e74c3c", snap.Label, snap.ColorHex)
	}

	// Config goes out for every channel, not just the edited one.
	for id := channel.MinID; id <= channel.MaxID; id++ {
		if n := bus.countOn(mqtt.Topics{}.ChannelConfig(id)); n != 1 {
			t.Errorf("config publishes for channel %d = %d, want 1", id, n)
		}
	}

	var msg protocol.ConfigMessage
	bus.mu.Lock()
	for _, m := range bus.published {
		if m.topic == "cuelight/config/channel/2" {
			if err := json.Unmarshal(m.payload, &msg); err != nil {
				t.Fatalf("decoding config payload: %v", err)
			}
		}
	}
	bus.mu.Unlock()
	if msg.Label != "LX Desk" || msg.ColorHex != "#e74c3c" {
		t.Errorf("published config = %+v", msg)
	}

	// Over-length labels are rejected before any mutation.
	err := a.UpdateChannelConfig(ctx, 2, "a label far too long for a channel", "Red", "#e74c3c", "#FFFFFF")
	if err == nil {
		t.Error("expected error for over-length label")
	}
}

// routedBus wires a transmitter and a receiver together in-process:
// every publish is delivered synchronously to the handler subscribed
// on its topic, so the confirmation handshake runs end to end without
// a broker.
type routedBus struct {
	mu       sync.Mutex
	handlers map[string]mqtt.MessageHandler
}

func newRoutedBus() *routedBus {
	return &routedBus{handlers: make(map[string]mqtt.MessageHandler)}
}

func (b *routedBus) Publish(topic string, _ byte, _ bool, payload []byte) error {
	b.mu.Lock()
	handler := b.handlers[topic]
	b.mu.Unlock()
	if handler == nil {
		return nil
	}
	return handler(topic, payload)
}

func (b *routedBus) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = handler
	return nil
}

func (b *routedBus) Unsubscribe(topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, topic)
	return nil
}

func TestStandbyConfirmationRoundTrip(t *testing.T) {
	bus := newRoutedBus()
	store := channel.NewStore(channel.Defaults())
	tx := New(store, bus, mqtt.Topics{}, 1)
	tx.schedule = func(time.Duration, func()) {}
	if err := tx.Start(); err != nil {
		t.Fatalf("transmitter start: %v", err)
	}

	settings := receiver.Settings{Name: "Flys", ChannelID: 2, BrokerIP: "localhost"}
	rx := receiver.New(settings, "rx-identity-1", bus, mqtt.Topics{}, 1,
		filepath.Join(t.TempDir(), "receiver.json"))
	if err := rx.Start(); err != nil {
		t.Fatalf("receiver start: %v", err)
	}

	tx.Apply(2, channel.IntentToggleMaster)

	view := rx.View()
	if view.Status != channel.StatusStandbyMaster {
		t.Fatalf("receiver status = %q, want %q", view.Status, channel.StatusStandbyMaster)
	}
	if !view.CanConfirm {
		t.Fatal("receiver cannot confirm after standby arrived")
	}

	if err := rx.Confirm(); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	snap, err := tx.SnapshotChannel(2)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.ConfirmedSubscribers) != 1 || snap.ConfirmedSubscribers[0] != "Flys" {
		t.Fatalf("confirmed subscribers = %v, want [Flys]", snap.ConfirmedSubscribers)
	}

	// A second press is a no-op: latched locally, nothing re-sent.
	if err := rx.Confirm(); !errors.Is(err, receiver.ErrAlreadyConfirmed) {
		t.Fatalf("second confirm error = %v, want ErrAlreadyConfirmed", err)
	}
	snap, err = tx.SnapshotChannel(2)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.ConfirmedSubscribers) != 1 {
		t.Fatalf("confirmed subscribers after repeat = %v, want one entry", snap.ConfirmedSubscribers)
	}
}
