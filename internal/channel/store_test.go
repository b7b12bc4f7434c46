package channel

import (
	"errors"
	"testing"
)

func TestNewStoreNormalisesRuntimeState(t *testing.T) {
	seed := Defaults()
	seed[0].Status = StatusGo
	seed[0].ConfirmedSubscribers = []string{"Stage Left"}

	store := NewStore(seed)

	snap, err := store.Snapshot(seed[0].NumericID)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Status != StatusIdle {
		t.Errorf("status = %s, want idle", snap.Status)
	}
	if len(snap.ConfirmedSubscribers) != 0 {
		t.Errorf("confirmed subscribers = %v, want empty", snap.ConfirmedSubscribers)
	}
}

func TestSetStatusReturnsPrevious(t *testing.T) {
	store := NewStore(Defaults())

	prev, ok := store.SetStatus(1, StatusStandbyMaster)
	if !ok {
		t.Fatal("SetStatus() ok = false for known channel")
	}
	if prev != StatusIdle {
		t.Errorf("previous = %s, want idle", prev)
	}

	status, ok := store.Status(1)
	if !ok || status != StatusStandbyMaster {
		t.Errorf("Status(1) = %s, %v", status, ok)
	}
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	store := NewStore(Defaults())

	if _, ok := store.SetStatus(99, StatusGo); ok {
		t.Error("SetStatus accepted unknown id")
	}
	if _, ok := store.Status(99); ok {
		t.Error("Status reported unknown id")
	}

	// These must not panic or mutate anything.
	store.AppendConfirmedSubscriber(99, "Fly Floor")
	store.ClearConfirmedSubscribers(99)
	store.UpdateConfig(99, "FOH", "Red", "#F44336", "#FFFFFF")

	if _, err := store.Snapshot(99); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("Snapshot(99) error = %v, want ErrChannelNotFound", err)
	}
}

func TestAppendConfirmedSubscriberDedup(t *testing.T) {
	store := NewStore(Defaults())

	store.AppendConfirmedSubscriber(2, "DSM")
	store.AppendConfirmedSubscriber(2, "DSM")
	store.AppendConfirmedSubscriber(2, "Fly Floor")

	snap, err := store.Snapshot(2)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	want := []string{"DSM", "Fly Floor"}
	if len(snap.ConfirmedSubscribers) != len(want) {
		t.Fatalf("subscribers = %v, want %v", snap.ConfirmedSubscribers, want)
	}
	for i, name := range want {
		if snap.ConfirmedSubscribers[i] != name {
			t.Errorf("subscribers[%d] = %q, want %q", i, snap.ConfirmedSubscribers[i], name)
		}
	}

	store.ClearConfirmedSubscribers(2)
	snap, _ = store.Snapshot(2)
	if len(snap.ConfirmedSubscribers) != 0 {
		t.Errorf("subscribers after clear = %v", snap.ConfirmedSubscribers)
	}
}

func TestUpdateConfigLeavesRuntimeState(t *testing.T) {
	store := NewStore(Defaults())
	store.SetStatus(3, StatusStandbySolo)
	store.AppendConfirmedSubscriber(3, "Followspot")

	store.UpdateConfig(3, "Followspot", "Teal", "#009688", "#FFFFFF")

	snap, err := store.Snapshot(3)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Label != "Followspot" || snap.ColorName != "Teal" {
		t.Errorf("config not applied: %+v", snap)
	}
	if snap.Status != StatusStandbySolo {
		t.Errorf("status changed to %s", snap.Status)
	}
	if len(snap.ConfirmedSubscribers) != 1 {
		t.Errorf("subscribers changed: %v", snap.ConfirmedSubscribers)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store := NewStore(Defaults())
	store.AppendConfirmedSubscriber(1, "DSM")

	snap, err := store.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	snap.Label = "mutated"
	snap.ConfirmedSubscribers[0] = "mutated"

	again, _ := store.Snapshot(1)
	if again.Label == "mutated" || again.ConfirmedSubscribers[0] == "mutated" {
		t.Error("snapshot shares memory with the store")
	}
}

func TestSnapshotAllOrderedByID(t *testing.T) {
	store := NewStore(Defaults())

	all := store.SnapshotAll()
	if len(all) != MaxID {
		t.Fatalf("len = %d, want %d", len(all), MaxID)
	}
	for i, c := range all {
		if c.NumericID != i+1 {
			t.Errorf("all[%d].NumericID = %d, want %d", i, c.NumericID, i+1)
		}
	}

	ids := store.IDs()
	if len(ids) != store.Count() {
		t.Errorf("IDs() len = %d, Count() = %d", len(ids), store.Count())
	}
}
