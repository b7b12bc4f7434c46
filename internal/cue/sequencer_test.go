package cue

import (
	"context"
	"errors"
	"testing"

	"github.com/stagecue/cuelight-core/internal/channel"
)

type recordedIntent struct {
	channelID int
	intent    channel.Intent
}

type fakeDriver struct {
	applied []recordedIntent
}

func (d *fakeDriver) Apply(channelID int, intent channel.Intent) {
	d.applied = append(d.applied, recordedIntent{channelID, intent})
}

type fakeSaver struct {
	saved [][]Cue
	err   error
}

func (s *fakeSaver) SaveCues(_ context.Context, cues []Cue) error {
	s.saved = append(s.saved, cues)
	return s.err
}

func newCue(number string, numberFloat float64, label string, channels ...int) Cue {
	return Cue{
		ID:          GenerateID(),
		Number:      number,
		NumberFloat: numberFloat,
		Label:       label,
		Channels:    channels,
	}
}

func TestNewSequencerSortsByNumber(t *testing.T) {
	cues := []Cue{
		newCue("3", 3, "Blackout", 1),
		newCue("1", 1, "House out", 2),
		newCue("2.5", 2.5, "Scene change", 3),
	}
	seq := NewSequencer(cues, &fakeDriver{}, nil)

	wantOrder := []string{"1", "2.5", "3"}
	got := seq.Cues()
	if len(got) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(got), len(wantOrder))
	}
	for i, number := range wantOrder {
		if got[i].Number != number {
			t.Errorf("cues[%d].Number = %s, want %s", i, got[i].Number, number)
		}
	}

	current, ok := seq.Current()
	if !ok || current.Number != "1" {
		t.Errorf("initial pointer on %q, want 1", current.Number)
	}
}

func TestEmptySequencer(t *testing.T) {
	seq := NewSequencer(nil, &fakeDriver{}, nil)

	if _, ok := seq.Current(); ok {
		t.Error("empty sequencer has a current cue")
	}
	if seq.Index() != -1 {
		t.Errorf("Index() = %d, want -1", seq.Index())
	}
	if seq.CurrentLabel() != "" {
		t.Errorf("CurrentLabel() = %q, want empty", seq.CurrentLabel())
	}

	// Pointer movement and arm on an empty list must not panic.
	seq.Next()
	seq.Prev()
	if err := seq.Arm(); !errors.Is(err, ErrNoCurrentCue) {
		t.Errorf("Arm() error = %v, want ErrNoCurrentCue", err)
	}
}

func TestTraversalWrapsBothDirections(t *testing.T) {
	seq := NewSequencer([]Cue{
		newCue("1", 1, "a"),
		newCue("2", 2, "b"),
		newCue("3", 3, "c"),
	}, &fakeDriver{}, nil)

	seq.Next()
	seq.Next()
	seq.Next() // wraps past the end
	if current, _ := seq.Current(); current.Number != "1" {
		t.Errorf("after three Next: %s, want 1", current.Number)
	}

	seq.Prev() // wraps past the start
	if current, _ := seq.Current(); current.Number != "3" {
		t.Errorf("after Prev from first: %s, want 3", current.Number)
	}
}

func TestPointerMovementClearsArmed(t *testing.T) {
	seq := NewSequencer([]Cue{
		newCue("1", 1, "a", 1),
		newCue("2", 2, "b", 2),
	}, &fakeDriver{}, nil)

	if err := seq.Arm(); err != nil {
		t.Fatalf("Arm() error = %v", err)
	}
	seq.Next()
	if seq.IsArmed() {
		t.Error("armed flag survived Next")
	}

	if err := seq.Arm(); err != nil {
		t.Fatalf("Arm() error = %v", err)
	}
	seq.Prev()
	if seq.IsArmed() {
		t.Error("armed flag survived Prev")
	}
}

func TestArmDrivesStandbyForCueChannels(t *testing.T) {
	driver := &fakeDriver{}
	seq := NewSequencer([]Cue{newCue("1", 1, "Act one", 2, 5, 7)}, driver, nil)

	if err := seq.Arm(); err != nil {
		t.Fatalf("Arm() error = %v", err)
	}
	if !seq.IsArmed() {
		t.Error("IsArmed() = false after Arm")
	}

	if len(driver.applied) != 3 {
		t.Fatalf("applied %d intents, want 3", len(driver.applied))
	}
	for i, want := range []int{2, 5, 7} {
		if driver.applied[i].channelID != want || driver.applied[i].intent != channel.IntentCueStandby {
			t.Errorf("applied[%d] = %+v, want cue_standby on %d", i, driver.applied[i], want)
		}
	}

	if err := seq.Arm(); !errors.Is(err, ErrAlreadyArmed) {
		t.Errorf("second Arm() error = %v, want ErrAlreadyArmed", err)
	}
}

func TestGoRequiresArm(t *testing.T) {
	seq := NewSequencer([]Cue{newCue("1", 1, "a", 1)}, &fakeDriver{}, nil)
	if err := seq.Go(); !errors.Is(err, ErrNotArmed) {
		t.Errorf("Go() error = %v, want ErrNotArmed", err)
	}
}

func TestGoFiresAndAdvances(t *testing.T) {
	driver := &fakeDriver{}
	seq := NewSequencer([]Cue{
		newCue("1", 1, "a", 1, 4),
		newCue("2", 2, "b", 2),
	}, driver, nil)

	if err := seq.Arm(); err != nil {
		t.Fatalf("Arm() error = %v", err)
	}
	driver.applied = nil

	if err := seq.Go(); err != nil {
		t.Fatalf("Go() error = %v", err)
	}

	if len(driver.applied) != 2 {
		t.Fatalf("applied %d intents, want 2", len(driver.applied))
	}
	for i, want := range []int{1, 4} {
		if driver.applied[i].channelID != want || driver.applied[i].intent != channel.IntentCueGo {
			t.Errorf("applied[%d] = %+v, want cue_go on %d", i, driver.applied[i], want)
		}
	}

	if seq.IsArmed() {
		t.Error("armed flag survived Go")
	}
	if current, _ := seq.Current(); current.Number != "2" {
		t.Errorf("pointer on %s after Go, want 2", current.Number)
	}
}

func TestUpsertInsertsSortedAndPersists(t *testing.T) {
	saver := &fakeSaver{}
	seq := NewSequencer([]Cue{
		newCue("1", 1, "a"),
		newCue("3", 3, "c"),
	}, &fakeDriver{}, saver)

	if err := seq.Upsert(context.Background(), Cue{Number: "2", NumberFloat: 2, Label: "b"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	cues := seq.Cues()
	if len(cues) != 3 || cues[1].Number != "2" {
		t.Errorf("cues = %v", cues)
	}
	if cues[1].ID == "" {
		t.Error("Upsert did not assign an id")
	}
	if len(saver.saved) != 1 {
		t.Errorf("SaveCues called %d times, want 1", len(saver.saved))
	}
}

func TestUpsertKeepsPointerOnCurrentCue(t *testing.T) {
	second := newCue("2", 2, "b")
	seq := NewSequencer([]Cue{
		newCue("1", 1, "a"),
		second,
	}, &fakeDriver{}, nil)
	seq.Next() // pointer on "2"

	// Inserting an earlier cue shifts indices; the pointer must follow cue 2.
	if err := seq.Upsert(context.Background(), Cue{Number: "0.5", NumberFloat: 0.5, Label: "preset"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if current, _ := seq.Current(); current.ID != second.ID {
		t.Errorf("pointer on %s, want cue 2", current.Number)
	}
}

func TestUpsertRejectsInvalidNumber(t *testing.T) {
	saver := &fakeSaver{}
	seq := NewSequencer([]Cue{newCue("1", 1, "a")}, &fakeDriver{}, saver)

	err := seq.Upsert(context.Background(), Cue{Number: "abc", Label: "bad"})
	if !errors.Is(err, ErrInvalidCueNumber) {
		t.Errorf("Upsert() error = %v, want ErrInvalidCueNumber", err)
	}
	if seq.Len() != 1 {
		t.Error("invalid upsert mutated the list")
	}
	if len(saver.saved) != 0 {
		t.Error("invalid upsert persisted")
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	existing := newCue("1", 1, "a", 1)
	seq := NewSequencer([]Cue{existing}, &fakeDriver{}, nil)

	replacement := existing
	replacement.Label = "renamed"
	replacement.Channels = []int{1, 2}
	if err := seq.Upsert(context.Background(), replacement); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if seq.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", seq.Len())
	}
	current, _ := seq.Current()
	if current.Label != "renamed" || len(current.Channels) != 2 {
		t.Errorf("cue not replaced: %+v", current)
	}
}

func TestDelete(t *testing.T) {
	first := newCue("1", 1, "a")
	second := newCue("2", 2, "b")
	saver := &fakeSaver{}
	seq := NewSequencer([]Cue{first, second}, &fakeDriver{}, saver)

	if err := seq.Delete(context.Background(), first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if seq.Len() != 1 {
		t.Errorf("Len() = %d, want 1", seq.Len())
	}
	if current, _ := seq.Current(); current.ID != second.ID {
		t.Errorf("pointer on %s after delete", current.Number)
	}
	if len(saver.saved) != 1 {
		t.Errorf("SaveCues called %d times, want 1", len(saver.saved))
	}

	if err := seq.Delete(context.Background(), "no-such-id"); !errors.Is(err, ErrCueNotFound) {
		t.Errorf("Delete() error = %v, want ErrCueNotFound", err)
	}
}

func TestDeleteLastCue(t *testing.T) {
	only := newCue("1", 1, "a")
	seq := NewSequencer([]Cue{only}, &fakeDriver{}, nil)

	if err := seq.Delete(context.Background(), only.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := seq.Current(); ok {
		t.Error("current cue after deleting the last one")
	}
	if seq.Index() != -1 {
		t.Errorf("Index() = %d, want -1", seq.Index())
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"1", 1, false},
		{"2.5", 2.5, false},
		{" 10 ", 10, false},
		{"", 0, true},
		{"  ", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseNumber(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNumber(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, ErrInvalidCueNumber) {
				t.Errorf("ParseNumber(%q) error %v is not ErrInvalidCueNumber", tt.input, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
