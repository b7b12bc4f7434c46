package transmitter

import (
	"context"

	"github.com/stagecue/cuelight-core/internal/cue"
)

// Cue operations delegate to the sequencer under the adapter mutex, so a
// cue batch is one atomic control-plane mutation: no operator intent or
// confirmation can interleave with the per-channel transitions of an arm
// or a GO.

// ArmCue drives master standby for every channel in the current cue.
func (a *Adapter) ArmCue() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seq == nil {
		return cue.ErrNoCurrentCue
	}
	return a.seq.Arm()
}

// GoCue fires the current cue and advances the pointer.
func (a *Adapter) GoCue() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seq == nil {
		return cue.ErrNoCurrentCue
	}

	fired, ok := a.seq.Current()
	if err := a.seq.Go(); err != nil {
		return err
	}
	if ok && a.history != nil {
		a.history.WriteCueFired(fired.Number, fired.Label, len(fired.Channels))
	}
	return nil
}

// NextCue advances the cue pointer, wrapping past the end.
func (a *Adapter) NextCue() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seq != nil {
		a.seq.Next()
	}
}

// PrevCue moves the cue pointer back, wrapping past the start.
func (a *Adapter) PrevCue() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seq != nil {
		a.seq.Prev()
	}
}

// CurrentCue returns a copy of the cue under the pointer.
func (a *Adapter) CurrentCue() (cue.Cue, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seq == nil {
		return cue.Cue{}, false
	}
	return a.seq.Current()
}

// CueArmed reports whether the current cue is armed.
func (a *Adapter) CueArmed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.seq != nil && a.seq.IsArmed()
}

// Cues returns a copy of the sorted cue list.
func (a *Adapter) Cues() []cue.Cue {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seq == nil {
		return nil
	}
	return a.seq.Cues()
}

// UpsertCue inserts or replaces a cue and persists the list.
func (a *Adapter) UpsertCue(ctx context.Context, c cue.Cue) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seq == nil {
		return cue.ErrNoCurrentCue
	}
	return a.seq.Upsert(ctx, c)
}

// DeleteCue removes a cue by id and persists the list.
func (a *Adapter) DeleteCue(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seq == nil {
		return cue.ErrCueNotFound
	}
	return a.seq.Delete(ctx, id)
}
