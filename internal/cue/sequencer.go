// Package cue provides the ordered cue list and the sequencer that drives
// batches of channel transitions from it.
package cue

import (
	"context"
	"fmt"
	"sort"

	"github.com/stagecue/cuelight-core/internal/channel"
)

// Driver applies a channel intent through the transmitter state machine.
// The sequencer never mutates channel state itself; it only issues intents.
type Driver interface {
	Apply(channelID int, intent channel.Intent)
}

// Saver persists the cue list after a mutation. Satisfied by the show
// document repository; may be nil in tests.
type Saver interface {
	SaveCues(ctx context.Context, cues []Cue) error
}

// Logger is the logging interface used by the sequencer.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Sequencer maintains the sorted cue list, the current cue pointer, and the
// armed flag, and drives channel transitions for arm and GO.
//
// Pointer movement is circular in both directions and always clears the
// armed flag: moving to a different cue invalidates the previous arm.
//
// Sequencer methods are not individually locked — the sequencer is owned by
// the transmitter's control-plane executor and is only touched from there.
type Sequencer struct {
	cues    []Cue
	current int // index into cues; -1 when the list is empty
	armed   bool

	driver Driver
	saver  Saver
	logger Logger
}

// NewSequencer creates a sequencer over the given cue list.
// The list is sorted ascending by cue number; the pointer starts at the
// first cue, or -1 if the list is empty.
func NewSequencer(cues []Cue, driver Driver, saver Saver) *Sequencer {
	s := &Sequencer{
		cues:    make([]Cue, 0, len(cues)),
		current: -1,
		driver:  driver,
		saver:   saver,
		logger:  noopLogger{},
	}
	for i := range cues {
		s.cues = append(s.cues, *cues[i].DeepCopy())
	}
	s.sortCues()
	if len(s.cues) > 0 {
		s.current = 0
	}
	return s
}

// SetLogger sets the logger for the sequencer.
func (s *Sequencer) SetLogger(logger Logger) {
	s.logger = logger
}

func (s *Sequencer) sortCues() {
	sort.SliceStable(s.cues, func(i, j int) bool {
		return s.cues[i].NumberFloat < s.cues[j].NumberFloat
	})
}

// Current returns a copy of the cue under the pointer.
func (s *Sequencer) Current() (Cue, bool) {
	if s.current < 0 || s.current >= len(s.cues) {
		return Cue{}, false
	}
	return *s.cues[s.current].DeepCopy(), true
}

// CurrentLabel returns the label of the current cue, or "" if there is none.
// Attached to status payloads as cosmetic metadata.
func (s *Sequencer) CurrentLabel() string {
	if c, ok := s.Current(); ok {
		return c.Label
	}
	return ""
}

// Index returns the current cue pointer (-1 when the list is empty).
func (s *Sequencer) Index() int { return s.current }

// IsArmed reports whether the current cue is armed.
func (s *Sequencer) IsArmed() bool { return s.armed }

// Len returns the number of cues in the list.
func (s *Sequencer) Len() int { return len(s.cues) }

// Cues returns a copy of the sorted cue list.
func (s *Sequencer) Cues() []Cue {
	out := make([]Cue, 0, len(s.cues))
	for i := range s.cues {
		out = append(out, *s.cues[i].DeepCopy())
	}
	return out
}

// Next advances the pointer, wrapping past the end, and clears the armed flag.
func (s *Sequencer) Next() {
	if len(s.cues) == 0 {
		return
	}
	s.current = (s.current + 1) % len(s.cues)
	s.armed = false
}

// Prev moves the pointer back, wrapping past the start, and clears the
// armed flag.
func (s *Sequencer) Prev() {
	if len(s.cues) == 0 {
		return
	}
	s.current--
	if s.current < 0 {
		s.current = len(s.cues) - 1
	}
	s.armed = false
}

// Arm drives master standby for every channel in the current cue and sets
// the armed flag. Valid only when the pointer is valid and the cue is not
// already armed.
func (s *Sequencer) Arm() error {
	cue, ok := s.Current()
	if !ok {
		return ErrNoCurrentCue
	}
	if s.armed {
		return ErrAlreadyArmed
	}

	for _, ch := range cue.Channels {
		s.driver.Apply(ch, channel.IntentCueStandby)
	}
	s.armed = true

	s.logger.Info("cue armed", "cue", cue.Number, "label", cue.Label, "channels", len(cue.Channels))
	return nil
}

// Go fires every channel in the current cue, clears the armed flag, and
// advances the pointer to the next cue. Valid only when armed.
func (s *Sequencer) Go() error {
	if !s.armed {
		return ErrNotArmed
	}
	cue, ok := s.Current()
	if !ok {
		return ErrNoCurrentCue
	}

	for _, ch := range cue.Channels {
		s.driver.Apply(ch, channel.IntentCueGo)
	}
	s.armed = false

	s.logger.Info("cue fired", "cue", cue.Number, "label", cue.Label, "channels", len(cue.Channels))
	s.Next()
	return nil
}

// Upsert inserts or replaces a cue by id, re-sorts the list, and delegates
// persistence to the show document. An empty id is assigned a fresh one.
// The pointer is kept on the same cue it was on before the mutation where
// possible.
func (s *Sequencer) Upsert(ctx context.Context, c Cue) error {
	if err := Validate(&c); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = GenerateID()
	}

	currentID := ""
	if cur, ok := s.Current(); ok {
		currentID = cur.ID
	}

	replaced := false
	for i := range s.cues {
		if s.cues[i].ID == c.ID {
			s.cues[i] = *c.DeepCopy()
			replaced = true
			break
		}
	}
	if !replaced {
		s.cues = append(s.cues, *c.DeepCopy())
	}
	s.sortCues()
	s.repoint(currentID)

	return s.persist(ctx)
}

// Delete removes a cue by id, re-sorts, and delegates persistence.
// Returns ErrCueNotFound if no cue has the given id.
func (s *Sequencer) Delete(ctx context.Context, id string) error {
	currentID := ""
	if cur, ok := s.Current(); ok {
		currentID = cur.ID
	}

	idx := -1
	for i := range s.cues {
		if s.cues[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrCueNotFound
	}
	s.cues = append(s.cues[:idx], s.cues[idx+1:]...)
	s.repoint(currentID)

	return s.persist(ctx)
}

// repoint restores the pointer to the cue with the given id after a list
// mutation, falling back to the first cue. Any pointer change invalidates
// the armed flag.
func (s *Sequencer) repoint(id string) {
	s.armed = false
	if len(s.cues) == 0 {
		s.current = -1
		return
	}
	for i := range s.cues {
		if s.cues[i].ID == id {
			s.current = i
			return
		}
	}
	s.current = 0
}

func (s *Sequencer) persist(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	if err := s.saver.SaveCues(ctx, s.Cues()); err != nil {
		return fmt.Errorf("saving cue list: %w", err)
	}
	return nil
}
