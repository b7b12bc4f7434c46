// Package channel provides the Channel State Store for the cue light core.
//
// A channel is one addressable cue light signal line (ids 1..8) with a
// presentation colour, a lifecycle status, and a list of receivers that have
// confirmed the current standby. The Store is the authoritative copy of this
// state on the transmitter: every status change flows through it, and every
// published status payload is built from one of its snapshots.
//
// # Key Types
//
//   - Channel: configuration plus runtime state for one signal line
//   - Status: the four-state lifecycle (idle, standby_master, standby_solo, go)
//   - Store: thread-safe owner of all channel state
//   - Intent / Transition: the state machine as an enumerable pure function
//
// The transition table is deliberately separate from the Store: Transition
// decides whether a (status, intent) pair means anything, the Store records
// the outcome, and the transmitter adapter sequences the two together with
// the publish and pending-request side effects.
package channel
