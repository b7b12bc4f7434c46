// Package transmitter implements the sending side of the cue light
// protocol: the single authority over channel state.
//
// The adapter owns the channel store, the pending-request tracker, and the
// cue sequencer, and serialises every mutation — operator intents, cue
// batches, confirmations arriving off the wire, and scheduled reverts —
// through one mutex. Receivers never see intermediate state: each
// transition is one store mutation followed by one retained publish.
//
// The confirmation handshake works on opaque request ids. Entering a
// standby state issues a fresh id bound to the channel; leaving standby
// revokes every id for that channel before the new status is published,
// so late confirmations are dropped rather than misattributed.
package transmitter
