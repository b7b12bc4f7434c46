// Package receiver implements the watching side of the cue light
// protocol: one device subscribed to one channel's status and config.
//
// A receiver is deliberately stateless about the show. Its view is
// whatever the last status message said, its only outbound message is the
// confirmation answering a standby request, and a lost connection blanks
// the view rather than guessing. The settings document ({name, channel,
// broker}) and the durable identity file are the only things it keeps
// across restarts.
package receiver
