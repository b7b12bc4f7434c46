// Package show persists the show document: channel configuration and
// the cue list.
//
// Only the transmitter opens a show database. Receivers hold no show
// state beyond their own settings file.
//
// The Repository interface abstracts storage so the transmitter and cue
// sequencer can be tested against a mock; SQLiteRepository is the
// production implementation.
package show
