package channel

// Intent is a named operator action against a channel.
//
// Intents are issued by input surfaces (console, cue sequencer) and carry no
// target status of their own: the transition table below decides what, if
// anything, each intent means in the channel's current state.
type Intent string

const (
	// IntentToggleMaster toggles a channel between idle and master standby.
	IntentToggleMaster Intent = "toggle_master_standby"

	// IntentToggleSolo arms a solo standby from idle, and fires the channel
	// when it is already in solo standby. The same control means
	// standby-then-fire for solo channels.
	IntentToggleSolo Intent = "toggle_solo_standby"

	// IntentCueStandby arms a channel into master standby as part of a cue.
	// Unlike IntentToggleMaster it never leaves standby: arming a channel
	// that is already standing by is rejected, not toggled back to idle.
	IntentCueStandby Intent = "cue_standby"

	// IntentMasterGo fires every channel currently in master standby.
	IntentMasterGo Intent = "master_go"

	// IntentCueGo fires a channel as part of a cue. Equivalent to a master
	// GO for the transition table; issued per channel by the sequencer.
	IntentCueGo Intent = "cue_go"

	// IntentRevert is the scheduled automatic return to idle after the GO
	// duration. Not reachable from any operator control.
	IntentRevert Intent = "revert"
)

// Transition is the channel state machine as a pure function.
//
// It returns the next status and true when (current, intent) is a defined
// transition; otherwise it returns current and false. Callers must treat a
// false result as a silent rejection: no state change, no publish.
func Transition(current Status, intent Intent) (Status, bool) {
	switch intent {
	case IntentToggleMaster:
		switch current {
		case StatusIdle:
			return StatusStandbyMaster, true
		case StatusStandbyMaster:
			return StatusIdle, true
		}
	case IntentToggleSolo:
		switch current {
		case StatusIdle:
			return StatusStandbySolo, true
		case StatusStandbySolo:
			return StatusGo, true
		}
	case IntentCueStandby:
		if current == StatusIdle {
			return StatusStandbyMaster, true
		}
	case IntentMasterGo, IntentCueGo:
		if current == StatusStandbyMaster {
			return StatusGo, true
		}
	case IntentRevert:
		if current == StatusGo {
			return StatusIdle, true
		}
	}
	return current, false
}
