package stego

import "go.uber.org/zap"

// State is a step of the encode or decode pipeline. Pipelines move
// through the states in order and never go back.
type State int

const (
	StateInit State = iota
	StateHeaderCopied
	StateHeaderSkipped
	StateMarkerDone
	StateExtensionDone
	StatePayloadDone
	StateTailCopied
	StateComplete
)

var stateNames = [...]string{
	StateInit:          "init",
	StateHeaderCopied:  "header-copied",
	StateHeaderSkipped: "header-skipped",
	StateMarkerDone:    "marker-done",
	StateExtensionDone: "extension-done",
	StatePayloadDone:   "payload-done",
	StateTailCopied:    "tail-copied",
	StateComplete:      "complete",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func logState(op string, s State, offset int64) {
	Logger().Debug("pipeline state",
		zap.String("op", op),
		zap.Stringer("state", s),
		zap.Int64("offset", offset))
}
