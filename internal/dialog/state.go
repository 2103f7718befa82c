package dialog

import "github.com/smazurov/progressbridge/internal/protocol"

// State is what the dialog currently displays.
type State struct {
	Operation string
	Label     string
	Width     float64 // progress bar fill, in [0,1]
	Updates   int     // progress assignments applied so far
}

// Apply updates s from one parsed command.
func (s *State) Apply(cmd protocol.Command) {
	switch cmd.Target {
	case protocol.TargetLabel:
		s.Label = cmd.Text
	case protocol.TargetOperation:
		s.Operation = cmd.Text
	case protocol.TargetProgress:
		s.Width = cmd.Width
		s.Updates++
	}
}
