// Package protocol defines the line-oriented wire format spoken between the
// host and the rendering dialog.
//
// Inbound (dialog to host) lines are free text except for two control
// tokens. Outbound (host to dialog) lines are assignment statements that the
// dialog evaluates against its own widgets:
//
//	label.text = 'Remaining: 12'
//	operation.text = 'Adding Cubes'
//	progressbar.width = 0.88 * progressbar_background.width
package protocol

import "strings"

// Control tokens emitted by the dialog.
const (
	TokenConnect = "RUBY2D_Connect"
	TokenClose   = "RUBY2D_Close"
)

// DiagnosticPrefix marks dialog output that should be surfaced to the log.
const DiagnosticPrefix = "RUBY2D"

// IsConnect reports whether line is the handshake token.
func IsConnect(line string) bool {
	return strings.TrimRight(line, "\r\n") == TokenConnect
}

// IsClose reports whether line is the user-cancel token.
func IsClose(line string) bool {
	return strings.TrimRight(line, "\r\n") == TokenClose
}

// IsDiagnostic reports whether line carries the reserved logging prefix.
func IsDiagnostic(line string) bool {
	return strings.HasPrefix(line, DiagnosticPrefix)
}
