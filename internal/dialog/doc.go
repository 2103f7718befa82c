// Package dialog is a stand-in rendering subprocess for the bridge.
//
// It speaks the bridge's line protocol on stdin/stdout: it prints the connect
// token on startup, applies each label/operation/progress assignment it reads,
// and prints the close token when the user cancels. The progress display is
// drawn on the controlling terminal, never on stdout, so the protocol stream
// stays clean. Without a terminal it runs headless and can be told to cancel
// after a number of progress updates, which is how the demo and tests drive it.
package dialog
