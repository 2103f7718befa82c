// Package process launches and supervises the rendering subprocess.
//
// A Subprocess exposes the child as one bidirectional line channel:
//   - Writes go to the child's standard input
//   - Reads return the child's standard output with standard error merged in
//
// Shutdown closes the input side, sends SIGINT to the child's process group,
// and escalates to SIGKILL once the graceful timeout elapses. Stop never
// blocks longer than the graceful and kill timeouts combined, even when the
// child is wedged.
//
// Example usage:
//
//	sp, err := process.Start("dialog", "rubyw dialog.rb", logger)
//	if err != nil {
//	    return err
//	}
//	defer sp.Stop()
//	fmt.Fprintln(sp, "label.text = 'hello'")
package process
