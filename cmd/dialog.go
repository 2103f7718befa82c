package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smazurov/progressbridge/internal/dialog"
	"github.com/smazurov/progressbridge/internal/logging"
)

// CreateDialogCmd creates the dialog command, the default rendering
// subprocess launched by the bridge.
func CreateDialogCmd() *cobra.Command {
	var headless bool
	var cancelAfter int
	var title string
	var logLevel string
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "dialog",
		Short: "Run the progress dialog",
		Long: `Displays progress sent by a host on standard input and reports a cancel back on standard output. ` +
			`The display is drawn on the controlling terminal; without one the dialog runs headless.`,
		Args: cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			// stdout carries the protocol, so logs must go to stderr.
			loggingConfig := logging.Config{
				Level:  logLevel,
				Format: "text",
				Output: "stderr",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("dialog")

			opts := dialog.Options{
				In:          os.Stdin,
				Out:         os.Stdout,
				CancelAfter: cancelAfter,
				Title:       title,
				Logger:      logger,
			}
			if !headless {
				tty, err := dialog.OpenTTY()
				if err != nil {
					logger.Debug("No terminal, running headless", "error", err)
				} else {
					defer tty.Close()
					opts.TTY = tty
				}
			}

			ctx, stop := signal.NotifyContext(commandContext(c), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := dialog.Run(ctx, opts); err != nil {
				logger.Error("Dialog failed", "error", err)
				stop()
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Do not draw on the terminal")
	cmd.Flags().IntVar(&cancelAfter, "cancel-after", 0, "Cancel after this many progress updates (headless only)")
	cmd.Flags().StringVar(&title, "title", "", "Text shown before the first operation arrives")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")

	return cmd
}

func commandContext(c *cobra.Command) context.Context {
	if ctx := c.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
