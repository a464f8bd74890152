package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/zeu5/lewis-signaling/common"
	"github.com/zeu5/lewis-signaling/report"
	"github.com/zeu5/lewis-signaling/util"
)

func RootCommand() *cobra.Command {
	flags = common.DefaultFlags()
	logger = util.DiscardLogger()

	cmd := &cobra.Command{
		Use:   "lewis",
		Short: "Lewis signaling game with urn learners",
		Long: `lewis simulates a Sender and a Receiver learning a signaling convention
by Roth-Erev urn reinforcement. A round draws a state, the Sender signals,
the Receiver acts, and both urns are updated by the chosen learning mode.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := common.Load(configPath)
			if err != nil {
				return err
			}
			flags = loaded
			UpdateFlags(cmd.Flags())
			if err := flags.Validate(); err != nil {
				return err
			}
			logger = util.NewLogger(flags.LogLevel, cmd.ErrOrStderr())
			return nil
		},
	}
	AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		RunCommand(),
		CompareCommand(),
		VersionCommand(),
	)

	return cmd
}

// interruptContext is cancelled on interrupt or when the returned cancel func is called.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

	doneCh := make(chan struct{}) // channel for done signal from application

	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, func() { close(doneCh) }
}

// terminal returns the command output as a file when it is a terminal.
func terminal(cmd *cobra.Command) (*os.File, bool) {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return nil, false
	}
	return f, report.ColorEnabled(f)
}
