package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func (a *CLIApp) auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run and follow server-side security audits",
	}

	var (
		watch    bool
		interval time.Duration
	)
	pollEvery := func() time.Duration {
		if interval > 0 {
			return interval
		}
		return time.Duration(a.wire.Config.AuditPollInterval) * time.Second
	}

	start := &cobra.Command{
		Use:   "start <url>",
		Short: "Start a security audit of a website",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			_, err := a.wire.Audit.Start(ctx, args[0], watch, pollEvery())
			return err
		},
	}
	start.Flags().BoolVarP(&watch, "watch", "w", false, "follow the audit until it finishes")
	start.Flags().DurationVar(&interval, "interval", 0, "poll interval while watching (default from config, 5s)")

	var refresh, follow bool
	status := &cobra.Command{
		Use:   "status",
		Short: "Show the last audit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			_, err := a.wire.Audit.Status(ctx, refresh, follow, pollEvery())
			return err
		},
	}
	status.Flags().BoolVarP(&refresh, "refresh", "r", false, "fetch the latest status from the server first")
	status.Flags().BoolVarP(&follow, "watch", "w", false, "follow the audit until it finishes")
	status.Flags().DurationVar(&interval, "interval", 0, "poll interval while watching (default from config, 5s)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the last audit results",
		RunE: func(*cobra.Command, []string) error {
			return a.wire.Audit.Clear()
		},
	}

	cmd.AddCommand(start, status, clearCmd)
	return cmd
}
