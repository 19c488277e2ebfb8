package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func (a *CLIApp) monitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Status monitor for websites",
	}

	sites := &cobra.Command{
		Use:   "sites",
		Short: "List monitored sites",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.wire.Monitor.ListSites(cmd.Context())
			return err
		},
	}

	var (
		once     bool
		interval time.Duration
	)
	watch := &cobra.Command{
		Use:   "watch <site-id>",
		Short: "Poll a site's status at a fixed interval until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid site id %q", args[0])
			}
			if once {
				_, err := a.wire.Monitor.Once(cmd.Context(), id)
				return err
			}

			every := interval
			if every == 0 {
				every = time.Duration(a.wire.Config.PollInterval) * time.Second
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a.console.LogInfo("Polling site %d every %s (Ctrl-C to stop)", id, every)
			return a.wire.Monitor.Watch(ctx, id, every, a.wire.Monitor.RenderSnapshot)
		},
	}
	watch.Flags().BoolVar(&once, "once", false, "fetch a single snapshot and exit")
	watch.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from config, 60s)")

	register := &cobra.Command{
		Use:   "add <url>",
		Short: "Register a site with the status monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			_, err := a.wire.Monitor.AddSite(cmd.Context(), name, args[0])
			return err
		},
	}
	register.Flags().String("name", "", "display name (default: the host)")

	cmd.AddCommand(sites, watch, register)
	return cmd
}

func (a *CLIApp) linksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "links <url>",
		Short: "List the internal and external links found on a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.wire.Monitor.DiscoverLinks(cmd.Context(), args[0])
			return err
		},
	}
}
