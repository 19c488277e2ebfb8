package cli

import (
	"github.com/spf13/cobra"

	"github.com/opticini/opticini-cli/internal/application/usecase"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

func (a *CLIApp) discoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover endpoints to monitor in cloud accounts",
	}

	var (
		profile  string
		regions  []string
		register bool
	)
	awsCmd := &cobra.Command{
		Use:   "aws",
		Short: "Inventory load balancers, instances, function URLs and databases in an AWS account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := usecase.DiscoveryOptions{
				Profile:       profile,
				Regions:       regions,
				Register:      register,
				CheckInterval: a.wire.Config.PollInterval,
			}
			if opts.Profile == "" {
				opts.Profile = a.wire.Config.AWSProfile
			}
			if len(opts.Regions) == 0 {
				opts.Regions = a.wire.Config.Regions
			}
			if opts.Profile == "" {
				a.console.LogInfo("%s; using the default credential chain", types.ErrNoAWSProfile)
			}
			_, err := a.wire.Discovery.Discover(cmd.Context(), opts)
			return err
		},
	}
	awsCmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile (default from config)")
	awsCmd.Flags().StringSliceVarP(&regions, "region", "r", nil, "regions to scan (default: every accessible region)")
	awsCmd.Flags().BoolVar(&register, "register", false, "register every public HTTP endpoint with the status monitor")

	cmd.AddCommand(awsCmd)
	return cmd
}
