package cli

import (
	"github.com/spf13/cobra"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

func (a *CLIApp) complianceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compliance",
		Short: "Compliance frameworks and reports",
	}

	frameworks := &cobra.Command{
		Use:   "frameworks",
		Short: "List frameworks with their control coverage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.wire.Compliance.ListFrameworks(cmd.Context())
			return err
		},
	}

	reports := &cobra.Command{
		Use:   "reports",
		Short: "List generated compliance reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.wire.Compliance.ListReports(cmd.Context())
			return err
		},
	}

	var (
		frameworkID int
		reportType  string
	)
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Request a new report for a framework",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.wire.Compliance.GenerateReport(cmd.Context(), frameworkID, reportType)
			return err
		},
	}
	generate.Flags().IntVar(&frameworkID, "framework", 0, "framework id")
	generate.Flags().StringVar(&reportType, "type", "summary", "report type")
	_ = generate.MarkFlagRequired("framework")

	cmd.AddCommand(frameworks, reports, generate)
	return cmd
}

func (a *CLIApp) workspaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workspace",
		Short: "Overview of analytics, compliance, configuration, health and security",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.wire.Workspace.Show(cmd.Context())
			return err
		},
	}
}

func (a *CLIApp) contactCmd() *cobra.Command {
	var msg entity.ContactMessage
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the Opticini team",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.wire.Contact.Submit(cmd.Context(), msg)
		},
	}
	cmd.Flags().StringVar(&msg.Name, "name", "", "your name")
	cmd.Flags().StringVar(&msg.Email, "email", "", "your email address")
	cmd.Flags().StringVar(&msg.Company, "company", "", "company (optional)")
	cmd.Flags().StringVar(&msg.Subject, "subject", "", "subject")
	cmd.Flags().StringVarP(&msg.Message, "message", "m", "", "message body")
	return cmd
}

func (a *CLIApp) analyzeCmd() *cobra.Command {
	var devices []string
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Run a performance test of a page on mobile and desktop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var strategies []entity.DeviceStrategy
			for _, d := range devices {
				s, err := entity.ParseDevice(d)
				if err != nil {
					return err
				}
				strategies = append(strategies, s)
			}
			_, err := a.wire.Analyze.Analyze(cmd.Context(), args[0], strategies)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&devices, "device", nil, "devices to test: mobile, desktop (default both)")
	return cmd
}
