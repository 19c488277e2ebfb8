package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/opticini/opticini-cli/internal/adapter/driven/config"
	"github.com/opticini/opticini-cli/internal/app"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
	"github.com/opticini/opticini-cli/internal/shared/types"
	"github.com/opticini/opticini-cli/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface
	getenv     func(string) string
	isTTY      func() bool

	logger *zap.Logger
	wire   *app.Wire
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(configRepo repository.ConfigRepository, console types.ConsoleInterface) *CLIApp {
	a := &CLIApp{
		configRepo: configRepo,
		console:    console,
		getenv:     os.Getenv,
		isTTY:      stdinIsTerminal,
	}

	rootCmd := &cobra.Command{
		Use:           "opticini",
		Short:         "Opticini workspace CLI",
		Long:          "Terminal client for the Opticini observability workspace: status monitoring, security audits, compliance and admin tools.",
		Version:       version.FormatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			displayWelcomeBanner()
			return cmd.Help()
		},
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "Opticini CLI version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.String("api-url", "", "Opticini API base URL (default $OPTICINI_API_BASE_URL or http://localhost:8000)")
	flags.String("token-file", "", "Where login tokens are stored (default ~/.opticini/tokens.json)")
	flags.StringP("report-name", "n", "", "Base name for exported report files (without extension)")
	flags.StringSliceP("report-type", "y", nil, "Report types to export: csv, json, pdf")
	flags.StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	flags.String("s3-bucket", "", "Upload exported reports to this S3 bucket")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.dealsCmd(),
		a.monitorCmd(),
		a.linksCmd(),
		a.auditCmd(),
		a.complianceCmd(),
		a.workspaceCmd(),
		a.contactCmd(),
		a.analyzeCmd(),
		a.discoverCmd(),
		a.versionCmd(),
	)

	a.rootCmd = rootCmd
	return a
}

// Execute runs the CLI application and reports a failure once.
func (a *CLIApp) Execute() error {
	err := a.rootCmd.Execute()
	if err != nil {
		a.reportError(err)
	}
	return err
}

// parseArgs reads the persistent flags into a CLIArgs struct.
func (a *CLIApp) parseArgs(cmd *cobra.Command) (types.CLIArgs, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config-file")
	apiURL, _ := flags.GetString("api-url")
	tokenFile, _ := flags.GetString("token-file")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")
	s3Bucket, _ := flags.GetString("s3-bucket")
	verbose, _ := flags.GetBool("verbose")

	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return types.CLIArgs{}, err
		}
		dir = absDir
	}
	if reportName != "" && len(reportType) == 0 {
		reportType = []string{"csv"}
	}

	return types.CLIArgs{
		ConfigFile: configFile,
		APIBaseURL: apiURL,
		TokenFile:  tokenFile,
		ReportName: reportName,
		ReportType: reportType,
		Dir:        dir,
		S3Bucket:   s3Bucket,
		Verbose:    verbose,
	}, nil
}

// setup loads the configuration, builds the logger and wires the use cases.
func (a *CLIApp) setup(cmd *cobra.Command, _ []string) error {
	args, err := a.parseArgs(cmd)
	if err != nil {
		return err
	}

	var fileCfg *types.Config
	if args.ConfigFile != "" {
		fileCfg, err = a.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return err
		}
	}
	cfg := config.Resolve(fileCfg, args, a.getenv)

	logger, err := newLogger(args.Verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logger.Debug("configuration resolved",
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("token_file", cfg.TokenFile),
		zap.Int("poll_interval", cfg.PollInterval))

	a.wire = app.NewWire(cfg, logger, a.console)
	return nil
}

// newLogger builds a production zap logger; verbose lowers the level to debug.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// reportError prints err; an expired session gets a login prompt instead
// of a bare error.
func (a *CLIApp) reportError(err error) {
	if apperrors.IsUnauthorized(err) {
		a.console.LogError("%s", sessionMessage(err))
		a.promptLogin()
		return
	}
	a.console.LogError("%s", err)
}

func sessionMessage(err error) string {
	if errors.Is(err, apperrors.ErrNotLoggedIn) {
		return "You are not logged in."
	}
	return "Your session has expired and the stored tokens were cleared."
}

// promptLogin offers to log in right away when running in a terminal.
func (a *CLIApp) promptLogin() {
	if a.wire == nil || !a.isTTY() {
		a.console.LogInfo("Run `opticini login` to sign in again.")
		return
	}
	ok, _ := pterm.DefaultInteractiveConfirm.WithDefaultValue(true).Show("Log in now?")
	if !ok {
		a.console.LogInfo("Run `opticini login` to sign in again.")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := a.interactiveLogin(ctx, ""); err != nil {
		a.console.LogError("%s", err)
		return
	}
	a.console.LogInfo("Run the command again to continue.")
}

// signalContext is cancelled on Ctrl-C so polling loops stop cleanly.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// stdinIsTerminal is false for pipes and /dev/null, so cron and CI runs
// never block on a prompt.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (a *CLIApp) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and check for a newer release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			displayWelcomeBanner()
			ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
			defer cancel()
			checkLatestVersion(ctx)
			return nil
		},
	}
}
