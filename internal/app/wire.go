// Package app builds the dependency graph shared by every CLI command.
package app

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/opticini/opticini-cli/internal/adapter/driven/analyzer"
	"github.com/opticini/opticini-cli/internal/adapter/driven/api"
	"github.com/opticini/opticini-cli/internal/adapter/driven/aws"
	"github.com/opticini/opticini-cli/internal/adapter/driven/export"
	"github.com/opticini/opticini-cli/internal/adapter/driven/filestore"
	"github.com/opticini/opticini-cli/internal/adapter/driven/links"
	"github.com/opticini/opticini-cli/internal/application/audit"
	"github.com/opticini/opticini-cli/internal/application/usecase"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/types"
	"github.com/opticini/opticini-cli/pkg/version"
)

// minAnalyzeTimeout bounds a single Lighthouse run, which is much slower
// than an API call.
const minAnalyzeTimeout = 120 * time.Second

// Wire bundles the stores, clients and use cases for the CLI.
type Wire struct {
	Config  types.Config
	Logger  *zap.Logger
	Console types.ConsoleInterface

	Tokens       repository.TokenRepository
	API          *api.Client
	Orchestrator *audit.Orchestrator

	Auth       *usecase.AuthUseCase
	Deals      *usecase.DealsUseCase
	Monitor    *usecase.MonitorUseCase
	Audit      *usecase.AuditUseCase
	Compliance *usecase.ComplianceUseCase
	Workspace  *usecase.WorkspaceUseCase
	Contact    *usecase.ContactUseCase
	Analyze    *usecase.AnalyzeUseCase
	Discovery  *usecase.DiscoveryUseCase
}

// NewWire constructs the dependency graph from a resolved config.
func NewWire(cfg types.Config, logger *zap.Logger, console types.ConsoleInterface) *Wire {
	if logger == nil {
		logger = zap.NewNop()
	}
	userAgent := "opticini-cli/" + version.Version

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	httpClient := &http.Client{Timeout: timeout}
	analyzeClient := &http.Client{Timeout: max(timeout, minAnalyzeTimeout)}

	// File-based stores
	tokens := filestore.NewTokenStore(cfg.TokenFile)
	auditStore := filestore.NewAuditStateStore(cfg.StateFile)

	client := api.NewClient(cfg.APIBaseURL, httpClient, tokens,
		api.WithLogger(logger.Named("api")),
		api.WithUserAgent(userAgent))
	linkRepo := links.NewRepository(httpClient, userAgent)
	analyzerRepo := analyzer.NewPageSpeedRepository(cfg.PageSpeedURL, cfg.PageSpeedKey, analyzeClient, logger.Named("pagespeed"))
	awsRepo := aws.NewAWSRepository(logger.Named("aws"))

	var uploader repository.UploadRepository
	if cfg.S3Bucket != "" {
		uploader = aws.NewS3Uploader(awsRepo, cfg.AWSProfile)
	}
	exporter := usecase.NewExporter(export.NewExportRepository(), uploader, console, usecase.ExportOptions{
		ReportName: cfg.ReportName,
		ReportType: cfg.ReportType,
		Dir:        cfg.Dir,
		S3Bucket:   cfg.S3Bucket,
		S3Prefix:   cfg.S3Prefix,
	})

	orch := audit.NewOrchestrator(client, auditStore, audit.WithLogger(logger.Named("audit")))

	return &Wire{
		Config:       cfg,
		Logger:       logger,
		Console:      console,
		Tokens:       tokens,
		API:          client,
		Orchestrator: orch,

		Auth:       usecase.NewAuthUseCase(client, tokens, console),
		Deals:      usecase.NewDealsUseCase(client, console, exporter),
		Monitor:    usecase.NewMonitorUseCase(client, linkRepo, console, exporter),
		Audit:      usecase.NewAuditUseCase(orch, console, exporter),
		Compliance: usecase.NewComplianceUseCase(client, console, exporter),
		Workspace: usecase.NewWorkspaceUseCase(client, client, client, auditStore, awsRepo, console, usecase.WorkspaceOptions{
			APIBaseURL: cfg.APIBaseURL,
			TokenFile:  cfg.TokenFile,
			AWSProfile: cfg.AWSProfile,
		}),
		Contact:   usecase.NewContactUseCase(client, console),
		Analyze:   usecase.NewAnalyzeUseCase(analyzerRepo, console, exporter),
		Discovery: usecase.NewDiscoveryUseCase(awsRepo, client, console, exporter),
	}
}
