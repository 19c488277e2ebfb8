package usecase

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

// ExportOptions selects where and how reports are written.
type ExportOptions struct {
	ReportName string
	ReportType []string
	Dir        string
	S3Bucket   string
	S3Prefix   string
}

// Exporter writes report tables in every requested format and optionally
// uploads the files to S3.
type Exporter struct {
	exportRepo repository.ExportRepository
	uploadRepo repository.UploadRepository
	console    types.ConsoleInterface
	opts       ExportOptions
}

// NewExporter creates an exporter. uploadRepo may be nil.
func NewExporter(
	exportRepo repository.ExportRepository,
	uploadRepo repository.UploadRepository,
	console types.ConsoleInterface,
	opts ExportOptions,
) *Exporter {
	return &Exporter{
		exportRepo: exportRepo,
		uploadRepo: uploadRepo,
		console:    console,
		opts:       opts,
	}
}

// Enabled reports whether a report name and at least one type were given.
func (e *Exporter) Enabled() bool {
	return e != nil && e.opts.ReportName != "" && len(e.opts.ReportType) > 0
}

// Export writes table as <report-name>_<section>_<timestamp>.<type> and
// returns the local paths that were written. Failures are reported on the
// console and do not stop the remaining formats.
func (e *Exporter) Export(ctx context.Context, section string, table entity.ExportTable) []string {
	if !e.Enabled() {
		return nil
	}
	base := e.opts.ReportName
	if section != "" {
		base = base + "_" + section
	}

	var written []string
	for _, reportType := range e.opts.ReportType {
		var (
			outPath string
			err     error
		)
		switch strings.ToLower(reportType) {
		case "csv":
			outPath, err = e.exportRepo.ExportToCSV(table, base, e.opts.Dir)
		case "json":
			outPath, err = e.exportRepo.ExportToJSON(table, base, e.opts.Dir)
		case "pdf":
			outPath, err = e.exportRepo.ExportToPDF(table, base, e.opts.Dir)
		default:
			e.console.LogWarning("%s: %s", types.ErrUnsupportedExport, reportType)
			continue
		}
		if err != nil {
			e.console.LogError("Failed to export %s to %s: %s", table.Title, strings.ToUpper(reportType), err)
			continue
		}
		e.console.LogSuccess("Successfully exported %s to %s: %s", table.Title, strings.ToUpper(reportType), outPath)
		written = append(written, outPath)
		e.upload(ctx, outPath)
	}
	return written
}

func (e *Exporter) upload(ctx context.Context, localPath string) {
	if e.opts.S3Bucket == "" || e.uploadRepo == nil {
		return
	}
	key := path.Join(strings.Trim(e.opts.S3Prefix, "/"), filepath.Base(localPath))
	location, err := e.uploadRepo.Upload(ctx, localPath, e.opts.S3Bucket, key)
	if err != nil {
		e.console.LogError("Failed to upload report: %s", err)
		return
	}
	e.console.LogSuccess("Uploaded report to %s", location)
}
