package repository

import (
	"context"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

// ExportRepository writes flattened report tables to disk.
type ExportRepository interface {
	ExportToCSV(table entity.ExportTable, filename string, outputDir string) (string, error)
	ExportToJSON(table entity.ExportTable, filename string, outputDir string) (string, error)
	ExportToPDF(table entity.ExportTable, filename string, outputDir string) (string, error)
}

// UploadRepository copies exported files to object storage.
type UploadRepository interface {
	Upload(ctx context.Context, path, bucket, key string) (string, error)
}
