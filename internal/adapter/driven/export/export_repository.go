package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{now: time.Now}
}

func (r *ExportRepositoryImpl) ExportToCSV(table entity.ExportTable, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(cleanRow(table.Headers)); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, row := range table.Rows {
		if err := writer.Write(cleanRow(row)); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportToJSON writes table.Raw when present, otherwise the rows keyed by header.
func (r *ExportRepositoryImpl) ExportToJSON(table entity.ExportTable, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	var data interface{} = table.Raw
	if data == nil {
		records := make([]map[string]string, 0, len(table.Rows))
		for _, row := range table.Rows {
			record := make(map[string]string, len(table.Headers))
			for i, h := range table.Headers {
				if i < len(row) {
					record[h] = cleanRichTags(row[i])
				}
			}
			records = append(records, record)
		}
		data = map[string]interface{}{
			"title":        table.Title,
			"generated_at": r.now().UTC().Format(time.RFC3339),
			"rows":         records,
		}
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(table entity.ExportTable, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	orientation := "P"
	pageWidth := 190.0
	if len(table.Headers) > 5 {
		orientation = "L"
		pageWidth = 277.0
	}

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	bodyTextColor := [3]int{50, 50, 50}
	stripeColor := [3]int{245, 245, 245}

	generated := r.now().Format("2006-01-02 15:04")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Opticini | %s", generated)), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	widths := columnWidths(table, pageWidth)
	drawHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		for i, h := range table.Headers {
			pdf.CellFormat(widths[i], 8, tr(truncate(pdf, cleanRichTags(h), widths[i])), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.AddPage()

	// Cabeçalho
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  "+cleanRichTags(table.Title)), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	if len(table.Rows) == 0 {
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(pageWidth, 5, tr("No data."), "", "L", false)
	} else {
		drawHeader()
		_, pageHeight := pdf.GetPageSize()
		for n, row := range table.Rows {
			if pdf.GetY() > pageHeight-25 {
				pdf.AddPage()
				drawHeader()
			}
			pdf.SetFont("Arial", "", 9)
			pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
			pdf.SetFillColor(stripeColor[0], stripeColor[1], stripeColor[2])
			for i := range table.Headers {
				cell := ""
				if i < len(row) {
					cell = cleanRichTags(row[i])
				}
				pdf.CellFormat(widths[i], 7, tr(truncate(pdf, cell, widths[i])), "1", 0, "L", n%2 == 1, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// columnWidths distributes the page width proportionally to the longest
// cell of each column, with a floor so short columns stay readable.
func columnWidths(table entity.ExportTable, pageWidth float64) []float64 {
	n := len(table.Headers)
	if n == 0 {
		return nil
	}
	longest := make([]int, n)
	for i, h := range table.Headers {
		longest[i] = len(h)
	}
	for _, row := range table.Rows {
		for i := 0; i < n && i < len(row); i++ {
			if l := len(cleanRichTags(row[i])); l > longest[i] {
				longest[i] = l
			}
		}
	}

	total := 0
	for i := range longest {
		if longest[i] < 6 {
			longest[i] = 6
		}
		if longest[i] > 60 {
			longest[i] = 60
		}
		total += longest[i]
	}
	widths := make([]float64, n)
	for i, l := range longest {
		widths[i] = pageWidth * float64(l) / float64(total)
	}
	return widths
}

func truncate(pdf *gofpdf.Fpdf, text string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func (r *ExportRepositoryImpl) generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := r.now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}

func cleanRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = cleanRichTags(cell)
	}
	return out
}
