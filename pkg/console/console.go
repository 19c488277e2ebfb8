package console

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/opticini/opticini-cli/internal/shared/types"
)

const barWidth = 40

// Console é a implementação pterm do ConsoleInterface.
type Console struct {
	out io.Writer
}

// NewConsole cria um Console que escreve em stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWithWriter cria um Console que escreve em w.
func NewConsoleWithWriter(w io.Writer) *Console {
	return &Console{out: w}
}

func (c *Console) Print(a ...interface{}) {
	fmt.Fprint(c.out, a...)
}

func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

// LogInfo registra uma mensagem de informação.
func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.WithWriter(c.out).Printfln(format, a...)
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.WithWriter(c.out).Printfln(format, a...)
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.WithWriter(c.out).Printfln(format, a...)
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.WithWriter(c.out).Printfln(format, a...)
}

// Cores predefinidas para uso consistente
var (
	BrightMagenta = color.New(color.FgMagenta, color.Bold).SprintFunc()
	BoldRed       = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen   = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow  = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightCyan    = color.New(color.FgCyan, color.Bold).SprintFunc()
)

type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status mostra um spinner até Stop ser chamado.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.WithWriter(c.out).WithRemoveWhenDone(true).Start(message)
	return &statusHandle{spinner: spinner}
}

func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

type progressHandle struct {
	bar *pterm.ProgressbarPrinter
}

// ProgressWithTotal cria uma barra de progresso com total passos.
func (c *Console) ProgressWithTotal(total int) types.ProgressHandle {
	bar, _ := pterm.DefaultProgressbar.
		WithWriter(c.out).
		WithTotal(total).
		WithShowElapsedTime(true).
		WithShowCount(true).
		Start()
	return &progressHandle{bar: bar}
}

func (h *progressHandle) Increment() {
	if h.bar != nil {
		h.bar.Increment()
	}
}

func (h *progressHandle) Stop() {
	if h.bar != nil {
		_, _ = h.bar.Stop()
	}
}

// Table acumula colunas e linhas e renderiza com pterm.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, _ ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha; células faltando ficam vazias.
func (t *Table) AddRow(cells ...interface{}) {
	row := make([]string, len(t.columns))
	for i, cell := range cells {
		if i >= len(row) {
			row = append(row, fmt.Sprint(cell))
			continue
		}
		row[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, row)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	tableData = append(tableData, t.rows...)

	rendered, _ := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData).
		Srender()
	return rendered + "\n"
}

// DisplayBars exibe um gráfico de barras horizontal dentro de um painel.
func (c *Console) DisplayBars(title string, bars []types.Bar) {
	if len(bars) == 0 {
		return
	}
	fmt.Fprintln(c.out, "\n"+pterm.DefaultBox.
		WithTitle(title).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).
		Sprint(RenderBars(bars)))
}

// DisplayPanel exibe um texto dentro de um painel com título.
func (c *Console) DisplayPanel(title string, body string) {
	fmt.Fprintln(c.out, pterm.DefaultBox.
		WithTitle(pterm.Bold.Sprint(title)).
		WithBoxStyle(pterm.NewStyle(pterm.FgLightBlue)).
		Sprint(body))
}

// RenderBars desenha uma linha por barra. Sem Max, a escala é o maior valor.
func RenderBars(bars []types.Bar) string {
	scale := 0.0
	labelWidth := 0
	for _, b := range bars {
		scale = math.Max(scale, math.Max(b.Max, b.Value))
		labelWidth = max(labelWidth, len(b.Label))
	}

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		limit := b.Max
		if limit <= 0 {
			limit = scale
		}
		length := 0
		if limit > 0 && b.Value > 0 {
			length = int(math.Round(math.Min(b.Value/limit, 1) * barWidth))
		}
		bar := strings.Repeat("█", length) + strings.Repeat("░", barWidth-length)
		lines = append(lines, fmt.Sprintf("%-*s %s %s", labelWidth, b.Label, barColor(b, limit).Sprint(bar), formatValue(b)))
	}
	return strings.Join(lines, "\n")
}

// barColor pinta barras com Max fixo (percentuais, scores) pelo nível atingido.
func barColor(b types.Bar, limit float64) pterm.Color {
	if b.Max <= 0 || limit <= 0 {
		return pterm.FgBlue
	}
	ratio := b.Value / limit
	switch {
	case ratio >= 0.9:
		return pterm.FgGreen
	case ratio >= 0.5:
		return pterm.FgYellow
	default:
		return pterm.FgRed
	}
}

func formatValue(b types.Bar) string {
	if b.Value == math.Trunc(b.Value) {
		return fmt.Sprintf("%.0f%s", b.Value, b.Suffix)
	}
	return fmt.Sprintf("%.2f%s", b.Value, b.Suffix)
}
