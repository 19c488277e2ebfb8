package entity

// ExportTable is the tabular shape every report is flattened into before it
// is written as CSV, JSON or PDF.
type ExportTable struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Raw is written as-is by the JSON exporter when set.
	Raw interface{}
}
