package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticini/opticini-cli/internal/shared/types"
)

func TestRenderBars_ScalesAgainstLargestValue(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	out := RenderBars([]types.Bar{
		{Label: "up", Value: 4},
		{Label: "down", Value: 2},
		{Label: "unknown", Value: 0},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, barWidth, strings.Count(lines[0], "█"))
	assert.Equal(t, barWidth/2, strings.Count(lines[1], "█"))
	assert.Equal(t, 0, strings.Count(lines[2], "█"))
	assert.True(t, strings.HasPrefix(lines[0], "up      "), "labels are padded to the widest")
	assert.True(t, strings.HasSuffix(lines[1], " 2"))
}

func TestRenderBars_FixedMaxAndSuffix(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	out := RenderBars([]types.Bar{{Label: "SOC2", Value: 62.5, Max: 100, Suffix: "%"}})
	assert.Equal(t, 25, strings.Count(out, "█"))
	assert.True(t, strings.HasSuffix(out, "62.50%"))
}

func TestTable_PadsShortRows(t *testing.T) {
	tbl := &Table{}
	tbl.AddColumn("A")
	tbl.AddColumn("B")
	tbl.AddRow("only")

	require.Len(t, tbl.rows, 1)
	assert.Equal(t, []string{"only", ""}, tbl.rows[0])
	assert.Contains(t, tbl.Render(), "only")
}

func TestLogWritesToConfiguredWriter(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	var buf bytes.Buffer
	c := NewConsoleWithWriter(&buf)
	c.LogSuccess("deal %d created", 3)
	c.DisplayPanel("Health", "Up: 2")

	assert.Contains(t, buf.String(), "deal 3 created")
	assert.Contains(t, buf.String(), "Up: 2")
}
