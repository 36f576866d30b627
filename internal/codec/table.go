package codec

import (
	"fmt"
	"io"
	"strconv"

	"mswell/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TableCodec renders a segment tree as a human-readable table. It is
// export only.
type TableCodec struct {
	headerStyle lipgloss.Style
	titleStyle  lipgloss.Style
}

// NewTableCodec creates a new table codec
func NewTableCodec() *TableCodec {
	return &TableCodec{
		headerStyle: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		titleStyle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
	}
}

// Format returns the codec format identifier
func (c *TableCodec) Format() string {
	return "table"
}

var tableHeaders = []string{
	"SEG", "BRANCH", "OUTLET", "INLETS", "LENGTH", "DEPTH",
	"DIAMETER", "ROUGHNESS", "AREA", "VOLUME", "TYPE", "DEVICE",
}

// Export writes the tree in top-down order
func (c *TableCodec) Export(tree *domain.Tree, w io.Writer) error {
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tableHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return c.headerStyle
			}
			return cell
		})

	for _, node := range tree.Segments {
		t.Row(tableRow(node)...)
	}

	title := c.titleStyle.Render(fmt.Sprintf("Well %s (%d segments, top %d)", tree.Well, len(tree.Segments), tree.Top))
	if _, err := fmt.Fprintf(w, "%s\n%s\n", title, t.Render()); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func tableRow(node domain.TreeNode) []string {
	return []string{
		strconv.Itoa(node.Number),
		strconv.Itoa(node.Branch),
		optionalInt(node.Outlet),
		inletList(node.Inlets),
		formatFloat(node.TotalLength),
		formatFloat(node.Depth),
		optionalFloat(node.InternalDiameter),
		optionalFloat(node.Roughness),
		optionalFloat(node.CrossArea),
		formatFloat(node.Volume),
		node.Type,
		deviceSummary(node),
	}
}

func deviceSummary(node domain.TreeNode) string {
	switch {
	case node.SpiralICD != nil:
		return fmt.Sprintf("sicd k=%s l=%s %s", formatFloat(node.SpiralICD.Strength), formatFloat(node.SpiralICD.Length), node.SpiralICD.Status)
	case node.Valve != nil:
		return fmt.Sprintf("valve cv=%s a=%s %s", formatFloat(node.Valve.ConFlowCoefficient), formatFloat(node.Valve.ConCrossArea), node.Valve.Status)
	}
	return "-"
}

func inletList(inlets []int) string {
	if len(inlets) == 0 {
		return "-"
	}
	out := ""
	for i, n := range inlets {
		if i > 0 {
			out += ","
		}
		out += strconv.Itoa(n)
	}
	return out
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
