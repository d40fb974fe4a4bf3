package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/user/debugpanel/internal/entity"
)

// Format is a table style.
type Format string

const (
	Simple   Format = "simple"
	Plain    Format = "plain"
	Grid     Format = "grid"
	Rounded  Format = "rounded"
	ASCII    Format = "ascii"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
	YAML     Format = "yaml"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{Simple, Plain, Grid, Rounded, ASCII, Markdown, CSV, JSON, YAML}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return "", entity.Configurationf("unknown table format %q: expected one of %s", s, strings.Join(names, ", "))
}

// Render writes the table to w in format f.
func (t *Table) Render(w io.Writer, f Format) error {
	switch f {
	case CSV:
		return t.renderCSV(w)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t.document())
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t.document()); err != nil {
			return err
		}
		return enc.Close()
	case Simple, Plain, Grid, Rounded, ASCII, Markdown:
		_, err := fmt.Fprintln(w, t.textTable(f).String())
		return err
	default:
		return fmt.Errorf("unsupported table format %q", f)
	}
}

func (t *Table) textTable(f Format) *table.Table {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	tbl := table.New().
		Headers(t.Headers()...).
		Rows(t.Rows()...).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })

	switch f {
	case Simple, Plain:
		tbl.Border(lipgloss.NormalBorder()).
			BorderTop(false).BorderBottom(false).BorderLeft(false).BorderRight(false).
			BorderColumn(false).BorderRow(false).BorderHeader(f == Simple)
	case Grid:
		tbl.Border(lipgloss.NormalBorder()).BorderRow(true)
	case Rounded:
		tbl.Border(lipgloss.RoundedBorder())
	case ASCII:
		tbl.Border(lipgloss.ASCIIBorder())
	case Markdown:
		tbl.Border(lipgloss.MarkdownBorder()).BorderTop(false).BorderBottom(false)
	}
	return tbl
}

func (t *Table) renderCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers()); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		return err
	}
	return cw.Error()
}

type document struct {
	Operation string           `json:"operation" yaml:"operation"`
	Action    string           `json:"action" yaml:"action"`
	Nodes     []string         `json:"nodes" yaml:"nodes"`
	AUIDs     []string         `json:"auids,omitempty" yaml:"auids,omitempty"`
	Results   []documentResult `json:"results" yaml:"results"`
}

type documentResult struct {
	Node       string `json:"node" yaml:"node"`
	AUID       string `json:"auid,omitempty" yaml:"auid,omitempty"`
	Result     string `json:"result" yaml:"result"`
	Kind       string `json:"kind" yaml:"kind"`
	StatusCode int    `json:"status_code,omitempty" yaml:"status_code,omitempty"`
}

func (t *Table) document() document {
	doc := document{
		Operation: t.operation.Name,
		Action:    t.operation.Action,
		Nodes:     t.nodes,
		AUIDs:     t.auids,
	}
	for _, c := range t.Cells() {
		kind := string(c.Outcome.Kind)
		if c.Missing {
			kind = "missing"
		}
		doc.Results = append(doc.Results, documentResult{
			Node:       c.Key.Node,
			AUID:       c.Key.AUID,
			Result:     c.Text(),
			Kind:       kind,
			StatusCode: c.Outcome.StatusCode,
		})
	}
	return doc
}
