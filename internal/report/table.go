// Package report collects job outcomes and renders them in the order of
// the input lists, whatever order the jobs completed in.
package report

import (
	"github.com/user/debugpanel/internal/entity"
)

// MissingText marks a cell whose job never reported.
const MissingText = "(no result)"

// Table is the outcome matrix of one run.
type Table struct {
	operation entity.Operation
	nodes     []string
	auids     []string
	outcomes  map[entity.Key]entity.Outcome
}

// NewTable freezes copies of the node and AUID lists. auids is ignored for
// node-scoped operations.
func NewTable(op entity.Operation, nodes, auids []string) *Table {
	t := &Table{
		operation: op,
		nodes:     append([]string(nil), nodes...),
		outcomes:  make(map[entity.Key]entity.Outcome),
	}
	if op.Scope == entity.UnitScope {
		t.auids = append([]string(nil), auids...)
	}
	return t
}

// Record stores the outcome of one job.
func (t *Table) Record(key entity.Key, outcome entity.Outcome) {
	t.outcomes[key] = outcome
}

// Outcome returns the recorded outcome for key.
func (t *Table) Outcome(key entity.Key) (entity.Outcome, bool) {
	o, ok := t.outcomes[key]
	return o, ok
}

// Operation returns the operation the table reports on.
func (t *Table) Operation() entity.Operation {
	return t.operation
}

// Recorded returns the number of outcomes recorded.
func (t *Table) Recorded() int {
	return len(t.outcomes)
}

// Cell is one (node, AUID) position of the report.
type Cell struct {
	Key     entity.Key
	Outcome entity.Outcome
	Missing bool
}

// Text is what the cell reads.
func (c Cell) Text() string {
	if c.Missing {
		return MissingText
	}
	return c.Outcome.Text()
}

// Cells walks the report in row order: by node for node-scoped operations,
// by AUID then node for AUID-scoped ones.
func (t *Table) Cells() []Cell {
	nodeSeqs := entity.Occurrences(t.nodes)
	cell := func(key entity.Key) Cell {
		o, ok := t.outcomes[key]
		return Cell{Key: key, Outcome: o, Missing: !ok}
	}

	if t.operation.Scope == entity.NodeScope {
		cells := make([]Cell, 0, len(t.nodes))
		for i, node := range t.nodes {
			cells = append(cells, cell(entity.Key{Node: node, NodeSeq: nodeSeqs[i]}))
		}
		return cells
	}

	auidSeqs := entity.Occurrences(t.auids)
	cells := make([]Cell, 0, len(t.nodes)*len(t.auids))
	for j, auid := range t.auids {
		for i, node := range t.nodes {
			cells = append(cells, cell(entity.Key{Node: node, AUID: auid, NodeSeq: nodeSeqs[i], AUIDSeq: auidSeqs[j]}))
		}
	}
	return cells
}

// Failures counts the cells that are not a success, missing ones included.
func (t *Table) Failures() int {
	n := 0
	for _, c := range t.Cells() {
		if c.Missing || !c.Outcome.OK() {
			n++
		}
	}
	return n
}

// Headers returns the column titles.
func (t *Table) Headers() []string {
	if t.operation.Scope == entity.NodeScope {
		return []string{"Node", "Result"}
	}
	return append([]string{"AUID"}, t.nodes...)
}

// Rows returns the text grid under Headers.
func (t *Table) Rows() [][]string {
	cells := t.Cells()
	if t.operation.Scope == entity.NodeScope {
		rows := make([][]string, 0, len(cells))
		for _, c := range cells {
			rows = append(rows, []string{c.Key.Node, c.Text()})
		}
		return rows
	}

	width := len(t.nodes)
	rows := make([][]string, 0, len(t.auids))
	for j, auid := range t.auids {
		row := make([]string, 0, width+1)
		row = append(row, auid)
		for _, c := range cells[j*width : (j+1)*width] {
			row = append(row, c.Text())
		}
		rows = append(rows, row)
	}
	return rows
}
