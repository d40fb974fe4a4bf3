package entity

import (
	"sort"
	"strconv"
)

// Scope tells whether an operation applies once per node or once per
// (node, AUID) pair.
type Scope int

const (
	NodeScope Scope = iota
	UnitScope
)

func (s Scope) String() string {
	if s == UnitScope {
		return "auid"
	}
	return "node"
}

// DefaultDepth is the deep-crawl depth used when none is given.
const DefaultDepth = 123

// Operation describes one DebugPanel action.
type Operation struct {
	Name        string
	Alias       string
	Scope       Scope
	Action      string
	Description string
	// TakesDepth is set only for deep-crawl.
	TakesDepth bool
}

// Param is one extra query parameter. Order is preserved on the wire.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Params returns the extra query parameters for the operation.
func (o Operation) Params(depth int) []Param {
	if !o.TakesDepth {
		return nil
	}
	return []Param{{Key: "depth", Value: strconv.Itoa(depth)}}
}

var operations = map[string]Operation{
	"reload-config": {
		Name: "reload-config", Alias: "rc", Scope: NodeScope,
		Action: "Reload Config", Description: "Cause nodes to reload their configuration.",
	},
	"crawl-plugins": {
		Name: "crawl-plugins", Alias: "cp", Scope: NodeScope,
		Action: "Crawl Plugins", Description: "Cause nodes to crawl plugins.",
	},
	"crawl": {
		Name: "crawl", Alias: "cr", Scope: UnitScope,
		Action: "Force Start Crawl", Description: "Cause nodes to crawl AUs.",
	},
	"deep-crawl": {
		Name: "deep-crawl", Alias: "dc", Scope: UnitScope, TakesDepth: true,
		Action: "Force Deep Crawl", Description: "Cause nodes to deep-crawl AUs.",
	},
	"poll": {
		Name: "poll", Alias: "po", Scope: UnitScope,
		Action: "Start V3 Poll", Description: "Cause nodes to poll AUs.",
	},
	"reindex-metadata": {
		Name: "reindex-metadata", Alias: "ri", Scope: UnitScope,
		Action: "Force Reindex Metadata", Description: "Cause nodes to reindex the metadata of AUs.",
	},
	"check-substance": {
		Name: "check-substance", Alias: "cs", Scope: UnitScope,
		Action: "Check Substance", Description: "Cause nodes to check the substance of AUs.",
	},
	"disable-indexing": {
		Name: "disable-indexing", Alias: "di", Scope: UnitScope,
		Action: "Disable Indexing", Description: "Cause nodes to disable metadata indexing for AUs.",
	},
	"validate-files": {
		Name: "validate-files", Alias: "vf", Scope: UnitScope,
		Action: "Validate Files", Description: "Cause nodes to validate the files of AUs.",
	},
}

// LookupOperation finds an operation by name or alias.
func LookupOperation(name string) (Operation, bool) {
	if op, ok := operations[name]; ok {
		return op, true
	}
	for _, op := range operations {
		if op.Alias == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Operations returns every operation, node-scoped first, then by name.
func Operations() []Operation {
	ops := make([]Operation, 0, len(operations))
	for _, op := range operations {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Scope != ops[j].Scope {
			return ops[i].Scope < ops[j].Scope
		}
		return ops[i].Name < ops[j].Name
	})
	return ops
}

// SelectOperation enforces that exactly one operation name was selected.
func SelectOperation(selected ...string) (Operation, error) {
	switch len(selected) {
	case 0:
		return Operation{}, Configurationf("exactly one operation is required, got none")
	case 1:
	default:
		return Operation{}, Configurationf("exactly one operation is required, got %d: %v", len(selected), selected)
	}
	op, ok := LookupOperation(selected[0])
	if !ok {
		return Operation{}, Configurationf("unknown operation %q", selected[0])
	}
	return op, nil
}

// OperationForAction finds the operation whose wire action string is action.
func OperationForAction(action string) (Operation, bool) {
	for _, op := range operations {
		if op.Action == action {
			return op, true
		}
	}
	return Operation{}, false
}
