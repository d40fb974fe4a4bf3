package entity

// Key identifies one job. NodeSeq and AUIDSeq count earlier appearances of
// the same node or AUID in the input lists, so repeated targets stay
// distinct jobs with distinct outcomes.
type Key struct {
	Node    string `json:"node"`
	AUID    string `json:"auid,omitempty"`
	NodeSeq int    `json:"node_seq,omitempty"`
	AUIDSeq int    `json:"auid_seq,omitempty"`
}

// Job carries everything needed to build and send one request. It holds
// only plain values so it can be handed to a worker process as JSON.
type Job struct {
	Key         Key         `json:"key"`
	Scope       Scope       `json:"scope"`
	Operation   string      `json:"operation"`
	Action      string      `json:"action"`
	Params      []Param     `json:"params,omitempty"`
	Credentials Credentials `json:"credentials"`
}

// Occurrences returns, for each element of list, how many times the same
// value appeared before it.
func Occurrences(list []string) []int {
	seen := make(map[string]int, len(list))
	seqs := make([]int, len(list))
	for i, v := range list {
		seqs[i] = seen[v]
		seen[v]++
	}
	return seqs
}

// Plan is the frozen input of one run: the operation, its parameters and
// the node and AUID lists in the order they were given.
type Plan struct {
	Operation   Operation
	Nodes       []string
	AUIDs       []string
	Depth       int
	Credentials Credentials
}

// Jobs expands the plan into one job per node, or one per (node, AUID)
// pair. AUIDs form the outer loop so that all nodes see the first AUID
// before any sees the second.
func (p Plan) Jobs() []Job {
	nodeSeqs := Occurrences(p.Nodes)
	params := p.Operation.Params(p.Depth)
	newJob := func(key Key) Job {
		return Job{
			Key:         key,
			Scope:       p.Operation.Scope,
			Operation:   p.Operation.Name,
			Action:      p.Operation.Action,
			Params:      params,
			Credentials: p.Credentials,
		}
	}

	if p.Operation.Scope == NodeScope {
		jobs := make([]Job, 0, len(p.Nodes))
		for i, node := range p.Nodes {
			jobs = append(jobs, newJob(Key{Node: node, NodeSeq: nodeSeqs[i]}))
		}
		return jobs
	}

	auidSeqs := Occurrences(p.AUIDs)
	jobs := make([]Job, 0, len(p.Nodes)*len(p.AUIDs))
	for j, auid := range p.AUIDs {
		for i, node := range p.Nodes {
			jobs = append(jobs, newJob(Key{Node: node, AUID: auid, NodeSeq: nodeSeqs[i], AUIDSeq: auidSeqs[j]}))
		}
	}
	return jobs
}
