package domain

type WorkflowState string

const (
	StateIdle    WorkflowState = "idle"
	StateBusy    WorkflowState = "busy"
	StateErrored WorkflowState = "errored"
	StateReady   WorkflowState = "ready"
)

// Snapshot is a point-in-time copy of the workflow. Derived views are computed
// from Clauses on each call.
type Snapshot struct {
	State       WorkflowState  `json:"state"`
	BusyKind    SubmissionKind `json:"busyKind,omitempty"`
	Generation  uint64         `json:"generation"`
	DocumentID  ID             `json:"documentId,omitempty"`
	Filename    string         `json:"filename,omitempty"`
	Clauses     []Clause       `json:"clauses"`
	ClausesSet  bool           `json:"-"`
	Reported    *DocumentStats `json:"-"`
	GlobalStats *GlobalStats   `json:"globalStats,omitempty"`
	Error       string         `json:"error,omitempty"`
	Status      string         `json:"status,omitempty"`
}

func (s Snapshot) HasDocument() bool { return !s.DocumentID.IsZero() }

// DocumentStats prefers counts derived from the loaded clause list and falls
// back to the counts reported with the submission when the list is missing.
func (s Snapshot) DocumentStats() *DocumentStats {
	if s.ClausesSet {
		stats := ComputeDocumentStats(s.Clauses)
		return &stats
	}
	if s.Reported != nil {
		stats := *s.Reported
		return &stats
	}
	return nil
}

func (s Snapshot) HighRiskClauses() []Clause {
	return HighRiskClauses(s.Clauses)
}

func (s Snapshot) Bands() BandCounts {
	return CountBands(s.Clauses)
}
