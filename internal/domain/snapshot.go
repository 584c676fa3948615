package domain

// Snapshot is a read-only copy of a session for presentation
type Snapshot struct {
	SessionID     string          `json:"session_id"`
	BackendName   string          `json:"backend_name,omitempty"`
	Phase         Phase           `json:"phase"`
	TestsStarted  bool            `json:"tests_started"`
	TestsComplete bool            `json:"tests_complete"`
	TotalTests    int             `json:"total_tests"`
	PassedTests   int             `json:"passed_tests"`
	FailedTests   []FailureRecord `json:"failed_tests"`
	SetupError    string          `json:"setup_error,omitempty"`
}

// NewSnapshot builds a Snapshot of s. FailedTests shares the session's write-once
// records; use Clone for a copy that can be modified.
func NewSnapshot(id string, s Session, setupErr error) Snapshot {
	failed := s.Failures[:len(s.Failures):len(s.Failures)]
	if failed == nil {
		failed = []FailureRecord{}
	}
	snap := Snapshot{
		SessionID:     id,
		BackendName:   s.BackendLabel,
		Phase:         s.Phase,
		TestsStarted:  s.Phase >= PhaseRunning,
		TestsComplete: s.Phase == PhaseComplete,
		TotalTests:    s.TotalTests,
		PassedTests:   s.PassedCount,
		FailedTests:   failed,
	}
	if setupErr != nil {
		snap.SetupError = setupErr.Error()
	}
	return snap
}

// Clone returns a copy of snap that shares no memory with it
func (snap Snapshot) Clone() Snapshot {
	out := snap
	out.FailedTests = make([]FailureRecord, len(snap.FailedTests))
	for i, f := range snap.FailedTests {
		out.FailedTests[i] = f.Clone()
	}
	return out
}
