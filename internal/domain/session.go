package domain

// Phase is the lifecycle position of a test session.
// Phases are ordered and a session never moves backwards.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseRunning:
		return "running"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Session is the aggregate state of one test run.
//
// Sessions derived from one another share their classified set and failure log; each
// session sees only its own prefix of both. A chain of sessions must be advanced by one
// goroutine at a time.
type Session struct {
	Phase        Phase
	TotalTests   int
	PassedCount  int
	Failures     []FailureRecord
	BackendLabel string

	// classified maps a spec key to the order it was classified in
	classified  map[string]int
	classifiedN int
	failureLog  *[]FailureRecord
}

// Classified reports whether key already produced a pass or a failure
func (s Session) Classified(key string) bool {
	i, ok := s.classified[key]
	return ok && i < s.classifiedN
}

// WithClassified returns s with key marked as classified. The receiver still reports
// key as unclassified.
func (s Session) WithClassified(key string) Session {
	if s.Classified(key) {
		return s
	}
	if s.classified == nil || len(s.classified) != s.classifiedN {
		// s is not the newest session of its chain: take a private copy of its prefix.
		set := make(map[string]int, s.classifiedN+1)
		for k, i := range s.classified {
			if i < s.classifiedN {
				set[k] = i
			}
		}
		s.classified = set
	}
	s.classified[key] = s.classifiedN
	s.classifiedN++
	return s
}

// WithFailure returns s with r appended to Failures. Records are shared with later
// sessions and must not be modified.
func (s Session) WithFailure(r FailureRecord) Session {
	n := len(s.Failures)
	if !s.failureTip() {
		log := make([]FailureRecord, n, n+1)
		copy(log, s.Failures)
		s.failureLog = &log
	}
	*s.failureLog = append(*s.failureLog, r)
	// Capped so appending to Failures never writes into the shared log.
	s.Failures = (*s.failureLog)[: n+1 : n+1]
	return s
}

// failureTip reports whether Failures is the whole of the shared log
func (s Session) failureTip() bool {
	if s.failureLog == nil {
		return false
	}
	log := *s.failureLog
	n := len(s.Failures)
	if len(log) != n {
		return false
	}
	return n == 0 || &log[n-1] == &s.Failures[n-1]
}

// Completed returns the number of tests that produced a terminal record
func (s Session) Completed() int {
	return s.PassedCount + len(s.Failures)
}

// MarshalText renders the phase by name in JSON reports
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
