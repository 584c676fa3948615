package domain

// Expectation is one failed assertion within a test
type Expectation struct {
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

// FailureRecord represents a failed test case
type FailureRecord struct {
	SuiteName    string        `json:"suite_name,omitempty"`
	TestName     string        `json:"test_name"`
	Expectations []Expectation `json:"expectations"`
}

// Clone returns a copy of the record that shares no memory with r
func (r FailureRecord) Clone() FailureRecord {
	out := r
	out.Expectations = make([]Expectation, len(r.Expectations))
	copy(out.Expectations, r.Expectations)
	return out
}
