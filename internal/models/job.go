package models

// JobStatus represents a job's position in the download pipeline.
type JobStatus int

const (
	StatusPending JobStatus = iota
	StatusResolving
	StatusConverting
	StatusEmbedding
	StatusDone
	StatusFailed
)

func (s JobStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusResolving:
		return "resolving"
	case StatusConverting:
		return "converting"
	case StatusEmbedding:
		return "embedding"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the status is Done or Failed.
func (s JobStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// ValidTransition enforces the allowed job state machine edges.
//
// Failed is reachable from any non-terminal state. Embedding is optional:
// Converting may move straight to Done when tagging was not requested.
func ValidTransition(from, to JobStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusResolving
	case StatusResolving:
		return to == StatusConverting
	case StatusConverting:
		return to == StatusEmbedding || to == StatusDone
	case StatusEmbedding:
		return to == StatusDone
	default:
		return false
	}
}

// ErrorKind classifies terminal job failures for reporting and retry decisions.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorInvalidRow
	ErrorResolveFailed
	ErrorConvertFailed
	ErrorEmbedFailed
	ErrorCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return ""
	case ErrorInvalidRow:
		return "invalid_row"
	case ErrorResolveFailed:
		return "resolve_failed"
	case ErrorConvertFailed:
		return "convert_failed"
	case ErrorEmbedFailed:
		return "embed_failed"
	case ErrorCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Job is the end-to-end pipeline instance for one track.
//
// A Job is created at dispatch time, owned exclusively by the worker
// executing it, and discarded once its terminal status has been reported.
type Job struct {
	ID         string
	Track      Track
	Index      int // position in CSV order
	Status     JobStatus
	OutputPath string // set if and only if Status is StatusDone
	Warning    string // non-fatal issue on a Done job (e.g. embed failure)
	Err        error
	ErrorKind  ErrorKind
}

// Transition moves the job to the given status, panicking on an edge the
// state machine forbids. Pipeline code controls every call site, so a bad
// edge is a programming error rather than a runtime condition.
func (j *Job) Transition(to JobStatus) {
	if !ValidTransition(j.Status, to) {
		panic("invalid job transition: " + j.Status.String() + " -> " + to.String())
	}
	j.Status = to
}

// Fail marks the job failed with the given classification.
func (j *Job) Fail(kind ErrorKind, err error) {
	j.Transition(StatusFailed)
	j.ErrorKind = kind
	j.Err = err
}
