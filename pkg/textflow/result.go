package textflow

// Status is the outcome of one extraction call.
type Status int

// Extraction statuses.
const (
	// StatusIgnored means the input was blank and nothing was attempted.
	StatusIgnored Status = iota
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusIgnored:
		return "ignored"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Source names the strategy that produced a successful result.
type Source string

// Result sources.
const (
	SourceService       Source = "service"
	SourceResponseSplit Source = "response_split"
	SourceInputSplit    Source = "input_split"
)

// State is a pipeline state.
type State string

// Pipeline states.
const (
	StateIdle          State = "idle"
	StateNoCredential  State = "no_credential"
	StateRequesting    State = "requesting"
	StateParsing       State = "parsing"
	StateDegradedSplit State = "degraded_split"
)

// Result is the tagged outcome of Pipeline.Extract. Build it with
// Succeeded, Failed or Ignored.
type Result struct {
	Status Status
	// Nodes is non-empty iff Status is StatusSuccess.
	Nodes  NodeSequence
	Source Source
	// Err is set iff Status is StatusFailure.
	Err error

	// Path lists the states visited, starting with StateIdle.
	Path      []State
	RequestID string
}

// Succeeded returns a success result. It returns a failure carrying
// ErrEmptyResult when nodes is empty.
func Succeeded(nodes NodeSequence, source Source) Result {
	if len(nodes) == 0 {
		return Failed(ErrEmptyResult)
	}
	return Result{Status: StatusSuccess, Nodes: nodes, Source: source}
}

// Failed returns a failure result.
func Failed(err error) Result {
	return Result{Status: StatusFailure, Err: err}
}

// Ignored returns the result for blank input.
func Ignored() Result {
	return Result{Status: StatusIgnored}
}

// Text returns the rendered nodes for a success and "" otherwise.
func (r Result) Text() string {
	if r.Status != StatusSuccess {
		return ""
	}
	return r.Nodes.Render()
}
