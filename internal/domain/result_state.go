package domain

// SummaryPhase names the variant held by a ResultState.
type SummaryPhase string

const (
	SummaryPhaseIdle    SummaryPhase = "idle"
	SummaryPhaseLoading SummaryPhase = "loading"
	SummaryPhaseFailed  SummaryPhase = "failed"
	SummaryPhaseReady   SummaryPhase = "ready"
)

// ResultState is the tagged result of the summarization pipeline:
// Idle | Loading | Failed(message) | Ready(result).
//
// Loading and Failed carry the previously rendered result, if any, so a failed
// attempt never clears what the user was already looking at.
type ResultState interface {
	Phase() SummaryPhase
	isResultState()
}

type SummaryIdle struct{}

type SummaryLoading struct {
	Previous *SummaryResult
}

type SummaryFailed struct {
	Message  string
	Previous *SummaryResult
}

type SummaryReady struct {
	Result SummaryResult
}

func (SummaryIdle) Phase() SummaryPhase    { return SummaryPhaseIdle }
func (SummaryLoading) Phase() SummaryPhase { return SummaryPhaseLoading }
func (SummaryFailed) Phase() SummaryPhase  { return SummaryPhaseFailed }
func (SummaryReady) Phase() SummaryPhase   { return SummaryPhaseReady }

func (SummaryIdle) isResultState()    {}
func (SummaryLoading) isResultState() {}
func (SummaryFailed) isResultState()  {}
func (SummaryReady) isResultState()   {}

// VisibleResult returns the result a renderer should show for the state, if any.
func VisibleResult(state ResultState) *SummaryResult {
	switch s := state.(type) {
	case SummaryReady:
		result := s.Result
		return &result
	case SummaryLoading:
		return s.Previous
	case SummaryFailed:
		return s.Previous
	default:
		return nil
	}
}

// ErrorMessage returns the user-facing error for a failed state.
func ErrorMessage(state ResultState) string {
	if failed, ok := state.(SummaryFailed); ok {
		return failed.Message
	}
	return ""
}

// WorkspaceSnapshot is an immutable view of the workspace for rendering.
type WorkspaceSnapshot struct {
	Transcript   string         `json:"transcript"`
	Filename     string         `json:"filename"`
	TitleHint    string         `json:"titleHint"`
	Tab          Tab            `json:"tab"`
	Filter       PriorityFilter `json:"filter"`
	Phase        SummaryPhase   `json:"phase"`
	Error        string         `json:"error,omitempty"`
	Result       *SummaryResult `json:"result,omitempty"`
	ActionItems  []ActionItem   `json:"actionItems"`
	Summarizing  bool           `json:"summarizing"`
	CanSummarize bool           `json:"canSummarize"`
}
