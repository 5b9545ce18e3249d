package jobs

// Outcome values recorded on an Action.
const (
	OutcomeStaged  = "staged"
	OutcomeDone    = "done"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Action is one per-movie step taken (or planned) by a job.
type Action struct {
	ID      int
	Movie   string
	Detail  string
	Outcome string
}
