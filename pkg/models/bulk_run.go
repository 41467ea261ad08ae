package models

// BulkRunStatus is the aggregate outcome of a bulk run.
type BulkRunStatus string

const (
	BulkRunStatusRunning BulkRunStatus = "running"
	BulkRunStatusFull    BulkRunStatus = "full_success"
	BulkRunStatusPartial BulkRunStatus = "partial_success"
)

// ActionResult records the outcome of one action within a bulk run.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BulkRun tracks one batch execution of selected catalog actions.
// It lives only for the duration of the run's owning view and is never
// persisted. Results carries exactly one entry per selected action id once
// the run completes; ProgressPercent is monotonically non-decreasing and
// ends at exactly 100.
type BulkRun struct {
	ID                string                  `json:"id"`
	Domain            string                  `json:"domain"`
	SelectedActionIDs []string                `json:"selected_action_ids"`
	Results           map[string]ActionResult `json:"results"`
	ProgressPercent   int                     `json:"progress_percent"`
	Status            BulkRunStatus           `json:"status"`
	Narrative         string                  `json:"narrative"`
}

// CompletedCount returns how many selected actions have a recorded result.
func (r *BulkRun) CompletedCount() int {
	return len(r.Results)
}

// SucceededCount returns how many recorded results were successful.
func (r *BulkRun) SucceededCount() int {
	count := 0

	for _, result := range r.Results {
		if result.Success {
			count++
		}
	}

	return count
}
