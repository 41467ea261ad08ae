package file

import (
	"context"
	"os"

	"github.com/adviso/adviso/pkg/models"
)

// WorkflowLogRepository stores the run history of each workflow as one
// document holding entries in append order. Deleting a workflow does not
// delete its history; log entries outlive configuration changes.
type WorkflowLogRepository struct {
	store *store
}

func NewWorkflowLogRepository(root string) *WorkflowLogRepository {
	return &WorkflowLogRepository{store: newStore(root, "workflow_logs")}
}

func (lr *WorkflowLogRepository) AppendLogEntry(_ context.Context, entry *models.WorkflowLogEntry) error {
	lr.store.mu.Lock()
	defer lr.store.mu.Unlock()

	var entries []*models.WorkflowLogEntry

	err := lr.store.read(entry.WorkflowID, &entries)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	entries = append(entries, entry)

	return lr.store.write(entry.WorkflowID, entries)
}

// LogEntries returns the run history newest-first. A workflow without
// history yields an empty slice, not an error.
func (lr *WorkflowLogRepository) LogEntries(_ context.Context, workflowID string) ([]*models.WorkflowLogEntry, error) {
	lr.store.mu.Lock()
	defer lr.store.mu.Unlock()

	var entries []*models.WorkflowLogEntry

	err := lr.store.read(workflowID, &entries)
	if os.IsNotExist(err) {
		return []*models.WorkflowLogEntry{}, nil
	}

	if err != nil {
		return nil, err
	}

	reversed := make([]*models.WorkflowLogEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		reversed = append(reversed, entries[i])
	}

	return reversed, nil
}
