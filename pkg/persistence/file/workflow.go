package file

import (
	"context"
	"os"
	"sort"

	"github.com/adviso/adviso/pkg/models"
	"github.com/adviso/adviso/pkg/persistence"
)

// WorkflowRepository stores one document per workflow.
type WorkflowRepository struct {
	store *store
}

func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{store: newStore(root, "workflows")}
}

func (wr *WorkflowRepository) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	wr.store.mu.Lock()
	defer wr.store.mu.Unlock()

	ids, err := wr.store.ids()
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		var workflow models.Workflow
		if err := wr.store.read(id, &workflow); err != nil {
			return nil, err
		}

		workflows = append(workflows, &workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (wr *WorkflowRepository) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	wr.store.mu.Lock()
	defer wr.store.mu.Unlock()

	return wr.store.write(workflow.ID, workflow)
}

func (wr *WorkflowRepository) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	wr.store.mu.Lock()
	defer wr.store.mu.Unlock()

	var workflow models.Workflow

	err := wr.store.read(id, &workflow)
	if os.IsNotExist(err) {
		return nil, persistence.ErrWorkflowNotFound
	}

	if err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) DeleteWorkflow(_ context.Context, id string) error {
	wr.store.mu.Lock()
	defer wr.store.mu.Unlock()

	err := wr.store.remove(id)
	if os.IsNotExist(err) {
		return persistence.ErrWorkflowNotFound
	}

	return err
}
