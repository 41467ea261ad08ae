// Package file provides file-based persistence: one JSON document per
// entity under the configured root directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adviso/adviso/pkg/persistence"
)

const dirPerm = 0o755
const filePerm = 0o644

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root         string
	sessionRepo  *SessionRepository
	workflowRepo *WorkflowRepository
	logRepo      *WorkflowLogRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// A "file://" prefix on the root is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		sessionRepo:  NewSessionRepository(cleanRoot),
		workflowRepo: NewWorkflowRepository(cleanRoot),
		logRepo:      NewWorkflowLogRepository(cleanRoot),
	}
}

func (fp *Persistence) SessionRepository() persistence.SessionRepository {
	return fp.sessionRepo
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) WorkflowLogRepository() persistence.WorkflowLogRepository {
	return fp.logRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to release for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// store serializes one JSON document per entity inside a subdirectory of
// the root. A mutex guards read-modify-write cycles; entities here have a
// single writer, so coarse locking is enough.
type store struct {
	dir string
	mu  sync.Mutex
}

func newStore(root, subdir string) *store {
	return &store{dir: filepath.Join(root, subdir)}
}

func (s *store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *store) write(id string, entity any) error {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entity %s: %w", id, err)
	}

	if err := os.WriteFile(s.path(id), data, filePerm); err != nil {
		return fmt.Errorf("failed to write entity %s: %w", id, err)
	}

	return nil
}

// read unmarshals the entity into out; it returns os.ErrNotExist when the
// document is absent.
func (s *store) read(id string, out any) error {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal entity %s: %w", id, err)
	}

	return nil
}

func (s *store) ids() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}

func (s *store) remove(id string) error {
	return os.Remove(s.path(id))
}
