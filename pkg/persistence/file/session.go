package file

import (
	"context"
	"os"
	"sort"

	"github.com/adviso/adviso/pkg/models"
	"github.com/adviso/adviso/pkg/persistence"
)

// sessionDocument is the on-disk shape of a session: the session metadata
// plus its transcript in append order.
type sessionDocument struct {
	Session  models.Session    `json:"session"`
	Messages []*models.Message `json:"messages"`
}

// SessionRepository stores one document per session containing the session
// and its transcript.
type SessionRepository struct {
	store *store
}

func NewSessionRepository(root string) *SessionRepository {
	return &SessionRepository{store: newStore(root, "sessions")}
}

func (sr *SessionRepository) SaveSession(_ context.Context, session *models.Session) error {
	sr.store.mu.Lock()
	defer sr.store.mu.Unlock()

	var doc sessionDocument

	err := sr.store.read(session.ID, &doc)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	doc.Session = *session

	if doc.Messages == nil {
		doc.Messages = []*models.Message{}
	}

	return sr.store.write(session.ID, doc)
}

func (sr *SessionRepository) SessionByID(_ context.Context, id string) (*models.Session, error) {
	sr.store.mu.Lock()
	defer sr.store.mu.Unlock()

	doc, err := sr.readDocument(id)
	if err != nil {
		return nil, err
	}

	session := doc.Session

	return &session, nil
}

func (sr *SessionRepository) AppendMessage(_ context.Context, message *models.Message) error {
	sr.store.mu.Lock()
	defer sr.store.mu.Unlock()

	doc, err := sr.readDocument(message.SessionID)
	if err != nil {
		return err
	}

	doc.Messages = append(doc.Messages, message)

	return sr.store.write(message.SessionID, doc)
}

func (sr *SessionRepository) Messages(_ context.Context, sessionID string) ([]*models.Message, error) {
	sr.store.mu.Lock()
	defer sr.store.mu.Unlock()

	doc, err := sr.readDocument(sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]*models.Message, len(doc.Messages))
	copy(messages, doc.Messages)

	// Append order already breaks CreatedAt ties; SliceStable keeps it that way.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return messages, nil
}

func (sr *SessionRepository) readDocument(id string) (*sessionDocument, error) {
	var doc sessionDocument

	err := sr.store.read(id, &doc)
	if os.IsNotExist(err) {
		return nil, persistence.ErrSessionNotFound
	}

	if err != nil {
		return nil, err
	}

	return &doc, nil
}
