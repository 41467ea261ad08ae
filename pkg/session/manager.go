// Package session maintains per-session conversation transcripts and the
// turn-taking contract with the AI collaborator.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adviso/adviso/pkg/ai"
	"github.com/adviso/adviso/pkg/models"
	"github.com/adviso/adviso/pkg/persistence"
	"github.com/google/uuid"
)

var (
	// ErrBusy is returned when a send is issued while another send on the
	// same session is still pending. Sends are rejected, never queued, so
	// assistant replies cannot interleave.
	ErrBusy = errors.New("session busy: a send is already pending")

	// ErrSendFailed is returned when the AI collaborator fails. The
	// transcript is left unchanged so the caller can offer a retry.
	ErrSendFailed = errors.New("send failed")

	// ErrEmptyMessage is returned for blank user input.
	ErrEmptyMessage = errors.New("message cannot be empty")
)

// IsBusy checks whether an error chain contains ErrBusy.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsSendFailed checks whether an error chain contains ErrSendFailed.
func IsSendFailed(err error) bool {
	return errors.Is(err, ErrSendFailed)
}

// NewSessionID derives a session token from the domain context and the
// creation time, matching how clients open a thread at first interaction.
func NewSessionID(domain string) string {
	return fmt.Sprintf("%s-%d", domain, time.Now().UnixNano())
}

// Manager owns all transcript writes. One manager per process is the
// single writer for every session it serves; per-session pending flags
// serialize sends without queueing them.
type Manager struct {
	sessions persistence.SessionRepository
	client   ai.Client
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]bool
}

func NewManager(sessions persistence.SessionRepository, client ai.Client, logger *slog.Logger) *Manager {
	return &Manager{
		sessions: sessions,
		client:   client,
		logger:   logger.With("module", "session_manager"),
		pending:  make(map[string]bool),
	}
}

// Send forwards one user message to the AI collaborator and appends both
// sides of the exchange to the transcript, but only after the collaborator
// confirms. A failed invocation leaves the transcript untouched.
func (m *Manager) Send(ctx context.Context, sessionID, domain, text string, contextData map[string]any) (*models.Message, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	if err := m.acquire(sessionID); err != nil {
		return nil, err
	}
	defer m.release(sessionID)

	logger := m.logger.With("session_id", sessionID, "domain", domain)

	if err := m.ensureSession(ctx, sessionID, domain, contextData); err != nil {
		return nil, err
	}

	reply, err := m.client.Invoke(ctx, domain, text, contextData)
	if err != nil {
		logger.ErrorContext(ctx, "AI invocation failed", "error", err)

		return nil, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	now := time.Now().UTC()

	userMessage := &models.Message{
		ID:        newMessageID(),
		SessionID: sessionID,
		Role:      models.MessageRoleUser,
		Content:   text,
		CreatedAt: now,
	}

	assistantMessage := &models.Message{
		ID:        newMessageID(),
		SessionID: sessionID,
		Role:      models.MessageRoleAssistant,
		Content:   reply,
		CreatedAt: now,
	}

	if err := m.sessions.AppendMessage(ctx, userMessage); err != nil {
		return nil, fmt.Errorf("failed to append user message: %w", err)
	}

	if err := m.sessions.AppendMessage(ctx, assistantMessage); err != nil {
		return nil, fmt.Errorf("failed to append assistant message: %w", err)
	}

	logger.InfoContext(ctx, "Exchange appended to transcript",
		"user_message_id", userMessage.ID,
		"assistant_message_id", assistantMessage.ID,
	)

	return assistantMessage, nil
}

// History returns the session transcript ordered by creation time, with
// insertion order breaking ties.
func (m *Manager) History(ctx context.Context, sessionID string) ([]*models.Message, error) {
	return m.sessions.Messages(ctx, sessionID)
}

func (m *Manager) acquire(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending[sessionID] {
		return ErrBusy
	}

	m.pending[sessionID] = true

	return nil
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pending, sessionID)
}

func (m *Manager) ensureSession(ctx context.Context, sessionID, domain string, contextData map[string]any) error {
	_, err := m.sessions.SessionByID(ctx, sessionID)
	if err == nil {
		return nil
	}

	if !persistence.IsSessionNotFound(err) {
		return err
	}

	return m.sessions.SaveSession(ctx, &models.Session{
		ID:          sessionID,
		Domain:      domain,
		ContextData: contextData,
		CreatedAt:   time.Now().UTC(),
	})
}

func newMessageID() string {
	return "msg-" + uuid.New().String()[:8]
}
