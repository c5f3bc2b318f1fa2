package flashcards

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

// SessionLog records completed review sessions in a JSON file.
type SessionLog struct {
	path string

	mu       sync.Mutex
	sessions []models.ReviewSession
	current  *models.ReviewSession
}

// NewSessionLog loads prior sessions from path, starting empty when absent.
func NewSessionLog(path string) (*SessionLog, error) {
	l := &SessionLog{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("read session log: %w", err)
	}
	if err := json.Unmarshal(data, &l.sessions); err != nil {
		return nil, fmt.Errorf("parse session log %s: %w", path, err)
	}
	return l, nil
}

// Start opens a new session for the deck. An unfinished previous session is
// discarded.
func (l *SessionLog) Start(deck string, now time.Time) *models.ReviewSession {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = &models.ReviewSession{
		SessionID: uuid.NewString(),
		DeckName:  deck,
		StartTime: now.Format(time.RFC3339),
	}
	return l.current
}

// Record counts one reviewed card in the current session. Quality 3 and
// above counts as correct.
func (l *SessionLog) Record(quality int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return
	}
	l.current.CardsReviewed++
	if quality >= 3 {
		l.current.CardsCorrect++
	} else {
		l.current.CardsWrong++
	}
}

// Finish closes the current session and persists the log.
func (l *SessionLog) Finish(now time.Time) (*models.ReviewSession, error) {
	l.mu.Lock()
	if l.current == nil {
		l.mu.Unlock()
		return nil, nil
	}
	l.current.EndTime = now.Format(time.RFC3339)
	done := l.current
	l.sessions = append(l.sessions, *done)
	l.current = nil

	data, err := json.MarshalIndent(l.sessions, "", "  ")
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("marshal sessions: %w", err)
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create session log dir: %w", err)
		}
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("write session log: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return nil, fmt.Errorf("replace session log: %w", err)
	}
	return done, nil
}

// Sessions returns all completed sessions.
func (l *SessionLog) Sessions() []models.ReviewSession {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.ReviewSession, len(l.sessions))
	copy(out, l.sessions)
	return out
}
