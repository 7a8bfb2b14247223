package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"memeforge/internal/model"
	"memeforge/internal/token"
)

// Step identifies where a launch wizard conversation currently is.
type Step string

const (
	StepName         Step = "waiting_for_name"
	StepSymbol       Step = "waiting_for_symbol"
	StepSupply       Step = "waiting_for_supply"
	StepConfirmation Step = "waiting_for_confirmation"
)

var (
	// ErrNoSession reports input arriving for a chat with no active wizard.
	ErrNoSession = errors.New("no active launch session")
	// ErrNotOwner reports input from a user other than the one who started
	// the wizard; in group chats only the starter drives the dialogue.
	ErrNotOwner = errors.New("launch session belongs to another user")
)

// Wizard holds one chat's progress through the token launch dialogue.
type Wizard struct {
	ChatID    int64
	UserID    int64
	Step      Step
	Draft     model.TokenDraft
	StartedAt time.Time
}

// Store tracks launch wizards keyed by chat id. Each chat has at most one
// wizard; starting a new one replaces any in progress.
type Store struct {
	mu      sync.RWMutex
	wizards map[int64]*Wizard
}

// NewStore builds an empty wizard store.
func NewStore() *Store {
	return &Store{wizards: make(map[int64]*Wizard)}
}

// Start begins a launch wizard for a chat on behalf of a user, discarding
// any prior one.
func (s *Store) Start(chatID, userID int64) *Wizard {
	w := &Wizard{
		ChatID:    chatID,
		UserID:    userID,
		Step:      StepName,
		StartedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.wizards[chatID] = w
	s.mu.Unlock()
	return w
}

// Get returns the active wizard for a chat, if any.
func (s *Store) Get(chatID int64) (*Wizard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wizards[chatID]
	return w, ok
}

// Active reports whether a chat has a wizard in progress.
func (s *Store) Active(chatID int64) bool {
	_, ok := s.Get(chatID)
	return ok
}

// Cancel drops a chat's wizard. It reports whether one existed.
func (s *Store) Cancel(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wizards[chatID]; !ok {
		return false
	}
	delete(s.wizards, chatID)
	return true
}

// Advance feeds one message of user input to a chat's wizard. On valid input
// the wizard moves to the next step; on invalid input it stays put and the
// returned error carries the text to re-prompt with. Input from anyone but
// the starting user is rejected with ErrNotOwner and changes nothing.
// Reaching the confirmation step leaves the completed draft on the wizard
// for the caller to present.
func (s *Store) Advance(chatID, userID int64, input string) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wizards[chatID]
	if !ok {
		return nil, ErrNoSession
	}
	if w.UserID != userID {
		return nil, ErrNotOwner
	}

	switch w.Step {
	case StepName:
		name, err := token.ValidateName(input)
		if err != nil {
			return w, err
		}
		w.Draft.Name = name
		w.Step = StepSymbol
	case StepSymbol:
		symbol, err := token.ValidateSymbol(input)
		if err != nil {
			return w, err
		}
		w.Draft.Symbol = symbol
		w.Step = StepSupply
	case StepSupply:
		supply, err := token.ValidateSupply(input)
		if err != nil {
			return w, err
		}
		w.Draft.Supply = supply
		w.Step = StepConfirmation
	case StepConfirmation:
		// Confirmation happens through callback buttons, not text.
		return w, fmt.Errorf("use the confirm or cancel button to finish")
	default:
		delete(s.wizards, chatID)
		return nil, fmt.Errorf("launch session in unknown step %q", w.Step)
	}
	return w, nil
}

// Complete removes a confirmed wizard and returns its draft. Only the
// starting user may confirm.
func (s *Store) Complete(chatID, userID int64) (model.TokenDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wizards[chatID]
	if !ok {
		return model.TokenDraft{}, ErrNoSession
	}
	if w.UserID != userID {
		return model.TokenDraft{}, ErrNotOwner
	}
	if w.Step != StepConfirmation {
		return model.TokenDraft{}, fmt.Errorf("launch session not ready to confirm (step %s)", w.Step)
	}
	delete(s.wizards, chatID)
	return w.Draft, nil
}
