package services

import (
	"sync"
	"time"

	"github.com/rfaria/vendaszap-backend/internal/models"
)

// Step identifies the sender's position in the conversation menu
type Step string

const (
	StepMain                 Step = "main"
	StepVendasGlobaisLoja    Step = "vendas_globais_loja"
	StepVendasGlobaisSerie   Step = "vendas_globais_serie_input"
	StepVendasGlobaisPeriodo Step = "vendas_globais_periodo"
	StepVendasLoja           Step = "vendas_loja"
	StepVendasSerie          Step = "vendas_serie_input"
	StepVendasPeriodo        Step = "vendas_periodo"
)

// Session is one sender's menu position plus the data the current step
// needs. SeriesList is only populated while awaiting a series selection;
// Serie carries the chosen filter into the period step (empty = all).
type Session struct {
	Phone      string
	Step       Step
	SeriesList []models.SerieOption
	Serie      string
	UpdatedAt  time.Time
}

// SessionStore keeps per-sender conversation state in memory for the
// lifetime of the process. A restart drops everyone back to the main menu.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
	}
}

// Get returns the sender's session. Unknown senders start at the main menu.
func (s *SessionStore) Get(phone string) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if session, exists := s.sessions[phone]; exists {
		return session
	}
	return Session{Phone: phone, Step: StepMain}
}

// Set overwrites the sender's session
func (s *SessionStore) Set(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.UpdatedAt = time.Now()
	s.sessions[session.Phone] = session
}

// Reset puts the sender back at the main menu with no carried context
func (s *SessionStore) Reset(phone string) {
	s.Set(Session{Phone: phone, Step: StepMain})
}

// Count returns how many senders currently hold a session (for monitoring)
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
