package bot

import "sync"

// DialogState tracks where a user is in the guided /start flow.
type DialogState int

const (
	StateIdle DialogState = iota
	StateVisaType
	StateCity
	StateInvitation
	StateFullName
	StateBirthDate
	StateConfirm
	StateReady
)

// Request is one user's collected booking preferences.
type Request struct {
	VisaType   string
	City       string
	Invitation string
	FullName   string
	BirthDate  string
	State      DialogState
}

// Store keeps per-user requests. All access goes through the mutex; handler
// goroutines and run goroutines touch the same entries.
type Store struct {
	mu       sync.Mutex
	requests map[int64]*Request
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{requests: make(map[int64]*Request)}
}

// Get returns a copy of the user's request and whether one exists.
func (s *Store) Get(userID int64) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[userID]
	if !ok {
		return Request{}, false
	}
	return *r, true
}

// Begin resets the user's request and puts them at the start of the
// guided flow.
func (s *Store) Begin(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[userID] = &Request{State: StateVisaType}
}

// Update applies fn to the user's request under the lock. Missing entries
// are ignored and reported as false.
func (s *Store) Update(userID int64, fn func(*Request)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[userID]
	if !ok {
		return false
	}
	fn(r)
	return true
}

// Drop removes the user's request entirely.
func (s *Store) Drop(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, userID)
}
