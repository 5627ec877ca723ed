// Package session tracks the single signed-in user of a process and tells
// registered observers whenever it changes.
package session

import (
	"sync"

	"github.com/cx-tal-miterani/booking-service/internal/models"
)

// Observer is called with the new current user, or nil after logout
type Observer func(user *models.PublicUser)

// State holds zero or one current user
type State struct {
	mu        sync.RWMutex
	current   *models.PublicUser
	observers []Observer
}

func New() *State {
	return &State{}
}

// Current returns a copy of the current user, or nil
func (s *State) Current() *models.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// Set replaces the current user and notifies observers
func (s *State) Set(user models.PublicUser) {
	s.mu.Lock()
	s.current = &user
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		u := user
		o(&u)
	}
}

// Clear removes the current user and notifies observers
func (s *State) Clear() {
	s.mu.Lock()
	s.current = nil
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o(nil)
	}
}

// OnChange registers an observer. It returns a function that removes it.
func (s *State) OnChange(o Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
	idx := len(s.observers) - 1

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.observers) {
			s.observers[idx] = func(*models.PublicUser) {}
		}
	}
}

func (s *State) IsAuthenticated() bool {
	return s.Current() != nil
}

func (s *State) IsAdmin() bool {
	u := s.Current()
	return u != nil && u.Role == models.RoleAdmin
}

func (s *State) IsClient() bool {
	u := s.Current()
	return u != nil && u.Role == models.RoleClient
}
