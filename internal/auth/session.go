package auth

import (
	"slices"
	"sync"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Avatar   string   `json:"avatar,omitempty"`
	Role     string   `json:"role"`
	JoinedAt string   `json:"joinedAt"`
	Address  *Address `json:"address,omitempty"`
}

// Session holds the signed-in identity of one storefront instance and tells
// subscribers about every change of user id.
type Session struct {
	mu        sync.Mutex
	user      *User
	token     string
	listeners map[int]func(prev, next string)
	nextID    int

	// notifyMu keeps transitions delivered in the order they happened.
	notifyMu sync.Mutex
}

func NewSession() *Session {
	return &Session{listeners: make(map[int]func(prev, next string))}
}

func (s *Session) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

func (s *Session) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) SignIn(u User, token string) {
	s.set(&u, token)
}

func (s *Session) SignOut() {
	s.set(nil, "")
}

// Subscribe registers fn for user id changes. fn runs on the goroutine that
// changed the session.
func (s *Session) Subscribe(fn func(prev, next string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) set(u *User, token string) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	prev := ""
	if s.user != nil {
		prev = s.user.ID
	}
	s.user = u
	s.token = token
	next := ""
	if u != nil {
		next = u.ID
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]func(prev, next string), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	if prev == next {
		return
	}
	for _, fn := range listeners {
		fn(prev, next)
	}
}
