// Package session mirrors server session truth on the client. The Store
// is an explicit state container with an event mechanism, not a hidden
// singleton: construct it, pass it to the UI, subscribe for changes.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/client/api"
)

// State is the client's view of the session: the current user (nil when
// logged out) plus one advisory in-flight flag per concern. Flags guard
// UI regions only; nothing is cancelled or queued.
type State struct {
	User            *api.User
	CheckingAuth    bool
	SigningUp       bool
	LoggingIn       bool
	LoggingOut      bool
	UpdatingProfile bool
}

type Store struct {
	mu      sync.Mutex
	client  *api.Client
	disk    *Storage
	state   State
	subs    map[int]func(State)
	nextSub int
}

// New rehydrates the last-known snapshot from disk. CheckingAuth starts
// true: until CheckAuth settles, callers must not assume either way.
func New(client *api.Client, disk *Storage) (*Store, error) {
	snap, err := disk.Load()
	if err != nil {
		return nil, err
	}
	client.SetToken(snap.Token)
	return &Store{
		client: client,
		disk:   disk,
		state:  State{User: snap.User, CheckingAuth: true},
		subs:   make(map[int]func(State)),
	}, nil
}

// Subscribe registers a callback invoked after every state change. The
// returned function unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// set applies a mutation and notifies subscribers outside the lock.
func (s *Store) set(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	state := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}

func (s *Store) persist() {
	// Persistence is best-effort: the server session cookie stays the
	// source of truth, a failed write only costs the next rehydrate.
	_ = s.disk.Save(Snapshot{User: s.State().User, Token: s.client.Token()})
}

// CheckAuth asks the server who the persisted token belongs to and
// settles the CheckingAuth flag whichever way the call goes. Any
// failure, including 401, clears the mirrored user.
func (s *Store) CheckAuth(ctx context.Context) error {
	s.set(func(st *State) { st.CheckingAuth = true })
	user, err := s.client.Check(ctx)
	if err != nil {
		s.set(func(st *State) {
			st.User = nil
			st.CheckingAuth = false
		})
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			// Stale or expired session: drop the persisted snapshot too.
			_ = s.disk.Clear()
			return nil
		}
		return err
	}
	s.set(func(st *State) {
		st.User = user
		st.CheckingAuth = false
	})
	s.persist()
	return nil
}

// Signup creates an account; on success the user is replaced wholesale.
func (s *Store) Signup(ctx context.Context, fullName, email, password string) error {
	s.set(func(st *State) { st.SigningUp = true })
	defer s.set(func(st *State) { st.SigningUp = false })

	user, err := s.client.Signup(ctx, fullName, email, password)
	if err != nil {
		return err
	}
	s.set(func(st *State) { st.User = user })
	s.persist()
	return nil
}

// Login authenticates; on success the user is replaced wholesale.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.set(func(st *State) { st.LoggingIn = true })
	defer s.set(func(st *State) { st.LoggingIn = false })

	user, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.set(func(st *State) { st.User = user })
	s.persist()
	return nil
}

// Logout clears the mirrored user and the snapshot regardless of how
// the network call turns out; the cookie self-expires server-side.
func (s *Store) Logout(ctx context.Context) error {
	s.set(func(st *State) {
		st.LoggingOut = true
		st.User = nil
	})
	defer s.set(func(st *State) { st.LoggingOut = false })

	_ = s.disk.Clear()
	if err := s.client.Logout(ctx); err != nil {
		return err
	}
	return nil
}

// UpdateProfilePic merges only the profile-picture field into the
// current user. The update endpoint is not contracted to return the
// whole projection, so nothing else is touched.
func (s *Store) UpdateProfilePic(ctx context.Context, picturePayload string) error {
	s.set(func(st *State) { st.UpdatingProfile = true })
	defer s.set(func(st *State) { st.UpdatingProfile = false })

	updated, err := s.client.UpdateProfile(ctx, picturePayload)
	if err != nil {
		return err
	}
	s.set(func(st *State) {
		if st.User != nil {
			u := *st.User
			u.ProfilePic = updated.ProfilePic
			st.User = &u
		}
	})
	s.persist()
	return nil
}
