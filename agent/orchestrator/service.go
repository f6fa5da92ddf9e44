// Package orchestrator is the session façade. One HandleTurn call runs the
// whole turn graph; turns for the same session are serialized so session
// state never sees concurrent writers.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/careerninja/learntube/agent/contract"
	nodex "github.com/careerninja/learntube/agent/nodes"
	statex "github.com/careerninja/learntube/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
	ErrInvalidUser    = nodex.ErrInvalidUser
)

type Service struct {
	store  statex.Store
	agents contractx.Registry
	memory contractx.MemoryStore

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	mu    sync.Mutex
	locks map[string]*sessionLock

	now func() time.Time
}

// sessionLock is a mutex with a waiter count so the lock map can shed
// entries once the last turn for a session releases it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func New(store statex.Store, agents contractx.Registry, memory contractx.MemoryStore) (*Service, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if agents == nil {
		return nil, errors.New("agent registry is required")
	}
	if memory == nil {
		return nil, errors.New("memory store is required")
	}

	s := &Service{
		store:  store,
		agents: agents,
		memory: memory,
		locks:  make(map[string]*sessionLock),
		now:    time.Now,
	}

	graphRunner, err := s.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// HandleTurn runs one user message through the turn graph. Concurrent calls
// for the same session queue behind each other; different sessions proceed
// independently.
func (s *Service) HandleTurn(ctx context.Context, sessionID, userID, message string) (contractx.TurnResult, error) {
	lock := s.acquireSessionLock(sessionID)
	lock.mu.Lock()
	defer s.releaseSessionLock(sessionID, lock)

	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		UserID:    userID,
		Message:   message,
	})
	if err != nil {
		return contractx.TurnResult{}, err
	}
	return out.Result, nil
}

// ProfileStatus reports whether the session holds a scraped profile.
func (s *Service) ProfileStatus(ctx context.Context, sessionID string) (contractx.ProfileStatus, error) {
	st, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			return contractx.ProfileStatus{}, nil
		}
		return contractx.ProfileStatus{}, err
	}
	if st.Profile == nil {
		return contractx.ProfileStatus{}, nil
	}
	scrapedAt := st.Profile.ScrapedAt
	return contractx.ProfileStatus{HasProfile: true, LastScrapedAt: &scrapedAt}, nil
}

func (s *Service) acquireSessionLock(sessionID string) *sessionLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		s.locks[sessionID] = lock
	}
	lock.refs++
	return lock
}

func (s *Service) releaseSessionLock(sessionID string, lock *sessionLock) {
	lock.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, sessionID)
	}
}
