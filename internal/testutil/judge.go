package testutil

import (
	"context"
	"sync"

	"github.com/shelfwise/librarian/internal/index"
	"github.com/shelfwise/librarian/internal/judge"
)

// StubJudge implements the core's Judge interface with scripted behavior.
// Thread-safe; tracks calls so tests can assert the judge was (not) reached.
type StubJudge struct {
	mu    sync.Mutex
	calls int

	// Err, when set, is returned from every Decide call.
	Err error

	// Verdict is returned when Err is nil and SelectFirst is false.
	Verdict judge.Verdict

	// SelectFirst makes the stub pick the top candidate, ignoring Verdict.
	SelectFirst bool
}

// Decide implements recommend.Judge.
func (s *StubJudge) Decide(_ context.Context, _ string, candidates []index.Candidate) (judge.Verdict, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.Err != nil {
		return judge.Verdict{}, s.Err
	}
	if s.SelectFirst && len(candidates) > 0 {
		return judge.Verdict{Title: candidates[0].Title}, nil
	}
	return s.Verdict, nil
}

// Calls returns how many times Decide was called.
func (s *StubJudge) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
