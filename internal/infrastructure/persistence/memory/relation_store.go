// Package memory implements the relation and content ports in process memory.
// It backs the "memory" storage driver for local runs and the application
// tests; state is lost on restart.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/streamhub/engagement-hub/internal/domain/relation"
)

// RelationStore is a mutex-guarded relation set.
type RelationStore struct {
	mu        sync.RWMutex
	relations map[relation.Key]time.Time

	fail error

	// Round-trip counters for the batched reads.
	CountCalls      atomic.Int64
	MembershipCalls atomic.Int64
}

// NewRelationStore creates an empty store.
func NewRelationStore() *RelationStore {
	return &RelationStore{relations: make(map[relation.Key]time.Time)}
}

// SetFail makes every subsequent call return err (nil restores normal operation).
func (s *RelationStore) SetFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Exists implements relation.Store.
func (s *RelationStore) Exists(_ context.Context, key relation.Key) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return false, s.fail
	}
	_, ok := s.relations[key]
	return ok, nil
}

// InsertIfAbsent implements relation.Store.
func (s *RelationStore) InsertIfAbsent(_ context.Context, key relation.Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return false, s.fail
	}
	if _, ok := s.relations[key]; ok {
		return false, nil
	}
	s.relations[key] = time.Now().UTC()
	return true, nil
}

// DeleteIfPresent implements relation.Store.
func (s *RelationStore) DeleteIfPresent(_ context.Context, key relation.Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return false, s.fail
	}
	if _, ok := s.relations[key]; !ok {
		return false, nil
	}
	delete(s.relations, key)
	return true, nil
}

// CountByTarget implements relation.Store.
func (s *RelationStore) CountByTarget(_ context.Context, targetID string, kind relation.Kind) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return 0, s.fail
	}
	var n int64
	for k := range s.relations {
		if k.TargetID == targetID && k.Kind == kind {
			n++
		}
	}
	return n, nil
}

// CountByTargets implements relation.Store.
func (s *RelationStore) CountByTargets(_ context.Context, targetIDs []string, kind relation.Kind) (map[string]int64, error) {
	s.CountCalls.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	out := make(map[string]int64, len(targetIDs))
	for _, id := range targetIDs {
		out[id] = 0
	}
	for k := range s.relations {
		if k.Kind != kind {
			continue
		}
		if _, ok := out[k.TargetID]; ok {
			out[k.TargetID]++
		}
	}
	return out, nil
}

// ActorHasRelation implements relation.Store.
func (s *RelationStore) ActorHasRelation(_ context.Context, actorID string, targetIDs []string, kind relation.Kind) (map[string]struct{}, error) {
	s.MembershipCalls.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	out := make(map[string]struct{})
	for _, id := range targetIDs {
		if _, ok := s.relations[relation.Key{ActorID: actorID, TargetID: id, Kind: kind}]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// Len returns the number of stored relations.
func (s *RelationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.relations)
}

// ActorsOf returns actors holding kind toward targetID.
func (s *RelationStore) ActorsOf(targetID string, kind relation.Kind) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{})
	for k := range s.relations {
		if k.TargetID == targetID && k.Kind == kind {
			out[k.ActorID] = struct{}{}
		}
	}
	return out
}

// TargetsOf returns targets actorID holds kind toward.
func (s *RelationStore) TargetsOf(actorID string, kind relation.Kind) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{})
	for k := range s.relations {
		if k.ActorID == actorID && k.Kind == kind {
			out[k.TargetID] = struct{}{}
		}
	}
	return out
}

var _ relation.Store = (*RelationStore)(nil)
