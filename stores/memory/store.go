package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/mockup/core"
)

// memStore keeps artifacts in process memory.
type memStore struct {
	mu        sync.RWMutex
	artifacts map[string]core.Artifact
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{artifacts: make(map[string]core.Artifact)}
}

// Put stores a copy of the artifact under a fresh ULID.
func (s *memStore) Put(ctx context.Context, artifact *core.Artifact) (string, error) {
	if artifact == nil {
		return "", fmt.Errorf("artifact cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	stored := *artifact
	stored.ID = id
	stored.Data = append([]byte(nil), artifact.Data...)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.artifacts[id] = stored

	logrus.WithFields(logrus.Fields{
		"artifact_id": id,
		"filename":    stored.Filename,
		"data_length": len(stored.Data),
	}).Info("Artifact stored")
	return id, nil
}

// Get returns a copy of the artifact.
func (s *memStore) Get(ctx context.Context, id string) (*core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.artifacts[id]
	if !ok {
		logrus.WithField("artifact_id", id).Warn("Artifact not found")
		return nil, fmt.Errorf("%w: %s", core.ErrArtifactNotFound, id)
	}
	val.Data = append([]byte(nil), val.Data...)
	return &val, nil
}

// Release drops the artifact.
func (s *memStore) Release(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.artifacts, id)
	logrus.WithField("artifact_id", id).Debug("Artifact released")
	return nil
}

// ReleaseSession drops every artifact of a session.
func (s *memStore) ReleaseSession(ctx context.Context, session string) (int, error) {
	return s.releaseWhere(func(a core.Artifact) bool { return a.Session == session }, logrus.Fields{"session": session})
}

// Sweep drops artifacts created before the cutoff.
func (s *memStore) Sweep(ctx context.Context, before time.Time) (int, error) {
	return s.releaseWhere(func(a core.Artifact) bool { return a.CreatedAt.Before(before) }, logrus.Fields{"before": before})
}

func (s *memStore) releaseWhere(match func(core.Artifact) bool, fields logrus.Fields) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, a := range s.artifacts {
		if match(a) {
			delete(s.artifacts, id)
			n++
		}
	}
	if n > 0 {
		logrus.WithFields(fields).WithField("count", n).Debug("Artifacts released")
	}
	return n, nil
}

// Len returns the number of artifacts currently held.
func (s *memStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts)
}
