package services

import (
	"context"
	"sort"
	"sync"

	"github.com/photomap/backend/internal/models"
	"github.com/photomap/backend/internal/storage"
)

// MemoryUserStore keeps users in a map, optionally snapshotted to disk after
// every write.
type MemoryUserStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	snapshot *storage.Snapshot[map[string]*models.User]
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

// NewPersistentUserStore loads dataDir/users.json and keeps it up to date.
func NewPersistentUserStore(dataDir string) (*MemoryUserStore, error) {
	snap, err := storage.NewSnapshot[map[string]*models.User](dataDir, "users.json")
	if err != nil {
		return nil, err
	}
	users, err := snap.Load()
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = make(map[string]*models.User)
	}
	return &MemoryUserStore{users: users, snapshot: snap}, nil
}

func (s *MemoryUserStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryUserStore) PutUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *u
	s.users[u.ID] = &cp
	return s.persist()
}

func (s *MemoryUserStore) SetIgnoreFilesShared(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if u.IgnoreFilesShared {
		return nil
	}
	u.IgnoreFilesShared = true
	return s.persist()
}

// persist must be called with mu held.
func (s *MemoryUserStore) persist() error {
	if s.snapshot == nil {
		return nil
	}
	return s.snapshot.Save(s.users)
}

// MemoryFileStore keeps files in a map, optionally snapshotted to disk.
type MemoryFileStore struct {
	mu       sync.RWMutex
	files    map[string]*models.File
	snapshot *storage.Snapshot[map[string]*models.File]
}

func NewMemoryFileStore() *MemoryFileStore {
	return &MemoryFileStore{files: make(map[string]*models.File)}
}

// NewPersistentFileStore loads dataDir/files.json and keeps it up to date.
func NewPersistentFileStore(dataDir string) (*MemoryFileStore, error) {
	snap, err := storage.NewSnapshot[map[string]*models.File](dataDir, "files.json")
	if err != nil {
		return nil, err
	}
	files, err := snap.Load()
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = make(map[string]*models.File)
	}
	return &MemoryFileStore{files: files, snapshot: snap}, nil
}

func (s *MemoryFileStore) GetFile(_ context.Context, id string) (*models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	cp := *f
	return &cp, nil
}

func (s *MemoryFileStore) PutFile(_ context.Context, f *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *f
	s.files[f.ID] = &cp
	return s.persist()
}

func (s *MemoryFileStore) SetAllowed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok {
		return ErrFileNotFound
	}
	if f.IsAllowed {
		return nil
	}
	f.IsAllowed = true
	return s.persist()
}

func (s *MemoryFileStore) DeleteFile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return ErrFileNotFound
	}
	delete(s.files, id)
	return s.persist()
}

func (s *MemoryFileStore) ListFiles(_ context.Context, q models.ListFilesQuery) ([]*models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*models.File, 0)
	for _, f := range s.files {
		if q.Allowed != nil && f.IsAllowed != *q.Allowed {
			continue
		}
		if q.Bounds != nil && !q.Bounds.Contains(f.Lat, f.Lng) {
			continue
		}
		cp := *f
		results = append(results, &cp)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].ID < results[j].ID
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if limit := clampLimit(q.Limit); len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryFileStore) persist() error {
	if s.snapshot == nil {
		return nil
	}
	return s.snapshot.Save(s.files)
}
