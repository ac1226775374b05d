package archive

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

// ErrNotFound is returned when an archive ID does not exist.
var ErrNotFound = errors.New("archive not found")

// Store is the persistence port for archive metadata. Implementations must
// treat stored archives as immutable records: Create never overwrites, and
// callers get copies they can safely hold across later writes.
//
// List returns summaries (no entry contents); Get returns the full record.
type Store interface {
	Create(ctx context.Context, z *models.StoredZip) error
	Get(ctx context.Context, id string) (*models.StoredZip, error)
	List(ctx context.Context) ([]*models.StoredZip, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore is the in-memory Store used in tests and when no DATABASE_URL
// is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*models.StoredZip
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*models.StoredZip)}
}

// Create stores a copy of z.
func (s *MemoryStore) Create(_ context.Context, z *models.StoredZip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[z.ID]; exists {
		return errors.New("archive id already exists: " + z.ID)
	}
	s.byID[z.ID] = copyZip(z)
	return nil
}

// Get returns a copy of the stored archive.
func (s *MemoryStore) Get(_ context.Context, id string) (*models.StoredZip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	z, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyZip(z), nil
}

// List returns summaries ordered by creation time, newest first.
func (s *MemoryStore) List(_ context.Context) ([]*models.StoredZip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.StoredZip, 0, len(s.byID))
	for _, z := range s.byID {
		summary := *z
		summary.Structure = models.ZipStructure{FileCount: z.Structure.FileCount}
		out = append(out, &summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes an archive record.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func copyZip(z *models.StoredZip) *models.StoredZip {
	c := *z
	c.Structure.Entries = append([]models.ZipEntry(nil), z.Structure.Entries...)
	return &c
}
