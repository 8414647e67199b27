package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"surebet/pkg/platform/sentinel"
)

const DefaultDraftTTL = 30 * time.Minute

// DraftStore keeps drafts in a TTL cache. Each write refreshes the TTL.
type DraftStore struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
}

func NewDraftStore(ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftStore{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

func (s *DraftStore) Create(d *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(d.ID.String(), d.clone(), s.ttl)
}

func (s *DraftStore) Get(id uuid.UUID) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return d.clone(), nil
}

// Update applies fn to the stored draft. Nothing is written when fn fails.
func (s *DraftStore) Update(id uuid.UUID, fn func(*Draft) error) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load(id)
	if err != nil {
		return nil, err
	}
	next := d.clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.cache.Set(id.String(), next, s.ttl)
	return next.clone(), nil
}

// Take removes the draft when check accepts it and returns it.
func (s *DraftStore) Take(id uuid.UUID, check func(*Draft) error) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(d); err != nil {
			return nil, err
		}
	}
	s.cache.Delete(id.String())
	return d, nil
}

func (s *DraftStore) Delete(id uuid.UUID) error {
	_, err := s.Take(id, nil)
	return err
}

func (s *DraftStore) Count() int {
	return s.cache.ItemCount()
}

func (s *DraftStore) load(id uuid.UUID) (*Draft, error) {
	v, ok := s.cache.Get(id.String())
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return v.(*Draft), nil
}
