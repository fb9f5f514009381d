package store

import (
	"errors"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/obsidianstack/pokedex/pkg/types"
)

// ErrNotFound is returned when no record exists for the requested number.
var ErrNotFound = errors.New("pokemon not found")

// Record is one stored pokemon. Number is its unique key.
type Record struct {
	Number   int
	Name     string
	NickName string
	Type     string
}

// Patch is a partial record. Only fields with Set == true are applied.
type Patch struct {
	Name     types.Optional[string]
	NickName types.Optional[string]
	Number   types.Optional[int]
	Type     types.Optional[string]
}

// apply merges p over r field by field.
func (p Patch) apply(r Record) Record {
	return Record{
		Number:   p.Number.Or(r.Number),
		Name:     p.Name.Or(r.Name),
		NickName: p.NickName.Or(r.NickName),
		Type:     p.Type.Or(r.Type),
	}
}

// Page is one slice of the collection together with the collection size at
// the moment the slice was taken.
type Page struct {
	Total   int
	Limit   int
	Offset  int
	Records []Record
}

// Store is a thread-safe in-memory record store keyed by Number.
// Every operation holds the same exclusive lock for its whole duration.
// Records are plain values, so callers always receive copies.
type Store struct {
	mu   sync.Mutex
	data map[int]Record
}

// New creates an empty Store.
func New() *Store {
	return &Store{data: make(map[int]Record)}
}

// DefaultSeed returns the two fixture records loaded at startup.
func DefaultSeed() []Record {
	return []Record{
		{Number: 1, Name: "Bulbasaur", NickName: "Hasso", Type: "Grass"},
		{Number: 9, Name: "Blastoise", NickName: "Blaster", Type: "Water"},
	}
}

// Seed upserts records in order.
func (s *Store) Seed(records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.data[r.Number] = r
	}
}

// List returns up to limit records after skipping (page-1)*limit of them,
// in ascending Number order. Total is the full record count taken under the
// same lock, so it is always consistent with Records.
//
// page values below 1 are treated as 1 and negative limits as 0.
func (s *Store) List(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 0 {
		limit = 0
	}
	offset := pageOffset(page, limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.data)
	out := make([]Record, 0, min(limit, max(0, total-offset)))
	if offset < total && limit > 0 {
		keys := slices.Sorted(maps.Keys(s.data))
		for _, k := range keys[offset:] {
			if len(out) == limit {
				break
			}
			out = append(out, s.data[k])
		}
	}
	return Page{Total: total, Limit: limit, Offset: offset, Records: out}
}

// pageOffset computes (page-1)*limit, saturating at math.MaxInt.
func pageOffset(page, limit int) int {
	if limit == 0 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// Create stores r under r.Number, replacing any record already there, and
// returns what was stored.
func (s *Store) Create(r Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[r.Number] = r
	return r
}

// Get returns the record stored under number, or ErrNotFound.
func (s *Store) Get(number int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data[number]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

// Update merges p into the record stored under number and returns the result.
// It returns ErrNotFound without applying anything when number is absent.
//
// Number is itself mergeable. The old entry is removed first and the merged
// record is then inserted unconditionally under its (possibly new) Number,
// exactly like Create: if another record already holds that Number it is
// overwritten.
func (s *Store) Update(number int, p Patch) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.data[number]
	if !ok {
		return Record{}, ErrNotFound
	}
	merged := p.apply(old)
	delete(s.data, number)
	s.data[merged.Number] = merged
	return merged, nil
}

// Delete removes the record stored under number, or returns ErrNotFound.
func (s *Store) Delete(number int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[number]; !ok {
		return ErrNotFound
	}
	delete(s.data, number)
	return nil
}

// Count returns the number of records currently held.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
