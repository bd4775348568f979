package library

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used in tests and when Postgres is
// not configured. It enforces the same stemHash uniqueness contract.
type MemoryStore struct {
	mu     sync.Mutex
	byID   map[string]QuestionDoc
	byHash map[string]string
	now    func() time.Time
	rng    *rand.Rand
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   map[string]QuestionDoc{},
		byHash: map[string]string{},
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *MemoryStore) EnsureUniqueByHash(ctx context.Context, candidate QuestionDoc) (EnsureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(candidate), nil
}

func (s *MemoryStore) ensureLocked(candidate QuestionDoc) EnsureResult {
	enriched := enrich(candidate, s.now())
	if id, ok := s.byHash[enriched.StemHash]; ok {
		return EnsureResult{Doc: s.byID[id], Duplicate: true}
	}
	return EnsureResult{Doc: enriched}
}

func (s *MemoryStore) PutMany(ctx context.Context, candidates []QuestionDoc) (PutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result PutResult
	for _, candidate := range candidates {
		res := s.ensureLocked(candidate)
		if res.Duplicate {
			result.Duplicates++
			continue
		}
		s.byID[res.Doc.ID] = res.Doc
		s.byHash[res.Doc.StemHash] = res.Doc.ID
		result.Inserted++
	}
	return result, nil
}

func (s *MemoryStore) DrawOne(ctx context.Context, params DrawParams) (*QuestionDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exclude := make(map[string]struct{}, len(params.ExcludeIDs))
	for _, id := range params.ExcludeIDs {
		exclude[id] = struct{}{}
	}

	eligible := func(doc QuestionDoc, exactDifficulty bool) bool {
		if doc.Category != params.Category || doc.Used() {
			return false
		}
		if _, skip := exclude[doc.ID]; skip {
			return false
		}
		return !exactDifficulty || doc.Difficulty == params.Difficulty
	}

	var pool []QuestionDoc
	for _, doc := range s.byID {
		if eligible(doc, true) {
			pool = append(pool, doc)
		}
	}
	if len(pool) == 0 {
		for _, doc := range s.byID {
			if eligible(doc, false) {
				pool = append(pool, doc)
			}
		}
	}
	if len(pool) == 0 {
		return nil, nil
	}
	chosen := pool[s.rng.Intn(len(pool))]
	return &chosen, nil
}

func (s *MemoryStore) MarkUsed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.byID[id]
	if !ok {
		return nil
	}
	at := s.now()
	doc.UsedAt = &at
	s.byID[id] = doc
	return nil
}

func (s *MemoryStore) Count(ctx context.Context, filter Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, doc := range s.byID {
		if matches(doc, filter) {
			total++
		}
	}
	return total, nil
}

func (s *MemoryStore) List(ctx context.Context, filter Filter, limit, offset int) ([]QuestionDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []QuestionDoc
	for _, doc := range s.byID {
		if matches(doc, filter) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})

	if offset >= len(docs) {
		return nil, nil
	}
	docs = docs[offset:]
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs, nil
}

func matches(doc QuestionDoc, filter Filter) bool {
	if filter.Category != "" && doc.Category != filter.Category {
		return false
	}
	if filter.Difficulty != "" && doc.Difficulty != filter.Difficulty {
		return false
	}
	return true
}
