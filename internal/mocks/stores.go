package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/store"
)

// LessonStore is an in-memory store.LessonStore.
type LessonStore struct {
	mu      sync.Mutex
	lessons map[uuid.UUID]domain.Lesson

	CreateErr       error
	GetErr          error
	UpdateStatusErr error
}

// NewLessonStore creates an empty LessonStore.
func NewLessonStore() *LessonStore {
	return &LessonStore{lessons: make(map[uuid.UUID]domain.Lesson)}
}

var _ store.LessonStore = (*LessonStore)(nil)

// Create implements store.LessonStore.
func (s *LessonStore) Create(ctx context.Context, lesson *domain.Lesson) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if err := lesson.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lessons[lesson.ID]; ok {
		return store.ErrDuplicate
	}
	s.lessons[lesson.ID] = *lesson
	return nil
}

// GetByID implements store.LessonStore.
func (s *LessonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[id]
	if !ok {
		return nil, store.ErrLessonNotFound
	}
	return &l, nil
}

// ListByUser implements store.LessonStore.
func (s *LessonStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []*domain.Lesson
	for _, l := range s.lessons {
		if l.UserID == userID {
			owned = append(owned, &l)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })

	if offset >= len(owned) {
		return []*domain.Lesson{}, nil
	}
	owned = owned[offset:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

// UpdateStatus implements store.LessonStore.
func (s *LessonStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LessonStatus) error {
	if s.UpdateStatusErr != nil {
		return s.UpdateStatusErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[id]
	if !ok {
		return store.ErrLessonNotFound
	}
	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	s.lessons[id] = l
	return nil
}

// WithTx implements store.LessonStore. The in-memory store ignores tx.
func (s *LessonStore) WithTx(tx *sql.Tx) store.LessonStore {
	return s
}

// Put stores lesson directly, bypassing validation.
func (s *LessonStore) Put(lesson *domain.Lesson) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons[lesson.ID] = *lesson
}

type roomKey struct {
	lessonID uuid.UUID
	room     domain.RoomType
}

// ArtifactStore is an in-memory store.ArtifactStore.
type ArtifactStore struct {
	mu        sync.Mutex
	overviews map[uuid.UUID]domain.OverviewContent
	batches   map[roomKey][]domain.RoomContent

	SaveErr    error
	GetRoomErr error
}

// NewArtifactStore creates an empty ArtifactStore.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		overviews: make(map[uuid.UUID]domain.OverviewContent),
		batches:   make(map[roomKey][]domain.RoomContent),
	}
}

var _ store.ArtifactStore = (*ArtifactStore)(nil)

// SaveRoom implements store.ArtifactStore.
func (s *ArtifactStore) SaveRoom(ctx context.Context, lessonID uuid.UUID, content *domain.RoomContent) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if err := content.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if content.Room == domain.RoomClarity {
		if _, ok := s.overviews[lessonID]; ok {
			return store.ErrDuplicate
		}
		s.overviews[lessonID] = *content.Overview
		return nil
	}
	key := roomKey{lessonID, content.Room}
	s.batches[key] = append(s.batches[key], *content)
	return nil
}

// GetRoom implements store.ArtifactStore.
func (s *ArtifactStore) GetRoom(ctx context.Context, lessonID uuid.UUID, room domain.RoomType) (*domain.RoomContent, error) {
	if s.GetRoomErr != nil {
		return nil, s.GetRoomErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if room == domain.RoomClarity {
		o, ok := s.overviews[lessonID]
		if !ok {
			return nil, store.ErrArtifactNotFound
		}
		return &domain.RoomContent{Room: room, Overview: &o}, nil
	}
	batches := s.batches[roomKey{lessonID, room}]
	if len(batches) == 0 {
		return nil, store.ErrArtifactNotFound
	}
	latest := batches[len(batches)-1]
	return &latest, nil
}

// WithTx implements store.ArtifactStore. The in-memory store ignores tx.
func (s *ArtifactStore) WithTx(tx *sql.Tx) store.ArtifactStore {
	return s
}

// BatchCount returns how many batches were stored for room.
func (s *ArtifactStore) BatchCount(lessonID uuid.UUID, room domain.RoomType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room == domain.RoomClarity {
		if _, ok := s.overviews[lessonID]; ok {
			return 1
		}
		return 0
	}
	return len(s.batches[roomKey{lessonID, room}])
}

// ClaimStore is an in-memory store.ClaimStore.
type ClaimStore struct {
	mu     sync.Mutex
	claims map[roomKey]domain.GenerationClaim

	TryClaimErr error
	ReleaseErr  error
}

// NewClaimStore creates an empty ClaimStore.
func NewClaimStore() *ClaimStore {
	return &ClaimStore{claims: make(map[roomKey]domain.GenerationClaim)}
}

var _ store.ClaimStore = (*ClaimStore)(nil)

// TryClaim implements store.ClaimStore.
func (s *ClaimStore) TryClaim(
	ctx context.Context,
	lessonID uuid.UUID,
	room domain.RoomType,
	staleAfter time.Duration,
) (time.Time, bool, error) {
	if s.TryClaimErr != nil {
		return time.Time{}, false, s.TryClaimErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	key := roomKey{lessonID, room}
	if c, ok := s.claims[key]; ok {
		if c.Status != domain.ClaimGenerating || !c.ClaimedAt.Before(now.Add(-staleAfter)) {
			return time.Time{}, false, nil
		}
	}
	s.claims[key] = domain.GenerationClaim{
		LessonID: lessonID, Room: room, Status: domain.ClaimGenerating, ClaimedAt: now, UpdatedAt: now,
	}
	return now, true, nil
}

// MarkGenerated implements store.ClaimStore.
func (s *ClaimStore) MarkGenerated(ctx context.Context, lessonID uuid.UUID, room domain.RoomType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	key := roomKey{lessonID, room}
	c, ok := s.claims[key]
	if !ok {
		c = domain.GenerationClaim{LessonID: lessonID, Room: room, ClaimedAt: now}
	}
	c.Status = domain.ClaimGenerated
	c.UpdatedAt = now
	s.claims[key] = c
	return nil
}

// Release implements store.ClaimStore.
func (s *ClaimStore) Release(ctx context.Context, lessonID uuid.UUID, room domain.RoomType, claimedAt time.Time) error {
	if s.ReleaseErr != nil {
		return s.ReleaseErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := roomKey{lessonID, room}
	if c, ok := s.claims[key]; ok && c.Status == domain.ClaimGenerating && c.ClaimedAt.Equal(claimedAt) {
		delete(s.claims, key)
	}
	return nil
}

// Get implements store.ClaimStore.
func (s *ClaimStore) Get(ctx context.Context, lessonID uuid.UUID, room domain.RoomType) (*domain.GenerationClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[roomKey{lessonID, room}]
	if !ok {
		return nil, store.ErrClaimNotFound
	}
	return &c, nil
}

// WithTx implements store.ClaimStore. The in-memory store ignores tx.
func (s *ClaimStore) WithTx(tx *sql.Tx) store.ClaimStore {
	return s
}

// Backdate moves a claim's ClaimedAt into the past.
func (s *ClaimStore) Backdate(lessonID uuid.UUID, room domain.RoomType, by time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := roomKey{lessonID, room}
	if c, ok := s.claims[key]; ok {
		c.ClaimedAt = c.ClaimedAt.Add(-by)
		s.claims[key] = c
	}
}

// ProgressStore is an in-memory store.ProgressStore.
type ProgressStore struct {
	mu      sync.Mutex
	records []domain.ProgressRecord

	CreateErr error
	ListErr   error
}

// NewProgressStore creates an empty ProgressStore.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{}
}

var _ store.ProgressStore = (*ProgressStore)(nil)

// Create implements store.ProgressStore.
func (s *ProgressStore) Create(ctx context.Context, record *domain.ProgressRecord) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if err := record.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *record)
	return nil
}

// ListByLesson implements store.ProgressStore.
func (s *ProgressStore) ListByLesson(ctx context.Context, userID, lessonID uuid.UUID) ([]*domain.ProgressRecord, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.ProgressRecord{}
	for _, r := range s.records {
		if r.UserID == userID && r.LessonID == lessonID {
			out = append(out, &r)
		}
	}
	return out, nil
}

// WithTx implements store.ProgressStore. The in-memory store ignores tx.
func (s *ProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return s
}
