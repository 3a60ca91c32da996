package service

import (
	"context"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/testutil"
	"sync"
	"testing"

	"gorm.io/gorm"
)

type services struct {
	db          *gorm.DB
	catalog     *CatalogService
	people      *PeopleService
	enrollment  *EnrollmentService
	grading     *GradingService
	aggregation *AggregationService
}

func newServices(tb testing.TB, cache StatsCache) *services {
	tb.Helper()
	db := testutil.DB(tb)

	catalogRepo := repository.NewCatalogRepository(db)
	peopleRepo := repository.NewPeopleRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	agg := NewAggregationService(db, catalogRepo, enrollmentRepo, submissionRepo, cache)
	return &services{
		db:          db,
		catalog:     NewCatalogService(db, catalogRepo, peopleRepo),
		people:      NewPeopleService(peopleRepo),
		enrollment:  NewEnrollmentService(db, catalogRepo, peopleRepo, enrollmentRepo, submissionRepo, agg),
		grading:     NewGradingService(db, catalogRepo, enrollmentRepo, submissionRepo, agg),
		aggregation: agg,
	}
}

func (s *services) course(tb testing.TB, id uint) *model.Course {
	tb.Helper()
	var c model.Course
	if err := s.db.First(&c, id).Error; err != nil {
		tb.Fatalf("load course %d: %v", id, err)
	}
	return &c
}

func (s *services) enrollmentRow(tb testing.TB, id uint) *model.Enrollment {
	tb.Helper()
	var e model.Enrollment
	if err := s.db.First(&e, id).Error; err != nil {
		tb.Fatalf("load enrollment %d: %v", id, err)
	}
	return &e
}

type scenario struct {
	lesson *model.Lesson
	a      uint // Q1 correct
	q1x    uint // Q1 wrong
	q2x    uint // Q2 wrong
	b, c   uint // Q2 correct
}

// seedScenario seeds Q1 (1 point) and Q2 (3 points, two correct choices).
func seedScenario(tb testing.TB, ctx context.Context, db *gorm.DB, courseID uint, order int) scenario {
	tb.Helper()
	lesson := testutil.SeedLesson(tb, ctx, db, courseID, order)
	q1 := testutil.SeedQuestion(tb, ctx, db, lesson.ID, 1, true, false)
	q2 := testutil.SeedQuestion(tb, ctx, db, lesson.ID, 3, false, true, true)
	return scenario{
		lesson: lesson,
		a:      q1.Choices[0].ID,
		q1x:    q1.Choices[1].ID,
		q2x:    q2.Choices[0].ID,
		b:      q2.Choices[1].ID,
		c:      q2.Choices[2].ID,
	}
}

// memCache is an in-process StatsCache used to observe invalidation. It keeps
// the same version contract as the redis repository.
type memCache struct {
	mu       sync.Mutex
	entries  map[uint]model.CourseStats
	versions map[uint]int64
	hits     int
}

func newMemCache() *memCache {
	return &memCache{
		entries:  make(map[uint]model.CourseStats),
		versions: make(map[uint]int64),
	}
}

func (m *memCache) Version(_ context.Context, courseID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[courseID], nil
}

func (m *memCache) Get(_ context.Context, courseID uint) (*model.CourseStats, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.entries[courseID]
	if !ok {
		return nil, false, nil
	}
	m.hits++
	return &st, true, nil
}

func (m *memCache) Set(_ context.Context, stats *model.CourseStats, version int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[stats.CourseID] != version {
		return false, nil
	}
	m.entries[stats.CourseID] = *stats
	return true, nil
}

func (m *memCache) Invalidate(_ context.Context, courseID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[courseID]++
	delete(m.entries, courseID)
	return nil
}

func (m *memCache) entry(courseID uint) (model.CourseStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.entries[courseID]
	return st, ok
}

// parkedCache holds the first Set until release is closed, so a writer can
// commit between a reader's computation and its cache write.
type parkedCache struct {
	*memCache
	once    sync.Once
	parked  chan struct{}
	release chan struct{}
}

func newParkedCache() *parkedCache {
	return &parkedCache{
		memCache: newMemCache(),
		parked:   make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (p *parkedCache) Set(ctx context.Context, stats *model.CourseStats, version int64) (bool, error) {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.parked)
		<-p.release
	}
	return p.memCache.Set(ctx, stats, version)
}
