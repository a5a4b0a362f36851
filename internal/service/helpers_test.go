package service_test

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/mocks"
	"github.com/phrazzld/studyrooms-api/internal/service"
	"github.com/phrazzld/studyrooms-api/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quizJSON = `{"questions":[` +
	`{"question":"Who founded the Mughal Empire?","options":["Babur","Akbar","Humayun","Aurangzeb"],"correctAnswer":0},` +
	`{"question":"Which battle opened Mughal rule?","options":["Panipat","Plassey","Buxar","Haldighati"],"correctAnswer":0}]}`

// testEnv bundles in-memory stores with a sqlmock database that only
// sees transaction boundaries.
type testEnv struct {
	db        *sql.DB
	sql       sqlmock.Sqlmock
	lessons   *mocks.LessonStore
	artifacts *mocks.ArtifactStore
	claims    *mocks.ClaimStore
	progress  *mocks.ProgressStore
	emitter   *mocks.RecordingEmitter
	logger    *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		_ = db.Close()
	})

	return &testEnv{
		db:        db,
		sql:       sqlMock,
		lessons:   mocks.NewLessonStore(),
		artifacts: mocks.NewArtifactStore(),
		claims:    mocks.NewClaimStore(),
		progress:  mocks.NewProgressStore(),
		emitter:   &mocks.RecordingEmitter{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// expectCommits expects n transactions that commit.
func (e *testEnv) expectCommits(n int) {
	for i := 0; i < n; i++ {
		e.sql.ExpectBegin()
		e.sql.ExpectCommit()
	}
}

func (e *testEnv) lessonService(t *testing.T, gen service.ContentGenerator) service.LessonService {
	t.Helper()
	return e.lessonServiceWith(t, source.NewExtractor(domain.BackendModeDemo, e.logger), gen)
}

func (e *testEnv) lessonServiceWith(
	t *testing.T,
	sources service.SourceResolver,
	gen service.ContentGenerator,
) service.LessonService {
	t.Helper()
	svc, err := service.NewLessonService(service.LessonServiceDeps{
		DB:        e.db,
		Lessons:   e.lessons,
		Artifacts: e.artifacts,
		Claims:    e.claims,
		Sources:   sources,
		Generator: gen,
	}, e.logger)
	require.NoError(t, err)
	return svc
}

func (e *testEnv) roomService(t *testing.T) service.RoomService {
	t.Helper()
	svc, err := service.NewRoomService(service.RoomServiceDeps{
		DB:        e.db,
		Lessons:   e.lessons,
		Artifacts: e.artifacts,
		Claims:    e.claims,
		Progress:  e.progress,
		Events:    e.emitter,
	}, e.logger)
	require.NoError(t, err)
	return svc
}

// storedLesson puts an active Mughal history lesson owned by userID.
func (e *testEnv) storedLesson(t *testing.T, userID uuid.UUID) *domain.Lesson {
	t.Helper()
	lesson, err := domain.NewLesson(userID, "Mughal Empire",
		"The Mughal Empire was founded by Babur in 1526 after the first battle of Panipat.",
		domain.SourceKindText, domain.CategoryHistoricalPeriod, domain.ExamUPSC)
	require.NoError(t, err)
	e.lessons.Put(lesson)
	return lesson
}
