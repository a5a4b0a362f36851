package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/generation"
	"github.com/phrazzld/studyrooms-api/internal/mocks"
	"github.com/phrazzld/studyrooms-api/internal/platform/llm"
	"github.com/phrazzld/studyrooms-api/internal/prompt"
	"github.com/phrazzld/studyrooms-api/internal/service"
	"github.com/phrazzld/studyrooms-api/internal/source"
	"github.com/phrazzld/studyrooms-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generatorFunc func(ctx context.Context, p prompt.Prompt) (json.RawMessage, error)

func (f generatorFunc) Generate(ctx context.Context, p prompt.Prompt) (json.RawMessage, error) {
	return f(ctx, p)
}

type resolverFunc func(ctx context.Context, raw string) (source.Material, error)

func (f resolverFunc) Resolve(ctx context.Context, raw string) (source.Material, error) {
	return f(ctx, raw)
}

func demoClient(t *testing.T, env *testEnv) *generation.Client {
	t.Helper()
	client, err := generation.NewClient(llm.NewDemo(), nil, generation.ClientConfig{}, env.logger)
	require.NoError(t, err)
	return client
}

func TestNewLessonService_MissingDependencies(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	full := service.LessonServiceDeps{
		DB:        env.db,
		Lessons:   env.lessons,
		Artifacts: env.artifacts,
		Claims:    env.claims,
		Sources:   source.NewExtractor(domain.BackendModeDemo, nil),
		Generator: demoClient(t, env),
	}

	tests := []struct {
		name   string
		mutate func(d *service.LessonServiceDeps)
	}{
		{"db", func(d *service.LessonServiceDeps) { d.DB = nil }},
		{"lessons", func(d *service.LessonServiceDeps) { d.Lessons = nil }},
		{"artifacts", func(d *service.LessonServiceDeps) { d.Artifacts = nil }},
		{"claims", func(d *service.LessonServiceDeps) { d.Claims = nil }},
		{"sources", func(d *service.LessonServiceDeps) { d.Sources = nil }},
		{"generator", func(d *service.LessonServiceDeps) { d.Generator = nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deps := full
			tc.mutate(&deps)
			svc, err := service.NewLessonService(deps, nil)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tc.name+" cannot be nil")
		})
	}
}

func TestCreateLesson_TopicRunsThroughDemoPipeline(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.expectCommits(1)
	svc := env.lessonService(t, demoClient(t, env))
	userID := uuid.New()

	created, err := svc.CreateLesson(context.Background(), userID, service.CreateLessonInput{
		RawContent: "Mughal Empire",
	})
	require.NoError(t, err)

	lesson := created.Lesson
	assert.Equal(t, "Mughal Empire", lesson.Title)
	assert.Equal(t, domain.SourceKindTopic, lesson.SourceKind)
	assert.Equal(t, domain.CategoryHistoricalPeriod, lesson.Category)
	assert.Equal(t, domain.ExamUPSC, lesson.ExamFocus)
	assert.Equal(t, domain.LessonStatusActive, lesson.Status)
	assert.Equal(t, userID, lesson.UserID)

	assert.Equal(t, domain.ArtifactGenerated, created.OverviewState)
	require.NotNil(t, created.Overview)
	tabTypes := make(map[domain.TabType]bool)
	for _, tab := range created.Overview.Tabs {
		tabTypes[tab.Type] = true
	}
	assert.Equal(t, map[domain.TabType]bool{
		domain.TabRulers:   true,
		domain.TabTimeline: true,
		domain.TabList:     true,
		domain.TabPoints:   true,
	}, tabTypes)

	stored, err := env.lessons.GetByID(context.Background(), lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, lesson.Title, stored.Title)

	overview, err := env.artifacts.GetRoom(context.Background(), lesson.ID, domain.RoomClarity)
	require.NoError(t, err)
	assert.Equal(t, created.Overview.Summary, overview.Overview.Summary)

	claim, err := env.claims.Get(context.Background(), lesson.ID, domain.RoomClarity)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimGenerated, claim.Status)
}

func TestCreateLesson_OverridesSkipClassification(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.expectCommits(1)

	var schemaName string
	gen := generatorFunc(func(ctx context.Context, p prompt.Prompt) (json.RawMessage, error) {
		schemaName = p.Schema.Name
		return nil, generation.ErrGenerationFailed
	})
	svc := env.lessonService(t, gen)

	category := domain.CategoryScience
	exam := domain.ExamSSC
	created, err := svc.CreateLesson(context.Background(), uuid.New(), service.CreateLessonInput{
		RawContent: "Mughal Empire",
		Category:   &category,
		ExamFocus:  &exam,
		Subject:    "  History  ",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryScience, created.Lesson.Category)
	assert.Equal(t, domain.ExamSSC, created.Lesson.ExamFocus)
	assert.Equal(t, "History", created.Lesson.Subject)
	assert.Equal(t, "overview_science", schemaName)
}

func TestCreateLesson_OverviewFailureServesPlaceholder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.expectCommits(1)

	provider := &mocks.MockProvider{Responses: []mocks.Response{{Err: errors.New("upstream returned 503")}}}
	client, err := generation.NewClient(provider, nil, generation.ClientConfig{}, env.logger)
	require.NoError(t, err)
	svc := env.lessonService(t, client)

	created, err := svc.CreateLesson(context.Background(), uuid.New(), service.CreateLessonInput{
		RawContent: "Mughal Empire",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ArtifactPlaceholder, created.OverviewState)
	require.NotNil(t, created.Overview)
	assert.NotEmpty(t, created.Overview.Tabs)
	assert.Equal(t, 1, provider.CallCount())

	_, err = env.lessons.GetByID(context.Background(), created.Lesson.ID)
	require.NoError(t, err, "lesson is stored even without an overview")
	assert.Zero(t, env.artifacts.BatchCount(created.Lesson.ID, domain.RoomClarity))

	_, err = env.claims.Get(context.Background(), created.Lesson.ID, domain.RoomClarity)
	assert.ErrorIs(t, err, store.ErrClaimNotFound, "clarity stays claimable for lazy generation")
}

func TestCreateLesson_InvalidOverviewServesPlaceholder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.expectCommits(1)
	gen := generatorFunc(func(ctx context.Context, p prompt.Prompt) (json.RawMessage, error) {
		return json.RawMessage(`{"summary":"","tabs":[]}`), nil
	})
	svc := env.lessonService(t, gen)

	created, err := svc.CreateLesson(context.Background(), uuid.New(), service.CreateLessonInput{
		RawContent: "Mughal Empire",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ArtifactPlaceholder, created.OverviewState)
}

func TestCreateLesson_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty content", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.lessonService(t, demoClient(t, env))

		_, err := svc.CreateLesson(context.Background(), uuid.New(), service.CreateLessonInput{RawContent: "   "})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("source fetch failure", func(t *testing.T) {
		env := newTestEnv(t)
		resolver := resolverFunc(func(ctx context.Context, raw string) (source.Material, error) {
			return source.Material{}, fmt.Errorf("%w: status 404", source.ErrFetchFailed)
		})
		svc := env.lessonServiceWith(t, resolver, demoClient(t, env))

		_, err := svc.CreateLesson(context.Background(), uuid.New(), service.CreateLessonInput{
			RawContent: "https://example.com/missing",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, source.ErrFetchFailed)

		var svcErr *service.LessonServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "create_lesson", svcErr.Operation)
	})

	t.Run("store failure rolls back", func(t *testing.T) {
		env := newTestEnv(t)
		env.sql.ExpectBegin()
		env.sql.ExpectRollback()
		env.lessons.CreateErr = store.ErrTransactionFailed
		svc := env.lessonService(t, demoClient(t, env))

		_, err := svc.CreateLesson(context.Background(), uuid.New(), service.CreateLessonInput{
			RawContent: "Mughal Empire",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrTransactionFailed)
	})
}

func TestGetLesson_Ownership(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := env.lessonService(t, demoClient(t, env))
	owner := uuid.New()
	lesson := env.storedLesson(t, owner)

	got, err := svc.GetLesson(context.Background(), owner, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, lesson.ID, got.ID)

	_, err = svc.GetLesson(context.Background(), uuid.New(), lesson.ID)
	assert.ErrorIs(t, err, service.ErrNotOwned)

	_, err = svc.GetLesson(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, service.ErrLessonNotFound)
}

func TestListLessons_Paging(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := env.lessonService(t, demoClient(t, env))
	owner := uuid.New()
	for i := 0; i < 3; i++ {
		env.storedLesson(t, owner)
	}
	env.storedLesson(t, uuid.New())

	all, err := svc.ListLessons(context.Background(), owner, 0, -5)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := svc.ListLessons(context.Background(), owner, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	capped, err := svc.ListLessons(context.Background(), owner, service.MaxPageSize*10, 0)
	require.NoError(t, err)
	assert.Len(t, capped, 3)
}

func TestArchiveLesson(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := env.lessonService(t, demoClient(t, env))
	owner := uuid.New()
	lesson := env.storedLesson(t, owner)

	archived, err := svc.ArchiveLesson(context.Background(), owner, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LessonStatusArchived, archived.Status)

	again, err := svc.ArchiveLesson(context.Background(), owner, lesson.ID)
	require.NoError(t, err, "archiving twice is a no-op")
	assert.Equal(t, domain.LessonStatusArchived, again.Status)

	_, err = svc.ArchiveLesson(context.Background(), uuid.New(), lesson.ID)
	assert.ErrorIs(t, err, service.ErrNotOwned)
}
