package novel

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collab-novel-api/internal/application/generation"
	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/internal/domain/repository"
	"collab-novel-api/internal/infrastructure/messaging"
	"collab-novel-api/internal/testutil"
	apperrors "collab-novel-api/pkg/errors"
)

type fixture struct {
	svc       *Service
	store     *testutil.Store
	gen       *testutil.Generator
	publisher *testutil.Publisher
	txm       *testutil.Transactor
}

func newFixture(cache IterationCache) *fixture {
	store := testutil.NewStore()
	gen := &testutil.Generator{Output: "generated text"}
	pub := &testutil.Publisher{}
	txm := &testutil.Transactor{}
	svc := NewService(Deps{
		Transactor:  txm,
		StoryInputs: testutil.StoryInputRepo{S: store},
		Iterations:  testutil.IterationRepo{S: store},
		Feedback:    testutil.FeedbackRepo{S: store},
		Generator:   gen,
		Cache:       cache,
		Events:      pub,
	})
	return &fixture{svc: svc, store: store, gen: gen, publisher: pub, txm: txm}
}

func validInput() StoryInputCommand {
	return StoryInputCommand{
		Plot:     "A hero saves the day",
		Setting:  "A futuristic city",
		Theme:    "Courage and bravery",
		Conflict: "An impending disaster",
	}
}

func TestCreateStoryInputMissingFields(t *testing.T) {
	cases := map[string]func(*StoryInputCommand){
		"plot":     func(c *StoryInputCommand) { c.Plot = "" },
		"setting":  func(c *StoryInputCommand) { c.Setting = "   " },
		"theme":    func(c *StoryInputCommand) { c.Theme = "" },
		"conflict": func(c *StoryInputCommand) { c.Conflict = "" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			f := newFixture(nil)
			cmd := validInput()
			mutate(&cmd)

			_, err := f.svc.CreateStoryInput(context.Background(), cmd)
			appErr := apperrors.AsAppError(err)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
			assert.Equal(t, field, appErr.Field)
			assert.Equal(t, "Missing required field: "+field, appErr.Message)
			assert.Empty(t, f.store.Inputs)
			assert.Zero(t, f.txm.Calls)
		})
	}
}

func TestCreateStoryInputPersists(t *testing.T) {
	f := newFixture(nil)
	userID := "2f1c0a8e-6a55-4d4f-9f4b-8cf3b0a1d001"
	cmd := validInput()
	cmd.UserID = &userID
	cmd.AdditionalPreferences = map[string]any{"tone": "dark"}

	input, err := f.svc.CreateStoryInput(context.Background(), cmd)
	require.NoError(t, err)
	require.Len(t, f.store.Inputs, 1)

	stored := f.store.Inputs[input.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "A hero saves the day", stored.Plot)
	assert.Equal(t, userID, *stored.UserID)
	assert.Equal(t, "dark", stored.AdditionalPreferences["tone"])
	assert.Equal(t, []string{messaging.EventStoryInputCreated}, f.publisher.Types())
}

func TestCreateStoryInputDatabaseError(t *testing.T) {
	f := newFixture(nil)
	f.store.Err = errors.New("connection refused")

	_, err := f.svc.CreateStoryInput(context.Background(), validInput())
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeDatabaseError, appErr.Code)
	assert.Empty(t, f.publisher.Types())
}

func TestIterateNovelNumbersStrictlyIncrease(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		f.gen.Output = "  chapter text  "
		it, err := f.svc.IterateNovel(ctx, "the hero wakes up")
		require.NoError(t, err)
		assert.Equal(t, want, it.IterationNumber)
		assert.NotEmpty(t, it.ID)
	}

	latest, err := f.svc.LatestIteration(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, latest.IterationNumber)
	assert.Len(t, f.publisher.Types(), 3)
}

func TestIterateNovelChainsPreviousContent(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	f.gen.Output = "The storm began."
	_, err := f.svc.IterateNovel(ctx, "start with weather")
	require.NoError(t, err)
	assert.Equal(t, "start with weather", f.gen.Prompts[0])

	f.gen.Output = "The ship sank."
	_, err = f.svc.IterateNovel(ctx, "raise the stakes")
	require.NoError(t, err)
	assert.Contains(t, f.gen.Prompts[1], "The storm began.")
	assert.Contains(t, f.gen.Prompts[1], "raise the stakes")
}

func TestIterateNovelRejectsBlankInput(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.IterateNovel(context.Background(), "  ")
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, "input", appErr.Field)
	assert.Empty(t, f.gen.Prompts)
}

func TestIterateNovelGenerationFailureHidesUpstream(t *testing.T) {
	f := newFixture(nil)
	f.gen.Err = testutil.ErrUpstream

	_, err := f.svc.IterateNovel(context.Background(), "go on")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)

	var genErr *generation.GenerationError
	assert.ErrorAs(t, err, &genErr)
	assert.NotContains(t, apperrors.AsAppError(err).Message, "503")
	assert.Empty(t, f.store.Iterations)
}

func TestIterateNovelConflictOnDuplicateNumber(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	f.svc.iterations = racingIterations{IterationRepo: testutil.IterationRepo{S: f.store}}

	_, err := f.svc.IterateNovel(ctx, "go on")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, http.StatusConflict, apperrors.AsAppError(err).HTTPStatus)
}

// racingIterations 模拟并发写入导致的序号冲突
type racingIterations struct {
	testutil.IterationRepo
}

func (r racingIterations) Create(ctx context.Context, it *entity.NovelIteration) error {
	return repository.ErrDuplicateKey
}

func TestLatestIterationNotFound(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.LatestIteration(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrIterationNotFound)
	assert.Equal(t, http.StatusNotFound, apperrors.AsAppError(err).HTTPStatus)
}

func TestLatestIterationPrefersNewestCreatedAt(t *testing.T) {
	f := newFixture(nil)
	now := time.Now().UTC()
	f.store.Iterations = []*entity.NovelIteration{
		{ID: "a", IterationNumber: 1, Content: "old", CreatedAt: now.Add(-time.Minute)},
		{ID: "b", IterationNumber: 2, Content: "tie-low", CreatedAt: now},
		{ID: "c", IterationNumber: 3, Content: "tie-high", CreatedAt: now},
	}

	latest, err := f.svc.LatestIteration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tie-high", latest.Content)
}

type stubCache struct {
	invalidated int
	served      *entity.NovelIteration
}

func (c *stubCache) Latest(ctx context.Context, load func(ctx context.Context) (*entity.NovelIteration, error)) (*entity.NovelIteration, error) {
	if c.served != nil {
		return c.served, nil
	}
	return load(ctx)
}

func (c *stubCache) Invalidate(ctx context.Context) error {
	c.invalidated++
	c.served = nil
	return nil
}

func TestIterateNovelInvalidatesCache(t *testing.T) {
	cache := &stubCache{served: &entity.NovelIteration{ID: "stale", IterationNumber: 9, Content: "stale"}}
	f := newFixture(cache)

	got, err := f.svc.LatestIteration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stale", got.ID)

	created, err := f.svc.IterateNovel(context.Background(), "next")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	got, err = f.svc.LatestIteration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestListIterationsNewestFirst(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.IterateNovel(ctx, "more")
		require.NoError(t, err)
	}

	page, err := f.svc.ListIterations(ctx, repository.NewPagination(1, 2))
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Items[0].IterationNumber)
	assert.Equal(t, 2, page.TotalPages)
}

func TestGenerateContent(t *testing.T) {
	f := newFixture(nil)
	f.gen.Output = "Once upon a time"

	out, err := f.svc.GenerateContent(context.Background(), "a fairy tale")
	require.NoError(t, err)
	assert.Equal(t, "Once upon a time", out)

	_, err = f.svc.GenerateContent(context.Background(), "")
	assert.Equal(t, "Input is required.", apperrors.AsAppError(err).Message)

	f.gen.Err = testutil.ErrUpstream
	_, err = f.svc.GenerateContent(context.Background(), "a fairy tale")
	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)
	// 无状态调用，不应写库
	assert.Empty(t, f.store.Iterations)
}

func TestGenerateChapter(t *testing.T) {
	f := newFixture(nil)
	f.gen.Output = "Chapter two text"

	draft, err := f.svc.GenerateChapter(context.Background(), ChapterCommand{
		Title:           "The Return",
		PreviousContent: "They left the city.",
		UserPrompts:     "make it tense",
	})
	require.NoError(t, err)
	assert.Equal(t, "The Return", draft.Title)
	assert.Equal(t, "Chapter two text", draft.Content)
	assert.NotEmpty(t, draft.ID)

	require.Len(t, f.gen.Prompts, 1)
	assert.Equal(t,
		"Title: The Return\nPrevious Content: They left the city.\nUser Prompts: make it tense\nGenerate the next chapter content:",
		f.gen.Prompts[0])
	assert.Equal(t, generation.PurposeChapter, f.gen.Params[0].Purpose)
	assert.Equal(t, 1024, f.gen.Params[0].MaxTokens)

	_, err = f.svc.GenerateChapter(context.Background(), ChapterCommand{})
	assert.Equal(t, "Missing required fields", apperrors.AsAppError(err).Message)
}

func TestSubmitFeedback(t *testing.T) {
	f := newFixture(nil)

	fb, err := f.svc.SubmitFeedback(context.Background(), "Loved the twist", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, fb.ID)
	require.Len(t, f.store.Feedback, 1)
	assert.Equal(t, []string{messaging.EventFeedbackSubmitted}, f.publisher.Types())

	_, err = f.svc.SubmitFeedback(context.Background(), " ", nil)
	assert.Equal(t, "feedback", apperrors.AsAppError(err).Field)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(nil)
	f.publisher.Err = errors.New("redis down")

	_, err := f.svc.SubmitFeedback(context.Background(), "still saved", nil)
	require.NoError(t, err)
	assert.Len(t, f.store.Feedback, 1)
}
