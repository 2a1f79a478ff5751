package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/registration/draft"
	"onboard/internal/registration/models"
	"onboard/internal/registration/service"
	"onboard/pkg/testutil"
)

const testWindow = 20 * time.Millisecond

// takenLookup reports the listed usernames as taken and everything else as
// available, recording every candidate it saw.
type takenLookup struct {
	mu          sync.Mutex
	taken       map[string][]string
	seen        []string
	delay       time.Duration
	callsByName map[string]int
}

func newTakenLookup(taken map[string][]string) *takenLookup {
	return &takenLookup{taken: taken, callsByName: make(map[string]int)}
}

func (l *takenLookup) CheckAvailability(_ context.Context, candidate string) (models.UsernameCheck, error) {
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, candidate)
	l.callsByName[candidate]++
	if suggestions, ok := l.taken[candidate]; ok {
		return models.UsernameCheck{Available: false, Suggestions: suggestions}, nil
	}
	return models.UsernameCheck{Available: true, Suggestions: []string{}}, nil
}

type registrarFunc func(ctx context.Context, req models.AccountCreateRequest) (models.AccountCreateResult, error)

func (f registrarFunc) Register(ctx context.Context, req models.AccountCreateRequest) (models.AccountCreateResult, error) {
	return f(ctx, req)
}

func okRegistrar() service.AccountRegistrar {
	return registrarFunc(func(_ context.Context, _ models.AccountCreateRequest) (models.AccountCreateResult, error) {
		return models.AccountCreateResult{Success: true}, nil
	})
}

func newTestManager(t *testing.T, lookup *takenLookup) (*Manager, *draft.Store) {
	t.Helper()
	drafts, err := draft.New(draft.NewMemoryKV())
	require.NoError(t, err)
	pipeline, err := service.New(okRegistrar(), service.WithDraftStore(drafts))
	require.NoError(t, err)
	return NewManager(drafts, lookup, pipeline, WithDebounceWindow(testWindow)), drafts
}

func validDetails(username string) models.PersonalDetails {
	return models.PersonalDetails{
		Username:    username,
		FirstName:   "Bob",
		LastName:    "Jones",
		Gender:      "male",
		DateOfBirth: "1990-04-12",
	}
}

func validComm() models.Communication {
	return models.Communication{
		Email:        "bob@example.com",
		PhoneNumbers: []string{"+1 555 0100"},
	}
}

func validCreds() models.Credentials {
	return models.Credentials{Password: "Ab1!aaaa", ConfirmPassword: "Ab1!aaaa"}
}

func TestTakenUsernameBlocksAdvanceUntilSuggestionAccepted(t *testing.T) {
	lookup := newTakenLookup(map[string][]string{"bob": {"bob123"}})
	mgr, _ := newTestManager(t, lookup)
	ctx := context.Background()

	s, recovered, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	require.False(t, recovered)
	t.Cleanup(func() { mgr.Dispose(s.ID()) })

	testutil.Given(t, "valid personal details with a taken username", func(t *testing.T) {})
	s.UpdateDraft(ctx, validDetails("bob"), validComm())

	res, err := s.CheckUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, []string{"bob123"}, res.Suggestions)

	testutil.When(t, "the user tries to advance", func(t *testing.T) {})
	step, ok := s.Advance(ctx)
	assert.False(t, ok)
	assert.Equal(t, 1, step)

	testutil.Then(t, "accepting a suggested username unblocks the step", func(t *testing.T) {})
	s.UpdateDraft(ctx, validDetails("bob123"), validComm())
	res, err = s.CheckUsername(ctx, "bob123")
	require.NoError(t, err)
	require.True(t, res.Available)

	step, ok = s.Advance(ctx)
	assert.True(t, ok)
	assert.Equal(t, 2, step)
}

func TestAdvancePerformsImmediateCheckWhenNoResultHeld(t *testing.T) {
	lookup := newTakenLookup(nil)
	mgr, _ := newTestManager(t, lookup)
	ctx := context.Background()

	s, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Dispose(s.ID()) })

	// Only field state is set; no debounced check had a chance to settle.
	s.mu.Lock()
	s.details = validDetails("carol")
	s.mu.Unlock()

	step, ok := s.Advance(ctx)
	assert.True(t, ok)
	assert.Equal(t, 2, step)

	lookup.mu.Lock()
	defer lookup.mu.Unlock()
	assert.Contains(t, lookup.seen, "carol")
}

func TestAdvanceBlockedByFieldErrors(t *testing.T) {
	lookup := newTakenLookup(nil)
	mgr, _ := newTestManager(t, lookup)
	ctx := context.Background()

	s, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Dispose(s.ID()) })

	d := validDetails(" ")
	d.DateOfBirth = "12/04/1990"
	s.UpdateDraft(ctx, d, validComm())

	step, ok := s.Advance(ctx)
	assert.False(t, ok)
	assert.Equal(t, 1, step)

	// No lookup should have been spent on an invalid form.
	lookup.mu.Lock()
	defer lookup.mu.Unlock()
	assert.Empty(t, lookup.seen)
}

func TestRetreatKeepsEnteredData(t *testing.T) {
	lookup := newTakenLookup(nil)
	mgr, _ := newTestManager(t, lookup)
	ctx := context.Background()

	s, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Dispose(s.ID()) })

	s.UpdateDraft(ctx, validDetails("erin"), validComm())
	_, ok := s.Advance(ctx)
	require.True(t, ok)

	step, ok := s.Retreat()
	assert.True(t, ok)
	assert.Equal(t, 1, step)

	view := s.State()
	assert.Equal(t, "erin", view.PersonalDetails.Username)
	assert.Equal(t, "bob@example.com", view.Communication.Email)
}

func TestDraftPersistedOnUpdateAndAdvance(t *testing.T) {
	lookup := newTakenLookup(nil)
	mgr, drafts := newTestManager(t, lookup)
	ctx := context.Background()

	s, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Dispose(s.ID()) })

	s.UpdateDraft(ctx, validDetails("frank"), validComm())

	d := drafts.Load(ctx, s.ID())
	require.NotNil(t, d)
	assert.Equal(t, 1, d.Step)
	assert.Equal(t, "frank", d.PersonalDetails.Username)

	_, ok := s.Advance(ctx)
	require.True(t, ok)

	d = drafts.Load(ctx, s.ID())
	require.NotNil(t, d)
	assert.Equal(t, 2, d.Step)
}

func TestUpdateDraftFeedsDebouncedChecker(t *testing.T) {
	lookup := newTakenLookup(nil)
	mgr, _ := newTestManager(t, lookup)
	ctx := context.Background()

	s, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Dispose(s.ID()) })

	for _, candidate := range []string{"g", "gr", "gra", "grace"} {
		s.UpdateDraft(ctx, validDetails(candidate), validComm())
	}
	time.Sleep(4 * testWindow)

	lookup.mu.Lock()
	defer lookup.mu.Unlock()
	require.Len(t, lookup.seen, 1)
	assert.Equal(t, "grace", lookup.seen[0])
}

func TestSubmitSuccessReachesTerminalStateAndClearsDraft(t *testing.T) {
	lookup := newTakenLookup(nil)
	mgr, drafts := newTestManager(t, lookup)
	ctx := context.Background()

	s, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Dispose(s.ID()) })

	s.UpdateDraft(ctx, validDetails("heidi"), validComm())
	_, ok := s.Advance(ctx)
	require.True(t, ok)
	_, ok = s.Advance(ctx)
	require.True(t, ok)

	outcome := s.Submit(ctx, validCreds())
	require.True(t, outcome.Success)

	view := s.State()
	assert.True(t, view.Submitted)
	assert.Nil(t, drafts.Load(ctx, s.ID()))

	// Terminal: no further transitions in either direction.
	_, ok = s.Retreat()
	assert.False(t, ok)
	_, ok = s.Advance(ctx)
	assert.False(t, ok)
}

func TestSubmitFailureLeavesDraftRecoverable(t *testing.T) {
	lookup := newTakenLookup(nil)
	drafts, err := draft.New(draft.NewMemoryKV())
	require.NoError(t, err)
	failing := registrarFunc(func(_ context.Context, _ models.AccountCreateRequest) (models.AccountCreateResult, error) {
		return models.AccountCreateResult{}, &models.RemoteError{StatusCode: 500, Message: "boom"}
	})
	pipeline, err := service.New(failing, service.WithDraftStore(drafts))
	require.NoError(t, err)
	mgr := NewManager(drafts, lookup, pipeline, WithDebounceWindow(testWindow))
	ctx := context.Background()

	s, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Dispose(s.ID()) })

	s.UpdateDraft(ctx, validDetails("ivan"), validComm())

	outcome := s.Submit(ctx, validCreds())
	require.False(t, outcome.Success)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, models.ErrorServer, outcome.Failure.Kind)

	assert.False(t, s.State().Submitted)
	assert.NotNil(t, drafts.Load(ctx, s.ID()))
}

func TestDraftRecoveryRestoresStepAndFields(t *testing.T) {
	lookup := newTakenLookup(nil)
	mgr, drafts := newTestManager(t, lookup)
	ctx := context.Background()

	first, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	first.UpdateDraft(ctx, validDetails("judy"), validComm())
	_, ok := first.Advance(ctx)
	require.True(t, ok)

	id := first.ID()
	require.True(t, mgr.Dispose(id))
	require.NotNil(t, drafts.Load(ctx, id), "draft must survive disposal")

	second, recovered, err := mgr.Create(ctx, id)
	require.NoError(t, err)
	require.True(t, recovered)
	t.Cleanup(func() { mgr.Dispose(second.ID()) })

	view := second.State()
	assert.Equal(t, id, view.ID)
	assert.Equal(t, 2, view.Step)
	assert.Equal(t, "judy", view.PersonalDetails.Username)
	assert.Equal(t, "bob@example.com", view.Communication.Email)
}

func TestCreateWithUnknownRequestedIDStartsFresh(t *testing.T) {
	lookup := newTakenLookup(nil)
	mgr, _ := newTestManager(t, lookup)

	s, recovered, err := mgr.Create(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, recovered)
	assert.Equal(t, "nope", s.ID())
	assert.Equal(t, 1, s.State().Step)
	t.Cleanup(func() { mgr.Dispose(s.ID()) })
}

func TestCreateReturnsLiveSessionForSameID(t *testing.T) {
	lookup := newTakenLookup(nil)
	mgr, _ := newTestManager(t, lookup)
	ctx := context.Background()

	first, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Dispose(first.ID()) })

	again, recovered, err := mgr.Create(ctx, first.ID())
	require.NoError(t, err)
	assert.False(t, recovered)
	assert.Same(t, first, again)
	assert.Equal(t, 1, mgr.Len())
}

func TestDisposeStopsCheckerAndIsIdempotent(t *testing.T) {
	lookup := newTakenLookup(nil)
	mgr, _ := newTestManager(t, lookup)
	ctx := context.Background()

	s, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)

	s.SubmitUsername("kate")
	require.True(t, mgr.Dispose(s.ID()))
	assert.False(t, mgr.Dispose(s.ID()))

	time.Sleep(3 * testWindow)
	lookup.mu.Lock()
	defer lookup.mu.Unlock()
	assert.Empty(t, lookup.seen, "pending debounced lookup must die with the session")
}

func TestReapDisposesIdleSessions(t *testing.T) {
	lookup := newTakenLookup(nil)
	drafts, err := draft.New(draft.NewMemoryKV())
	require.NoError(t, err)
	pipeline, err := service.New(okRegistrar(), service.WithDraftStore(drafts))
	require.NoError(t, err)
	mgr := NewManager(drafts, lookup, pipeline,
		WithDebounceWindow(testWindow),
		WithIdleTTL(10*time.Millisecond),
	)
	ctx := context.Background()

	idle, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	busy, _, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Dispose(busy.ID()) })

	time.Sleep(20 * time.Millisecond)
	busy.SubmitUsername("leo")

	mgr.reap(time.Now())

	_, ok := mgr.Get(idle.ID())
	assert.False(t, ok)
	_, ok = mgr.Get(busy.ID())
	assert.True(t, ok)
}

func TestUsernameComparisonIgnoresCaseAndPadding(t *testing.T) {
	assert.True(t, sameCandidate("  Alice ", "alice"))
	assert.False(t, sameCandidate("alice", "alicia"))
	assert.True(t, sameCandidate(strings.ToUpper("bob"), "bob"))
}
