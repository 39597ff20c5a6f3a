package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"feedbackhub-backend/internal/auth"
	"feedbackhub-backend/internal/models"
	"feedbackhub-backend/internal/service"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu      sync.Mutex
	cred    models.Credential
	listFn  func(ctx context.Context, token string) (*models.FeedbackList, error)
	calls   []string
	patches []models.FeedbackPatch
	delErr  error

	// loginHook runs inside Login before it answers.
	loginHook func()
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (models.Credential, error) {
	f.record("login")
	if f.loginHook != nil {
		f.loginHook()
	}
	if username != "admin" || password != "password123" {
		return models.Credential{}, fmt.Errorf("%w: invalid credentials", auth.ErrAuthentication)
	}
	return f.cred, nil
}

func (f *fakeAPI) Submit(_ context.Context, draft models.FeedbackDraft) (*models.Feedback, error) {
	f.record("submit")
	if draft.Rating < 1 || draft.Rating > 5 {
		return nil, &service.ValidationError{Fields: map[string]string{"rating": "must be an integer between 1 and 5"}}
	}
	return &models.Feedback{ID: "new", ProductID: draft.ProductID, Rating: draft.Rating}, nil
}

func (f *fakeAPI) List(ctx context.Context, token string) (*models.FeedbackList, error) {
	f.record("list")
	f.mu.Lock()
	fn := f.listFn
	f.mu.Unlock()
	return fn(ctx, token)
}

func (f *fakeAPI) Update(_ context.Context, _, id string, patch models.FeedbackPatch) (*models.Feedback, error) {
	f.record("update " + id)
	f.mu.Lock()
	f.patches = append(f.patches, patch)
	f.mu.Unlock()
	return &models.Feedback{ID: id}, nil
}

func (f *fakeAPI) Delete(_ context.Context, _, id string) error {
	f.record("delete " + id)
	return f.delErr
}

func listOf(records ...models.Feedback) *models.FeedbackList {
	return &models.FeedbackList{Feedback: records, Stats: service.ComputeStats(records)}
}

var (
	recA = models.Feedback{ID: "a", ProductID: "P1", CustomerName: "Ann", Rating: 5, ReviewText: "great"}
	recB = models.Feedback{ID: "b", ProductID: "P2", CustomerName: "Bob", Rating: 2, ReviewText: "meh"}
)

func newFake(list *models.FeedbackList) *fakeAPI {
	return &fakeAPI{
		cred: models.Credential{Token: "tok", TokenType: "Bearer", ExpiresAt: time.Now().Add(time.Hour)},
		listFn: func(context.Context, string) (*models.FeedbackList, error) {
			return list, nil
		},
	}
}

func loggedIn(t *testing.T, api *fakeAPI, confirm ConfirmFunc) *Controller {
	t.Helper()
	c := NewController(api, confirm, zap.NewNop().Sugar())
	require.NoError(t, c.Login(context.Background(), "admin", "password123"))
	return c
}

func TestController_LoginLoadsDashboard(t *testing.T) {
	api := newFake(listOf(recA, recB))
	c := NewController(api, nil, zap.NewNop().Sugar())
	assert.Equal(t, ViewSubmit, c.Snapshot().View)

	require.NoError(t, c.Login(context.Background(), "admin", "password123"))

	snap := c.Snapshot()
	assert.Equal(t, ViewAdmin, snap.View)
	assert.True(t, snap.LoggedIn)
	assert.False(t, snap.Loading)
	assert.Empty(t, cmp.Diff([]models.Feedback{recA, recB}, snap.Records))
	assert.Equal(t, models.Stats{Total: 2, AverageRating: 3.5}, snap.Stats)
	assert.Equal(t, []string{"login", "list"}, api.Calls())
}

func TestController_LoginFailure(t *testing.T) {
	api := newFake(listOf())
	c := NewController(api, nil, zap.NewNop().Sugar())

	err := c.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, auth.ErrAuthentication)

	snap := c.Snapshot()
	assert.False(t, snap.LoggedIn)
	assert.Equal(t, ViewSubmit, snap.View)
	assert.Equal(t, msgLoginFailed, snap.Message)
	assert.Equal(t, []string{"login"}, api.Calls())
}

func TestController_LogoutMakesNoCalls(t *testing.T) {
	api := newFake(listOf(recA))
	c := loggedIn(t, api, nil)
	require.NoError(t, c.StartEdit("a"))
	before := len(api.Calls())

	c.Logout()

	snap := c.Snapshot()
	assert.Equal(t, ViewSubmit, snap.View)
	assert.False(t, snap.LoggedIn)
	assert.Empty(t, snap.Records)
	assert.Nil(t, snap.Editing)
	assert.Len(t, api.Calls(), before)

	assert.ErrorIs(t, c.Refresh(context.Background()), ErrNotLoggedIn)
}

func TestController_StaleRefreshIsDiscarded(t *testing.T) {
	api := newFake(listOf(recA))
	c := loggedIn(t, api, nil)

	var n atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	api.mu.Lock()
	api.listFn = func(context.Context, string) (*models.FeedbackList, error) {
		if n.Add(1) == 1 {
			close(started)
			<-release
			return listOf(recA), nil
		}
		return listOf(recA, recB), nil
	}
	api.mu.Unlock()

	slow := make(chan error, 1)
	go func() { slow <- c.Refresh(context.Background()) }()
	<-started

	require.NoError(t, c.Refresh(context.Background()))
	close(release)

	assert.ErrorIs(t, <-slow, ErrSuperseded)
	snap := c.Snapshot()
	assert.Empty(t, cmp.Diff([]models.Feedback{recA, recB}, snap.Records))
	assert.Equal(t, 2, snap.Stats.Total)
}

func TestController_NavigationAbandonsInFlightRefresh(t *testing.T) {
	api := newFake(listOf())
	c := loggedIn(t, api, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	api.mu.Lock()
	api.listFn = func(context.Context, string) (*models.FeedbackList, error) {
		close(started)
		<-release
		return listOf(recA), nil
	}
	api.mu.Unlock()

	slow := make(chan error, 1)
	go func() { slow <- c.Refresh(context.Background()) }()
	<-started

	require.NoError(t, c.Navigate(context.Background(), ViewSubmit))
	close(release)

	assert.ErrorIs(t, <-slow, ErrSuperseded)
	snap := c.Snapshot()
	assert.Equal(t, ViewSubmit, snap.View)
	assert.Empty(t, snap.Records)
}

func TestController_NavigationAbandonsInFlightLogin(t *testing.T) {
	api := newFake(listOf(recA))
	started := make(chan struct{})
	release := make(chan struct{})
	api.loginHook = func() {
		close(started)
		<-release
	}
	c := NewController(api, nil, zap.NewNop().Sugar())

	slow := make(chan error, 1)
	go func() { slow <- c.Login(context.Background(), "admin", "password123") }()
	<-started

	require.NoError(t, c.Navigate(context.Background(), ViewSubmit))
	close(release)

	assert.ErrorIs(t, <-slow, ErrSuperseded)
	snap := c.Snapshot()
	assert.Equal(t, ViewSubmit, snap.View)
	assert.False(t, snap.LoggedIn)
	assert.Empty(t, snap.Records)
	assert.Equal(t, []string{"login"}, api.Calls())
}

func TestController_NavigateToAdminWithoutCredential(t *testing.T) {
	api := newFake(listOf())
	c := NewController(api, nil, zap.NewNop().Sugar())

	require.NoError(t, c.Navigate(context.Background(), ViewAdmin))
	assert.Equal(t, ViewLogin, c.Snapshot().View)
	assert.Empty(t, api.Calls())
}

func TestController_SessionExpired(t *testing.T) {
	api := newFake(listOf(recA))
	c := loggedIn(t, api, nil)

	api.mu.Lock()
	api.listFn = func(context.Context, string) (*models.FeedbackList, error) {
		return nil, fmt.Errorf("%w: invalid or expired token", auth.ErrAuthentication)
	}
	api.mu.Unlock()

	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, auth.ErrAuthentication)

	snap := c.Snapshot()
	assert.Equal(t, ViewLogin, snap.View)
	assert.False(t, snap.LoggedIn)
	assert.Equal(t, msgSessionExpired, snap.Message)
}

func TestController_LocallyExpiredCredential(t *testing.T) {
	api := newFake(listOf())
	api.cred.ExpiresAt = time.Now().Add(-time.Minute)
	c := NewController(api, nil, zap.NewNop().Sugar())

	err := c.Login(context.Background(), "admin", "password123")
	require.ErrorIs(t, err, auth.ErrAuthentication)
	assert.Equal(t, []string{"login"}, api.Calls())
	assert.Equal(t, ViewLogin, c.Snapshot().View)
}

func TestController_EditDraft(t *testing.T) {
	api := newFake(listOf(recA, recB))
	c := loggedIn(t, api, nil)

	require.NoError(t, c.StartEdit("a"))
	require.NoError(t, c.SetDraftRating(3))

	// Starting another edit drops the unsaved change without asking.
	require.NoError(t, c.StartEdit("b"))
	assert.Equal(t, &EditDraft{ID: "b", Rating: 2, ReviewText: "meh"}, c.Snapshot().Editing)

	require.NoError(t, c.SetDraftText("better now"))
	require.NoError(t, c.SaveEdit(context.Background()))

	assert.Nil(t, c.Snapshot().Editing)
	require.Len(t, api.patches, 1)
	assert.Equal(t, 2, *api.patches[0].Rating)
	assert.Equal(t, "better now", *api.patches[0].ReviewText)
	assert.Equal(t, []string{"login", "list", "update b", "list"}, api.Calls())

	assert.ErrorIs(t, c.SaveEdit(context.Background()), ErrNoDraft)
	assert.ErrorIs(t, c.StartEdit("missing"), ErrUnknownRecord)

	require.NoError(t, c.StartEdit("a"))
	c.CancelEdit()
	assert.Nil(t, c.Snapshot().Editing)
	assert.ErrorIs(t, c.SetDraftRating(1), ErrNoDraft)
}

func TestController_DeleteRequiresConfirmation(t *testing.T) {
	api := newFake(listOf(recA))
	var prompts []string
	answer := false
	c := loggedIn(t, api, func(prompt string) bool {
		prompts = append(prompts, prompt)
		return answer
	})

	err := c.Delete(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Equal(t, []string{"login", "list"}, api.Calls())

	answer = true
	require.NoError(t, c.Delete(context.Background(), "a"))
	assert.Equal(t, []string{"login", "list", "delete a", "list"}, api.Calls())
	assert.Equal(t, []string{DeletePrompt, DeletePrompt}, prompts)
}

func TestController_DeleteNotFound(t *testing.T) {
	api := newFake(listOf(recA))
	api.delErr = fmt.Errorf("%w: feedback not found", service.ErrNotFound)
	c := loggedIn(t, api, func(string) bool { return true })

	err := c.Delete(context.Background(), "gone")
	require.ErrorIs(t, err, service.ErrNotFound)

	snap := c.Snapshot()
	assert.Equal(t, msgNotFound, snap.Message)
	assert.True(t, snap.LoggedIn)
}

func TestController_Submit(t *testing.T) {
	api := newFake(listOf())
	c := NewController(api, nil, zap.NewNop().Sugar())

	fb, err := c.Submit(context.Background(), models.FeedbackDraft{ProductID: "P1", CustomerName: "Ann", Rating: 4, ReviewText: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "new", fb.ID)
	assert.Equal(t, msgSubmitted, c.Snapshot().Message)

	_, err = c.Submit(context.Background(), models.FeedbackDraft{ProductID: "P1", CustomerName: "Ann", Rating: 9, ReviewText: "ok"})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "rating")
	assert.Equal(t, msgSubmitFailed, c.Snapshot().Message)
}
