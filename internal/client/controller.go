package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"feedbackhub-backend/internal/auth"
	"feedbackhub-backend/internal/models"
	"feedbackhub-backend/internal/service"

	"go.uber.org/zap"
)

type View string

const (
	ViewSubmit View = "submit"
	ViewLogin  View = "login"
	ViewAdmin  View = "admin"
)

const (
	msgLoginFailed    = "Login failed. Check username/password or backend connection."
	msgSessionExpired = "Session expired. Please log in again."
	msgSubmitted      = "Thank you for your feedback!"
	msgSubmitFailed   = "Error submitting feedback. Please try again."
	msgUnreachable    = "Could not reach the server. Please try again."
	msgNotFound       = "That feedback no longer exists."

	DeletePrompt = "Are you sure you want to delete this feedback?"
)

var (
	// ErrSuperseded is returned when a response arrived after a newer request
	// or a view change made it irrelevant. The response was discarded.
	ErrSuperseded    = errors.New("response superseded by a newer request")
	ErrNotConfirmed  = errors.New("deletion not confirmed")
	ErrNoDraft       = errors.New("no feedback is being edited")
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrUnknownRecord = errors.New("record is not in the current list")
)

// EditDraft is the unsaved edit of one record.
type EditDraft struct {
	ID         string
	Rating     int
	ReviewText string
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	View     View
	LoggedIn bool
	Loading  bool
	Records  []models.Feedback
	Stats    models.Stats
	Editing  *EditDraft
	Message  string
	Err      error
}

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// Controller holds the admin session and the dashboard state and drives the
// API. It is safe for concurrent use; list responses are applied only when
// they belong to the most recent refresh of the current session.
type Controller struct {
	api     API
	confirm ConfirmFunc
	logger  *zap.SugaredLogger

	mu         sync.Mutex
	credential models.Credential
	view       View
	records    []models.Feedback
	stats      models.Stats
	draft      *EditDraft
	loading    bool
	message    string
	lastErr    error

	// listSeq numbers refresh requests; session changes on login, logout and navigation.
	listSeq uint64
	session uint64
}

func NewController(api API, confirm ConfirmFunc, logger *zap.SugaredLogger) *Controller {
	if confirm == nil {
		confirm = func(string) bool { return false }
	}
	return &Controller{
		api:     api,
		confirm: confirm,
		logger:  logger,
		view:    ViewSubmit,
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		View:     c.view,
		LoggedIn: !c.credential.IsZero(),
		Loading:  c.loading,
		Records:  append([]models.Feedback(nil), c.records...),
		Stats:    c.stats,
		Message:  c.message,
		Err:      c.lastErr,
	}
	if c.draft != nil {
		d := *c.draft
		s.Editing = &d
	}
	return s
}

// Login authenticates, switches to the admin view and loads the list. A
// response that arrives after the user navigated or logged out is dropped.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	cred, err := c.api.Login(ctx, username, password)

	c.mu.Lock()
	if session != c.session {
		c.mu.Unlock()
		c.logger.Debugw("discarding stale login response")
		return ErrSuperseded
	}
	if err != nil {
		c.message = msgLoginFailed
		c.lastErr = err
		c.mu.Unlock()
		return err
	}
	c.credential = cred
	c.view = ViewAdmin
	c.session++
	c.message = ""
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Debugw("logged in", "expires_at", cred.ExpiresAt)
	return ignoreSuperseded(c.Refresh(ctx))
}

// Logout forgets the credential locally. Nothing is sent to the server.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetSessionLocked(ViewSubmit)
	c.message = ""
	c.lastErr = nil
}

// Navigate switches view. Responses still in flight for the previous view are
// discarded. Entering the admin view reloads the list.
func (c *Controller) Navigate(ctx context.Context, v View) error {
	c.mu.Lock()
	if v == ViewAdmin && c.credential.IsZero() {
		v = ViewLogin
	}
	c.view = v
	c.session++
	c.loading = false
	c.mu.Unlock()

	if v == ViewAdmin {
		return ignoreSuperseded(c.Refresh(ctx))
	}
	return nil
}

// Refresh fetches the list and stats. If another refresh was issued after
// this one, or the session or view changed meanwhile, the response is dropped
// and ErrSuperseded is returned.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	token, err := c.tokenLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.listSeq++
	seq, session := c.listSeq, c.session
	c.loading = true
	c.mu.Unlock()

	list, err := c.api.List(ctx, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.listSeq || session != c.session || c.view != ViewAdmin {
		c.logger.Debugw("discarding stale list response", "seq", seq, "latest", c.listSeq)
		return ErrSuperseded
	}
	c.loading = false
	if err != nil {
		c.failLocked(err)
		return err
	}
	c.records = list.Feedback
	c.stats = list.Stats
	c.lastErr = nil
	return nil
}

// StartEdit copies the record's editable fields into the draft. Any other
// unsaved draft is dropped.
func (c *Controller) StartEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.records {
		if r.ID == id {
			c.draft = &EditDraft{ID: r.ID, Rating: r.Rating, ReviewText: r.ReviewText}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownRecord, id)
}

func (c *Controller) SetDraftRating(rating int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return ErrNoDraft
	}
	c.draft.Rating = rating
	return nil
}

func (c *Controller) SetDraftText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return ErrNoDraft
	}
	c.draft.ReviewText = text
	return nil
}

func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.draft = nil
	c.mu.Unlock()
}

// SaveEdit sends the draft and reloads the list from the server. On failure
// the draft is kept so the user can retry.
func (c *Controller) SaveEdit(ctx context.Context) error {
	c.mu.Lock()
	if c.draft == nil {
		c.mu.Unlock()
		return ErrNoDraft
	}
	draft := *c.draft
	token, err := c.tokenLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	rating, text := draft.Rating, draft.ReviewText
	_, err = c.api.Update(ctx, token, draft.ID, models.FeedbackPatch{Rating: &rating, ReviewText: &text})
	if err != nil {
		c.mu.Lock()
		c.failLocked(err)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if c.draft != nil && *c.draft == draft {
		c.draft = nil
	}
	c.mu.Unlock()
	return ignoreSuperseded(c.Refresh(ctx))
}

// Delete asks for confirmation, removes the record and reloads the list.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	token, err := c.tokenLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if !c.confirm(DeletePrompt) {
		return ErrNotConfirmed
	}

	if err := c.api.Delete(ctx, token, id); err != nil {
		c.mu.Lock()
		c.failLocked(err)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if c.draft != nil && c.draft.ID == id {
		c.draft = nil
	}
	c.mu.Unlock()
	return ignoreSuperseded(c.Refresh(ctx))
}

// Submit sends a customer draft from the public form.
func (c *Controller) Submit(ctx context.Context, draft models.FeedbackDraft) (*models.Feedback, error) {
	feedback, err := c.api.Submit(ctx, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.message = msgSubmitFailed
		c.lastErr = err
		return nil, err
	}
	c.message = msgSubmitted
	c.lastErr = nil
	return feedback, nil
}

// tokenLocked returns the bearer token, or ErrAuthentication when the held
// credential has already expired. Callers hold c.mu.
func (c *Controller) tokenLocked() (string, error) {
	if c.credential.IsZero() {
		return "", ErrNotLoggedIn
	}
	if c.credential.IsExpired() {
		c.resetSessionLocked(ViewLogin)
		c.message = msgSessionExpired
		c.lastErr = auth.ErrAuthentication
		return "", auth.ErrAuthentication
	}
	return c.credential.Token, nil
}

// failLocked records err for display. An authentication failure ends the
// session since the token can no longer be used.
func (c *Controller) failLocked(err error) {
	c.lastErr = err
	switch {
	case errors.Is(err, auth.ErrAuthentication):
		c.resetSessionLocked(ViewLogin)
		c.message = msgSessionExpired
	case errors.Is(err, ErrConnectivity):
		c.message = msgUnreachable
	case errors.Is(err, service.ErrNotFound):
		c.message = msgNotFound
	default:
		c.message = err.Error()
	}
}

func (c *Controller) resetSessionLocked(v View) {
	c.credential = models.Credential{}
	c.view = v
	c.session++
	c.records = nil
	c.stats = models.Stats{}
	c.draft = nil
	c.loading = false
}

func ignoreSuperseded(err error) error {
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	return err
}
