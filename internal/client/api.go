package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"feedbackhub-backend/internal/auth"
	"feedbackhub-backend/internal/models"
	"feedbackhub-backend/internal/service"
)

var (
	// ErrConnectivity wraps transport failures: the backend could not be reached
	// or its response could not be read.
	ErrConnectivity = errors.New("could not reach the feedback service")
	ErrRateLimited  = errors.New("too many requests")
)

// StatusError is an unexpected HTTP status from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

// API is the feedback backend as seen by the controller.
type API interface {
	Login(ctx context.Context, username, password string) (models.Credential, error)
	Submit(ctx context.Context, draft models.FeedbackDraft) (*models.Feedback, error)
	List(ctx context.Context, token string) (*models.FeedbackList, error)
	Update(ctx context.Context, token, id string, patch models.FeedbackPatch) (*models.Feedback, error)
	Delete(ctx context.Context, token, id string) error
}

// HTTPClient talks to the JSON API rooted at baseURL (for example
// "http://127.0.0.1:8080/api").
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (models.Credential, error) {
	var cred models.Credential
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &cred); err != nil {
		return models.Credential{}, err
	}
	return cred, nil
}

func (c *HTTPClient) Submit(ctx context.Context, draft models.FeedbackDraft) (*models.Feedback, error) {
	var resp struct {
		Feedback *models.Feedback `json:"feedback"`
	}
	if err := c.do(ctx, http.MethodPost, "/feedback", "", draft, &resp); err != nil {
		return nil, err
	}
	return resp.Feedback, nil
}

func (c *HTTPClient) List(ctx context.Context, token string) (*models.FeedbackList, error) {
	var list models.FeedbackList
	if err := c.do(ctx, http.MethodGet, "/admin/feedback", token, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *HTTPClient) Update(ctx context.Context, token, id string, patch models.FeedbackPatch) (*models.Feedback, error) {
	var resp struct {
		Feedback *models.Feedback `json:"feedback"`
	}
	if err := c.do(ctx, http.MethodPut, "/feedback/"+url.PathEscape(id), token, patch, &resp); err != nil {
		return nil, err
	}
	return resp.Feedback, nil
}

func (c *HTTPClient) Delete(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/feedback/"+url.PathEscape(id), token, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrConnectivity, err)
		}
		return nil
	}
	return decodeError(resp)
}

// decodeError turns an error response back into the error values the backend
// produced them from.
func decodeError(resp *http.Response) error {
	var payload struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		fields := payload.Fields
		if len(fields) == 0 {
			fields = map[string]string{"body": payload.Error}
		}
		return &service.ValidationError{Fields: fields}
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", auth.ErrAuthentication, payload.Error)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", service.ErrNotFound, payload.Error)
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &StatusError{Code: resp.StatusCode, Message: payload.Error}
	}
}
