// Package client is a typed HTTP client for the coursehub API.
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
	"strconv"
	"strings"
	"time"

	"coursehub/internal/api/v1/dto"
	"coursehub/internal/model"

	"github.com/rs/zerolog"
)

// ErrNoSession is returned by authenticated calls when no token is available.
var ErrNoSession = errors.New("not signed in")

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means no session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token, e.g. read from the environment.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

// StatusCode extracts the HTTP status from an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	logger  zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger.With().Str("component", "APIClient").Logger() }
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListOutlines(ctx context.Context) ([]model.Outline, error) {
	var out []model.Outline
	err := c.do(ctx, http.MethodGet, "/api/getOutlines", nil, false, &out)
	return out, err
}

func (c *Client) CreateOutline(ctx context.Context, in dto.OutlineCreateDTO) (*model.Outline, error) {
	var out model.Outline
	if err := c.do(ctx, http.MethodPost, "/api/saveOutline", in, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOutline(ctx context.Context, in dto.OutlineUpdateDTO) (*model.Outline, error) {
	var out model.Outline
	if err := c.do(ctx, http.MethodPut, "/api/saveOutline", in, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteOutline(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/saveOutline", dto.DeleteDTO{ID: id}, false, nil)
}

func (c *Client) ExportOutline(ctx context.Context, id int64) (*dto.OutlineExportResponseDTO, error) {
	var out dto.OutlineExportResponseDTO
	path := "/api/exportOutline?id=" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCourses(ctx context.Context) ([]model.CourseWithOwner, error) {
	var out []model.CourseWithOwner
	err := c.do(ctx, http.MethodGet, "/api/getCourses", nil, false, &out)
	return out, err
}

func (c *Client) CreateCourse(ctx context.Context, in dto.CourseCreateDTO) (*model.Course, error) {
	var out model.Course
	if err := c.do(ctx, http.MethodPost, "/api/saveCourse", in, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCourse(ctx context.Context, in dto.CourseUpdateDTO) (*model.Course, error) {
	var out model.Course
	if err := c.do(ctx, http.MethodPut, "/api/saveCourse", in, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCourse(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/saveCourse", dto.DeleteDTO{ID: id}, true, nil)
}

func (c *Client) ListLessons(ctx context.Context, courseID int64) ([]model.Lesson, error) {
	var out []model.Lesson
	q := url.Values{"courseId": {strconv.FormatInt(courseID, 10)}}
	err := c.do(ctx, http.MethodGet, "/api/getLessons?"+q.Encode(), nil, false, &out)
	return out, err
}

func (c *Client) CreateLesson(ctx context.Context, in dto.LessonCreateDTO) (*model.Lesson, error) {
	var out model.Lesson
	if err := c.do(ctx, http.MethodPost, "/api/saveLesson", in, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLesson(ctx context.Context, in dto.LessonUpdateDTO) (*model.Lesson, error) {
	var out model.Lesson
	if err := c.do(ctx, http.MethodPut, "/api/saveLesson", in, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLesson(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/saveLesson", dto.DeleteDTO{ID: id}, true, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, auth bool, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if auth {
		if c.tokens == nil {
			return ErrNoSession
		}
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("getting token: %w", err)
		}
		if token == "" {
			return ErrNoSession
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		c.logger.Warn().Err(err).Int("status_code", resp.StatusCode).Msg("Failed to read error body")
		return apiErr
	}
	var payload dto.ErrorResponseDTO
	if json.Unmarshal(bodyBytes, &payload) == nil && payload.Error != "" {
		apiErr.Message, apiErr.Code = payload.Error, payload.Code
	} else {
		apiErr.Message = strings.TrimSpace(string(bodyBytes))
	}
	c.logger.Debug().Int("status_code", resp.StatusCode).Str("error", apiErr.Message).Msg("API returned error")
	return apiErr
}
