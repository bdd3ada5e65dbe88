package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TokenStore is the persistence the client reads the bearer token from
// before every request and writes it to on successful login. The token is
// attached verbatim; absence means the request goes out unauthenticated
// and the server decides whether that is acceptable.
type TokenStore interface {
	Get() string
	Set(token string) error
	Clear() error
}

// Client is the Haivler API gateway. It is stateless apart from the shared
// http.Client and the injected token store, and is safe for concurrent use.
// Nothing in it serializes concurrent calls to the same resource: two rapid
// reaction calls race at the network level and the backend's response order
// wins.
type Client struct {
	baseURL       string
	timeout       time.Duration
	httpClient    *http.Client
	endpoints     Endpoints
	tokens        TokenStore
	onAuthFailure func()

	validate *validator.Validate
	logger   *slog.Logger
	metrics  *Metrics
}

// NewClient creates a new Haivler API client.
// It reads configuration from HAIVLER_* environment variables by default.
// Options can be used to override the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   envOrDefault("HAIVLER_API_URL", "http://localhost:8000"),
		timeout:   parseDurationEnv("HAIVLER_API_TIMEOUT", 30*time.Second),
		endpoints: DefaultEndpoints(),
		validate:  newValidator(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}
	if c.tokens == nil {
		c.tokens = &memoryTokenStore{}
	}
	if c.metrics == nil {
		c.metrics = NopMetrics()
	}

	return c
}

// Register creates a new account. It does not log the new user in; the
// backend requires an explicit login after signup.
func (c *Client) Register(ctx context.Context, reg Registration) (*UserRecord, error) {
	if err := c.checkPayload("register", reg); err != nil {
		return nil, err
	}

	var user UserRecord
	err := c.send(ctx, request{
		op:       "register",
		method:   http.MethodPost,
		path:     c.endpoints.Register,
		fallback: "Registration failed",
	}, jsonBody(reg), &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token. The body is
// form-url-encoded, the one endpoint the backend does not accept JSON on.
// On success the token is persisted into the token store before returning.
// Login does not populate any session state; "network succeeded" and
// "session updated" stay separate concerns.
func (c *Client) Login(ctx context.Context, creds Credentials) (*TokenGrant, error) {
	if err := c.checkPayload("login", creds); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	var grant TokenGrant
	err := c.send(ctx, request{
		op:          "login",
		method:      http.MethodPost,
		path:        c.endpoints.Login,
		contentType: "application/x-www-form-urlencoded",
		body:        strings.NewReader(form.Encode()),
		fallback:    "Login failed",
	}, nil, &grant)
	if err != nil {
		return nil, err
	}

	if err := c.tokens.Set(grant.AccessToken); err != nil {
		// A token we cannot persist is a token the next request won't have.
		return nil, &TransportError{Op: "login", Message: "Login failed", Cause: err}
	}
	return &grant, nil
}

// UserProfile fetches the authenticated user's profile.
func (c *Client) UserProfile(ctx context.Context) (*UserRecord, error) {
	var user UserRecord
	err := c.send(ctx, request{
		op:       "get_profile",
		method:   http.MethodGet,
		path:     c.endpoints.Profile,
		fallback: "Failed to fetch user profile",
	}, nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserProfile partially updates the authenticated user's profile and
// returns the replacement record.
func (c *Client) UpdateUserProfile(ctx context.Context, update ProfileUpdate) (*UserRecord, error) {
	if err := c.checkPayload("update_profile", update); err != nil {
		return nil, err
	}

	var user UserRecord
	err := c.send(ctx, request{
		op:       "update_profile",
		method:   http.MethodPut,
		path:     c.endpoints.Profile,
		fallback: "Failed to update profile",
	}, jsonBody(update), &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Posts lists the feed. page is zero-based.
func (c *Client) Posts(ctx context.Context, page, limit int, sort Sort) ([]Post, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("sort", string(sort))

	var posts []Post
	err := c.send(ctx, request{
		op:       "get_posts",
		method:   http.MethodGet,
		path:     c.endpoints.Posts + "?" + q.Encode(),
		fallback: "Failed to fetch posts",
	}, nil, &posts)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Post fetches a single post.
func (c *Client) Post(ctx context.Context, id int64) (*Post, error) {
	var post Post
	err := c.send(ctx, request{
		op:       "get_post",
		method:   http.MethodGet,
		path:     c.endpoints.post(id),
		fallback: "Failed to fetch post",
	}, nil, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost uploads a new post. This is the one mutating call that uses
// multipart encoding, since it transports the image payload. The payload is
// validated locally (missing image, missing title) before any request is
// sent.
func (c *Client) CreatePost(ctx context.Context, np NewPost) (*Post, error) {
	if err := c.checkPayload("create_post", np); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("title", np.Title); err != nil {
		return nil, &TransportError{Op: "create_post", Message: "Failed to create post", Cause: err}
	}
	if np.Description != "" {
		if err := w.WriteField("description", np.Description); err != nil {
			return nil, &TransportError{Op: "create_post", Message: "Failed to create post", Cause: err}
		}
	}
	part, err := w.CreateFormFile("image", np.ImageName)
	if err != nil {
		return nil, &TransportError{Op: "create_post", Message: "Failed to create post", Cause: err}
	}
	if _, err := part.Write(np.Image); err != nil {
		return nil, &TransportError{Op: "create_post", Message: "Failed to create post", Cause: err}
	}
	if err := w.Close(); err != nil {
		return nil, &TransportError{Op: "create_post", Message: "Failed to create post", Cause: err}
	}

	// Content digest for duplicate-upload diagnostics on the server side.
	digest := fmt.Sprintf("xxh64:%016x", xxhash.Sum64(np.Image))
	c.logger.Debug("uploading image", "name", np.ImageName, "bytes", len(np.Image), "digest", digest)

	var post Post
	err = c.send(ctx, request{
		op:          "create_post",
		method:      http.MethodPost,
		path:        c.endpoints.Posts,
		contentType: w.FormDataContentType(),
		body:        &buf,
		header:      http.Header{"X-Content-Digest": []string{digest}},
		fallback:    "Failed to create post",
	}, nil, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost partially updates a post. Ownership is enforced server-side.
func (c *Client) UpdatePost(ctx context.Context, id int64, update PostUpdate) (*Post, error) {
	var post Post
	err := c.send(ctx, request{
		op:       "update_post",
		method:   http.MethodPut,
		path:     c.endpoints.post(id),
		fallback: "Failed to update post",
	}, jsonBody(update), &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post. Ownership is enforced server-side.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.send(ctx, request{
		op:       "delete_post",
		method:   http.MethodDelete,
		path:     c.endpoints.post(id),
		fallback: "Failed to delete post",
	}, nil, nil)
}

// Comments lists the comments of a post.
func (c *Client) Comments(ctx context.Context, postID int64) ([]Comment, error) {
	var comments []Comment
	err := c.send(ctx, request{
		op:       "get_comments",
		method:   http.MethodGet,
		path:     c.endpoints.postComments(postID),
		fallback: "Failed to fetch comments",
	}, nil, &comments)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment adds a comment to a post. Empty content is rejected
// locally.
func (c *Client) CreateComment(ctx context.Context, postID int64, content string) (*Comment, error) {
	payload := commentPayload{Content: content}
	if err := c.checkPayload("create_comment", payload); err != nil {
		return nil, err
	}

	var comment Comment
	err := c.send(ctx, request{
		op:       "create_comment",
		method:   http.MethodPost,
		path:     c.endpoints.postComments(postID),
		fallback: "Failed to create comment",
	}, jsonBody(payload), &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment deletes a comment by its own id.
func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	return c.send(ctx, request{
		op:       "delete_comment",
		method:   http.MethodDelete,
		path:     c.endpoints.comment(commentID),
		fallback: "Failed to delete comment",
	}, nil, nil)
}

// Reactions fetches the aggregate reaction state of a post.
func (c *Client) Reactions(ctx context.Context, postID int64) (*ReactionSummary, error) {
	var summary ReactionSummary
	err := c.send(ctx, request{
		op:       "get_reactions",
		method:   http.MethodGet,
		path:     c.endpoints.postReactions(postID),
		fallback: "Failed to fetch reactions",
	}, nil, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// CreateReaction places a like or dislike on a post. Replacing a reaction
// of the opposite type is the server's behavior; this only forwards intent.
func (c *Client) CreateReaction(ctx context.Context, postID int64, rt ReactionType) error {
	payload := reactionPayload{ReactionType: rt}
	if err := c.checkPayload("create_reaction", payload); err != nil {
		return err
	}

	return c.send(ctx, request{
		op:       "create_reaction",
		method:   http.MethodPost,
		path:     c.endpoints.postReaction(postID),
		fallback: "Failed to create reaction",
	}, jsonBody(payload), nil)
}

// DeleteReaction removes the current user's reaction from a post.
func (c *Client) DeleteReaction(ctx context.Context, postID int64) error {
	return c.send(ctx, request{
		op:       "delete_reaction",
		method:   http.MethodDelete,
		path:     c.endpoints.postReaction(postID),
		fallback: "Failed to delete reaction",
	}, nil, nil)
}

// PurgeToken removes the persisted bearer token. Used by logout, which is
// client-local: no server round trip is required for it to take effect.
func (c *Client) PurgeToken() {
	if err := c.tokens.Clear(); err != nil {
		c.logger.Warn("failed to purge token", "error", err)
	}
}

// request describes one wire call for the response funnel.
type request struct {
	op          string
	method      string
	path        string
	contentType string
	body        io.Reader
	header      http.Header
	fallback    string
}

// jsonPayload defers marshalling into the funnel so every operation's
// marshal error takes the same TransportError shape.
type jsonPayload struct{ v any }

func jsonBody(v any) *jsonPayload { return &jsonPayload{v: v} }

// send is the uniform funnel every operation goes through. It attaches the
// bearer token when one is present, maps non-2xx responses to *APIError
// (extracting the server's detail message when there is one), maps
// transport failures to *TransportError with the operation's generic
// message, and reacts to 401 by purging the token and emitting the
// auth-failure event. No raw transport error escapes to the caller.
func (c *Client) send(ctx context.Context, r request, payload *jsonPayload, result any) error {
	start := time.Now()

	body := r.body
	if payload != nil {
		data, err := json.Marshal(payload.v)
		if err != nil {
			return &TransportError{Op: r.op, Message: r.fallback, Cause: err}
		}
		body = bytes.NewReader(data)
		r.contentType = "application/json"
	}

	fullURL := strings.TrimRight(c.baseURL, "/") + r.path
	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, body)
	if err != nil {
		return &TransportError{Op: r.op, Message: r.fallback, Cause: err}
	}

	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-Id", requestID)

	// The token cookie is read before every request; a login completing
	// concurrently overwrites it last-write-wins, no versioning.
	if token := c.tokens.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(ctx, r.op, "transport_error", time.Since(start))
		c.logger.Warn("request failed", "op", r.op, "request_id", requestID, "error", err)
		return &TransportError{Op: r.op, Message: r.fallback, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(ctx, r.op, "transport_error", time.Since(start))
		return &TransportError{Op: r.op, Message: r.fallback, Cause: err}
	}

	c.logger.Debug("request complete",
		"op", r.op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		// Authentication expiry is fatal to the whole session, not just
		// this call, regardless of which endpoint produced it.
		c.metrics.observe(ctx, r.op, "unauthorized", time.Since(start))
		c.metrics.authFailure(ctx, r.op)
		c.PurgeToken()
		if c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return &APIError{Status: resp.StatusCode, Op: r.op, Detail: serverDetail(respBody, r.fallback)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.observe(ctx, r.op, "http_error", time.Since(start))
		c.logger.Debug("server rejected request",
			"op", r.op, "code", httpStatusText(resp.StatusCode))
		return &APIError{Status: resp.StatusCode, Op: r.op, Detail: serverDetail(respBody, r.fallback)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			c.metrics.observe(ctx, r.op, "transport_error", time.Since(start))
			return &TransportError{Op: r.op, Message: r.fallback, Cause: err}
		}
	}

	c.metrics.observe(ctx, r.op, "ok", time.Since(start))
	return nil
}

// serverDetail extracts the backend's structured error message, falling
// back to the operation's generic message when the payload has none.
func serverDetail(body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return eb.Detail
	}
	return fallback
}

// memoryTokenStore holds the token in memory only. Used when no persistent
// store is injected.
type memoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (m *memoryTokenStore) Get() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *memoryTokenStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// Helper functions for env var parsing.

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}
