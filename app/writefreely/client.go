// Package writefreely is a minimal client for the WriteFreely API:
// token auth, paginated collection listing, post create and update.
package writefreely

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// PageSize is the fixed number of posts per page returned by the
// collection posts endpoint.
const PageSize = 10

var ErrUnauthorized = errors.New("writefreely: unauthorized")

// Post is a post as returned by the API.
type Post struct {
	ID      string
	Slug    string
	Title   string
	Body    string
	Updated time.Time
}

// PostRequest is the payload for creating or updating a post.
type PostRequest struct {
	Title   string     `json:"title,omitempty"`
	Body    string     `json:"body"`
	Slug    string     `json:"slug,omitempty"`
	Created *time.Time `json:"created,omitempty"`
}

type Client struct {
	baseURL    *url.URL
	token      string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(baseURL *url.URL, token string, timeout time.Duration, userAgent string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		userAgent:  userAgent,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Login exchanges credentials for an access token and keeps it on the
// client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"alias": username,
		"pass":  password,
	})
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	token := gjson.GetBytes(body, "data.access_token").String()
	if token == "" {
		return "", fmt.Errorf("login response contained no access token")
	}

	c.token = token
	return token, nil
}

// Logout invalidates the client's access token on the server.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodDelete, "/api/auth/me", nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// Me returns the username of the authenticated user. Useful as a
// cheap token validity check before doing real work.
func (c *Client) Me(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/me", nil)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "data.username").String(), nil
}

// Posts returns one page of a collection's posts plus the total post
// count. Pages start at 1.
func (c *Client) Posts(ctx context.Context, alias string, page int) ([]Post, int, error) {
	path := fmt.Sprintf("/api/collections/%s/posts?page=%d", url.PathEscape(alias), page)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts for %q: %w", alias, err)
	}

	var posts []Post
	gjson.GetBytes(body, "data.posts").ForEach(func(_, p gjson.Result) bool {
		posts = append(posts, postFromJSON(p))
		return true
	})

	total := int(gjson.GetBytes(body, "data.total_posts").Int())
	return posts, total, nil
}

// CreatePost publishes a new post in the collection.
func (c *Client) CreatePost(ctx context.Context, alias string, req PostRequest) (*Post, error) {
	path := fmt.Sprintf("/api/collections/%s/posts", url.PathEscape(alias))
	body, err := c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	post := postFromJSON(gjson.GetBytes(body, "data"))
	return &post, nil
}

// UpdatePost replaces an existing post's title and body.
func (c *Client) UpdatePost(ctx context.Context, id string, req PostRequest) (*Post, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(id), req)
	if err != nil {
		return nil, fmt.Errorf("failed to update post %s: %w", id, err)
	}

	post := postFromJSON(gjson.GetBytes(body, "data"))
	return &post, nil
}

func postFromJSON(p gjson.Result) Post {
	post := Post{
		ID:    p.Get("id").String(),
		Slug:  p.Get("slug").String(),
		Title: p.Get("title").String(),
		Body:  p.Get("body").String(),
	}
	if updated, err := time.Parse(time.RFC3339, p.Get("updated").String()); err == nil {
		post.Updated = updated
	}
	return post
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.ResolveReference(ref).String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 400:
		msg := gjson.GetBytes(body, "error_msg").String()
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("API error: %s (HTTP %d)", msg, resp.StatusCode)
	}

	return body, nil
}
