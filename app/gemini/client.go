// Package gemini fetches documents over the Gemini protocol, with a
// plain HTTP(S) fallback for gemlogs mirrored on the web.
package gemini

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort = "1965"

	// StatusSuccess is the Gemini 2x success class. HTTP responses are
	// mapped onto it so callers see one status convention.
	StatusSuccess = 20

	maxRedirects = 5
)

var ErrTooManyRedirects = errors.New("too many redirects")

// Response is a fetched document. Meta carries the Gemini meta field
// (the MIME type on success) or the HTTP Content-Type.
type Response struct {
	Status int
	Meta   string
	Body   []byte
}

type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
		userAgent:  userAgent,
	}
}

// Fetch retrieves the document at rawURL. The scheme selects the
// transport: gemini:// speaks the Gemini protocol, http(s):// goes
// through the HTTP client. Each call is bounded by the configured
// timeout.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "gemini":
		return c.fetchGemini(ctx, u, 0)
	case "http", "https":
		return c.fetchHTTP(ctx, u)
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
}

func (c *Client) fetchGemini(ctx context.Context, u *url.URL, redirects int) (*Response, error) {
	if redirects > maxRedirects {
		return nil, fmt.Errorf("fetching %s: %w", u, ErrTooManyRedirects)
	}

	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), DefaultPort)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Gemini servers conventionally use self-signed certificates
	// (trust-on-first-use), so chain verification is disabled.
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.timeout},
		Config: &tls.Config{
			InsecureSkipVerify: true,
			ServerName:         u.Hostname(),
			MinVersion:         tls.VersionTLS12,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", host, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if _, err := fmt.Fprintf(conn, "%s\r\n", u.String()); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	header, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response header: %w", err)
	}

	status, meta, err := parseHeader(header)
	if err != nil {
		return nil, fmt.Errorf("invalid response from %s: %w", u.Host, err)
	}

	switch status / 10 {
	case 2:
		body, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return &Response{Status: status, Meta: meta, Body: body}, nil
	case 3:
		target, err := redirectTarget(u, meta)
		if err != nil {
			return nil, err
		}
		return c.fetchGemini(ctx, target, redirects+1)
	default:
		return nil, fmt.Errorf("gemini request failed: status %d %q", status, meta)
	}
}

func (c *Client) fetchHTTP(ctx context.Context, u *url.URL) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Status: StatusSuccess,
		Meta:   resp.Header.Get("Content-Type"),
		Body:   body,
	}, nil
}

// parseHeader splits a Gemini response header "<status> <meta>\r\n"
// into its parts. The meta field is optional.
func parseHeader(header string) (int, string, error) {
	header = strings.TrimRight(header, "\r\n")

	code, meta, _ := strings.Cut(header, " ")
	status, err := strconv.Atoi(code)
	if err != nil || status < 10 || status > 69 {
		return 0, "", fmt.Errorf("malformed header %q", header)
	}

	return status, strings.TrimSpace(meta), nil
}

func redirectTarget(base *url.URL, meta string) (*url.URL, error) {
	ref, err := url.Parse(meta)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect target %q: %w", meta, err)
	}
	return base.ResolveReference(ref), nil
}
