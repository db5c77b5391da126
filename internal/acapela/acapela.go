// Package acapela is a thin scraping client for the acapela-box.com text to
// speech service. The vendor has no API: the client authenticates with a form
// login, keeps the session cookie, and re-authenticates exactly once when a
// request comes back unauthorized.
package acapela

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://acapela-box.com/AcaBox"

	// The vendor rejects requests without a browser user agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:73.0) Gecko/20100101 Firefox/73.0"

	defaultRate    = 180
	defaultShaping = 100
)

// Client talks to the voice synthesis vendor. Safe for sequential use only;
// the session cookie jar is shared across calls.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	logger     *slog.Logger
}

// New creates a client with an empty session. Credentials may be empty, in
// which case every synthesis request fails until they are configured.
func New(username, password string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		baseURL:  defaultBaseURL,
		username: username,
		password: password,
		logger:   logger.With("component", "acapela"),
	}, nil
}

// login establishes a fresh vendor session.
func (c *Client) login(ctx context.Context) error {
	c.logger.InfoContext(ctx, "Logging in to AcapelaBox", "username", c.username)

	form := url.Values{
		"login":    {c.username},
		"password": {c.password},
	}

	resp, err := c.postForm(ctx, c.baseURL+"/login.php", form)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login rejected with status %d", resp.StatusCode)
	}

	return nil
}

// Synthesize renders text with the given vendor voice ID and returns the URL
// of the produced audio file. On an unauthorized response it logs in and
// retries exactly once before giving up.
func (c *Client) Synthesize(ctx context.Context, voiceID, text string) (string, error) {
	if c.username == "" || c.password == "" {
		return "", fmt.Errorf("no acapela credentials configured")
	}
	return c.synthesize(ctx, voiceID, text, false)
}

func (c *Client) synthesize(ctx context.Context, voiceID, text string, retried bool) (string, error) {
	form := url.Values{
		"text":     {fmt.Sprintf(`\vct=%d\ \spd=%d\ %s`, defaultShaping, defaultRate, text)},
		"voice":    {voiceID},
		"listen":   {"1"},
		"format":   {"MP3"},
		"codecMP3": {"1"},
		"spd":      {strconv.Itoa(defaultRate)},
		"vct":      {strconv.Itoa(defaultShaping)},
		"byline":   {"0"},
		"ts":       {strconv.FormatInt(time.Now().Unix(), 10)},
	}

	resp, err := c.postForm(ctx, c.baseURL+"/dovaas.php", form)
	if err != nil {
		return "", fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		if retried {
			return "", fmt.Errorf("unable to log in to acapela-box")
		}
		c.logger.InfoContext(ctx, "Session expired, re-authenticating")
		if err := c.login(ctx); err != nil {
			return "", err
		}
		return c.synthesize(ctx, voiceID, text, true)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("synthesis rejected with status %d", resp.StatusCode)
	}

	var body struct {
		SoundURL string `json:"snd_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode synthesis response: %w", err)
	}
	if body.SoundURL == "" {
		return "", fmt.Errorf("synthesis response carried no sound url")
	}

	return body.SoundURL, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	return c.httpClient.Do(req)
}
