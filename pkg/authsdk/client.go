package authsdk

import (
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

// Client talks to the tabgate HTTP API. It is safe for concurrent use, but
// holds a single login at a time.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu          sync.Mutex
	accessToken string
	csrfToken   string
}

// NewClient creates a client with its own cookie jar.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// AccessToken returns the bearer token from the last login or refresh.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// SetAccessToken replaces the bearer token sent on authenticated calls.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

func (c *Client) cachedCSRF() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csrfToken
}

func (c *Client) setCSRF(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.csrfToken = token
}
