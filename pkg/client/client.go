// Package client is a Go client for the DailyFlow API. It keeps a cached
// copy of the reminder list, invalidated on every mutation, and can run a
// best-effort local due-check loop over that cache.
package client

import (
	"fmt"
	"net/http"
	"sync"

	"dailyflow/internal/models"

	"github.com/go-resty/resty/v2"
)

// Client talks to a DailyFlow server. All methods are safe for concurrent use.
type Client struct {
	http *resty.Client

	mu         sync.Mutex
	cache      []models.Reminder
	cacheValid bool
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL),
	}
}

// SetToken sets the bearer token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

type authResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) fail(resp *resty.Response) error {
	apiErr, ok := resp.Error().(*apiError)
	if ok && apiErr.Message != "" {
		if apiErr.Error != "" {
			return fmt.Errorf("%s: %s (status %d)", apiErr.Message, apiErr.Error, resp.StatusCode())
		}
		return fmt.Errorf("%s (status %d)", apiErr.Message, resp.StatusCode())
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode())
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(username, password, name string) (*models.User, error) {
	var result authResult
	resp, err := c.http.R().
		SetBody(map[string]string{"username": username, "password": password, "name": name}).
		SetResult(&result).
		SetError(&apiError{}).
		Post("/api/auth/register")
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, c.fail(resp)
	}
	c.SetToken(result.Token)
	return &result.User, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(username, password string) (*models.User, error) {
	var result authResult
	resp, err := c.http.R().
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&result).
		SetError(&apiError{}).
		Post("/api/auth/login")
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.fail(resp)
	}
	c.SetToken(result.Token)
	return &result.User, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile() (*models.User, error) {
	var user models.User
	resp, err := c.http.R().SetResult(&user).SetError(&apiError{}).Get("/api/user/profile")
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.fail(resp)
	}
	return &user, nil
}

// UpdateName changes the authenticated user's display name.
func (c *Client) UpdateName(name string) (*models.User, error) {
	var user models.User
	resp, err := c.http.R().
		SetBody(map[string]string{"name": name}).
		SetResult(&user).
		SetError(&apiError{}).
		Patch("/api/user/profile")
	if err != nil {
		return nil, fmt.Errorf("profile update failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.fail(resp)
	}
	return &user, nil
}

// Reminders returns the reminder list, served from the cache when it is
// still valid and fetched from the server otherwise.
func (c *Client) Reminders() ([]models.Reminder, error) {
	c.mu.Lock()
	if c.cacheValid {
		cached := make([]models.Reminder, len(c.cache))
		copy(cached, c.cache)
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	var reminders []models.Reminder
	resp, err := c.http.R().SetResult(&reminders).SetError(&apiError{}).Get("/api/reminders")
	if err != nil {
		return nil, fmt.Errorf("reminders request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.fail(resp)
	}

	c.mu.Lock()
	c.cache = reminders
	c.cacheValid = true
	c.mu.Unlock()

	result := make([]models.Reminder, len(reminders))
	copy(result, reminders)
	return result, nil
}

// Invalidate drops the cached reminder list; the next Reminders call
// re-fetches from the server.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.cacheValid = false
	c.cache = nil
	c.mu.Unlock()
}

// CreateReminder creates a reminder and invalidates the cache.
func (c *Client) CreateReminder(fields map[string]interface{}) (*models.Reminder, error) {
	var reminder models.Reminder
	resp, err := c.http.R().
		SetBody(fields).
		SetResult(&reminder).
		SetError(&apiError{}).
		Post("/api/reminders")
	if err != nil {
		return nil, fmt.Errorf("create reminder failed: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, c.fail(resp)
	}
	c.Invalidate()
	return &reminder, nil
}

// UpdateReminder applies a partial update and invalidates the cache.
func (c *Client) UpdateReminder(id string, fields map[string]interface{}) (*models.Reminder, error) {
	var reminder models.Reminder
	resp, err := c.http.R().
		SetBody(fields).
		SetResult(&reminder).
		SetError(&apiError{}).
		Patch("/api/reminders/" + id)
	if err != nil {
		return nil, fmt.Errorf("update reminder failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.fail(resp)
	}
	c.Invalidate()
	return &reminder, nil
}

// ToggleReminder flips a reminder's completed flag and invalidates the cache.
func (c *Client) ToggleReminder(id string) (*models.Reminder, error) {
	var reminder models.Reminder
	resp, err := c.http.R().
		SetResult(&reminder).
		SetError(&apiError{}).
		Patch("/api/reminders/" + id + "/toggle")
	if err != nil {
		return nil, fmt.Errorf("toggle reminder failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.fail(resp)
	}
	c.Invalidate()
	return &reminder, nil
}

// DeleteReminder deletes a reminder and invalidates the cache.
func (c *Client) DeleteReminder(id string) error {
	resp, err := c.http.R().SetError(&apiError{}).Delete("/api/reminders/" + id)
	if err != nil {
		return fmt.Errorf("delete reminder failed: %w", err)
	}
	if resp.StatusCode() != http.StatusNoContent {
		return c.fail(resp)
	}
	c.Invalidate()
	return nil
}

// DeleteAllReminders deletes every reminder and invalidates the cache.
func (c *Client) DeleteAllReminders() error {
	resp, err := c.http.R().SetError(&apiError{}).Delete("/api/reminders")
	if err != nil {
		return fmt.Errorf("delete all reminders failed: %w", err)
	}
	if resp.StatusCode() != http.StatusNoContent {
		return c.fail(resp)
	}
	c.Invalidate()
	return nil
}

// VapidPublicKey fetches the server's VAPID public key.
func (c *Client) VapidPublicKey() (string, error) {
	var result struct {
		PublicKey string `json:"publicKey"`
	}
	resp, err := c.http.R().SetResult(&result).SetError(&apiError{}).Get("/api/push/vapid-public-key")
	if err != nil {
		return "", fmt.Errorf("vapid key request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", c.fail(resp)
	}
	return result.PublicKey, nil
}

// SubscribePush registers a push subscription for the authenticated user.
func (c *Client) SubscribePush(endpoint, auth, p256dh string) error {
	resp, err := c.http.R().
		SetBody(map[string]string{"endpoint": endpoint, "auth": auth, "p256dh": p256dh}).
		SetError(&apiError{}).
		Post("/api/push/subscribe")
	if err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return c.fail(resp)
	}
	return nil
}

// UnsubscribePush removes the push subscription for the given endpoint.
func (c *Client) UnsubscribePush(endpoint string) error {
	resp, err := c.http.R().
		SetBody(map[string]string{"endpoint": endpoint}).
		SetError(&apiError{}).
		Post("/api/push/unsubscribe")
	if err != nil {
		return fmt.Errorf("unsubscribe failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return c.fail(resp)
	}
	return nil
}
