package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"dailyflow/internal/handlers"
	"dailyflow/internal/middleware"
	"dailyflow/internal/models"
	"dailyflow/internal/repositories"
	"dailyflow/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services, mirroring the wiring in main.go.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Reminder{}, &models.PushSubscription{}); err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	reminderRepo := repositories.NewGORMReminderRepository(db)
	subRepo := repositories.NewGORMSubscriptionRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	reminderService := services.NewReminderService(reminderRepo)
	pushService := services.NewPushService(subRepo, "test-vapid-public-key")

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	pushHandler := handlers.NewPushHandler(pushService)

	app := fiber.New()

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(authService)

	authHandler.RegisterRoutes(api)
	pushHandler.RegisterRoutes(api, authRequired)

	protected := api.Group("", authRequired)
	userHandler.RegisterRoutes(protected)
	reminderHandler.RegisterRoutes(protected)

	return app
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func registerUser(t *testing.T, app *fiber.App, username, password string) (models.User, string) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	return body.User, body.Token
}

func TestRegisterValidation(t *testing.T) {
	app := setupApp(t)

	// Username below the 3-character minimum fails validation.
	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "ab",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Contains(t, body["errors"], "Username")

	// A valid registration succeeds and returns a token.
	user, token := registerUser(t, app, "alice", "secret1")
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Friend", user.Name) // default display name
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, token)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "alice", "secret1")

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"password": "another1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterNeverExposesPasswordHash(t *testing.T) {
	app := setupApp(t)
	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "Password")
}

func TestLoginGivesNoEnumerationSignal(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "alice", "secret1")

	// Wrong password for an existing user.
	wrongPass := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrongpass",
	})
	// Nonexistent username.
	unknownUser := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "secret1",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPass.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.StatusCode)

	var wrongPassBody, unknownUserBody map[string]string
	decodeBody(t, wrongPass, &wrongPassBody)
	decodeBody(t, unknownUser, &unknownUserBody)
	assert.Equal(t, wrongPassBody, unknownUserBody)
}

func TestLoginSuccess(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "alice", "secret1")

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "alice", body.User.Username)
	assert.NotEmpty(t, body.Token)
}

func TestProfile(t *testing.T) {
	app := setupApp(t)
	user, token := registerUser(t, app, "alice", "secret1")

	resp := doJSON(t, app, http.MethodGet, "/api/user/profile", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var profile models.User
	decodeBody(t, resp, &profile)
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, "Friend", profile.Name)

	resp = doJSON(t, app, http.MethodPatch, "/api/user/profile", token, map[string]string{
		"name": "Alice",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &profile)
	assert.Equal(t, "Alice", profile.Name)
}

func TestReminderCreateRoundTrip(t *testing.T) {
	app := setupApp(t)
	_, token := registerUser(t, app, "alice", "secret1")

	resp := doJSON(t, app, http.MethodPost, "/api/reminders", token, map[string]string{
		"title":    "Drink water",
		"category": "Water",
		"date":     "2024-01-01",
		"time":     "09:00",
		"repeat":   "None",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Reminder
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Completed)

	resp = doJSON(t, app, http.MethodGet, "/api/reminders", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list []models.Reminder
	decodeBody(t, resp, &list)
	assert.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "Drink water", list[0].Title)
	assert.Equal(t, "Water", list[0].Category)
	assert.Equal(t, "2024-01-01", list[0].Date)
	assert.Equal(t, "09:00", list[0].Time)
	assert.Equal(t, "None", list[0].Repeat)
	assert.False(t, list[0].Completed)
}

func TestReminderValidation(t *testing.T) {
	app := setupApp(t)
	_, token := registerUser(t, app, "alice", "secret1")

	cases := []map[string]string{
		{"title": "", "category": "Water", "date": "2024-01-01", "time": "09:00"},
		{"title": "x", "category": "Sleep", "date": "2024-01-01", "time": "09:00"},
		{"title": "x", "category": "Water", "date": "01/01/2024", "time": "09:00"},
		{"title": "x", "category": "Water", "date": "2024-01-01", "time": "9am"},
		{"title": "x", "category": "Water", "date": "2024-01-01", "time": "09:00", "repeat": "Hourly"},
	}
	for _, payload := range cases {
		resp := doJSON(t, app, http.MethodPost, "/api/reminders", token, payload)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "payload %v should fail validation", payload)
		resp.Body.Close()
	}
}

func TestReminderToggleTwiceRoundTrips(t *testing.T) {
	app := setupApp(t)
	_, token := registerUser(t, app, "alice", "secret1")

	resp := doJSON(t, app, http.MethodPost, "/api/reminders", token, map[string]string{
		"title": "Stretch", "category": "Health", "date": "2024-01-01", "time": "09:00",
	})
	var created models.Reminder
	decodeBody(t, resp, &created)

	resp = doJSON(t, app, http.MethodPatch, "/api/reminders/"+created.ID+"/toggle", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled models.Reminder
	decodeBody(t, resp, &toggled)
	assert.True(t, toggled.Completed)

	resp = doJSON(t, app, http.MethodPatch, "/api/reminders/"+created.ID+"/toggle", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &toggled)
	assert.False(t, toggled.Completed)

	resp = doJSON(t, app, http.MethodPatch, "/api/reminders/nonexistent/toggle", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestReminderPartialUpdate(t *testing.T) {
	app := setupApp(t)
	_, token := registerUser(t, app, "alice", "secret1")

	resp := doJSON(t, app, http.MethodPost, "/api/reminders", token, map[string]string{
		"title": "Old", "category": "Study", "date": "2024-01-01", "time": "09:00", "notes": "keep",
	})
	var created models.Reminder
	decodeBody(t, resp, &created)

	resp = doJSON(t, app, http.MethodPatch, "/api/reminders/"+created.ID, token, map[string]string{
		"title": "New",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Reminder
	decodeBody(t, resp, &updated)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "keep", updated.Notes)
	assert.Equal(t, "Study", updated.Category)

	// Invalid partial field is rejected before reaching storage.
	resp = doJSON(t, app, http.MethodPatch, "/api/reminders/"+created.ID, token, map[string]string{
		"category": "Sleep",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPatch, "/api/reminders/nonexistent", token, map[string]string{
		"title": "New",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestReminderDelete(t *testing.T) {
	app := setupApp(t)
	_, token := registerUser(t, app, "alice", "secret1")

	resp := doJSON(t, app, http.MethodPost, "/api/reminders", token, map[string]string{
		"title": "Delete me", "category": "Custom", "date": "2024-01-01", "time": "09:00",
	})
	var created models.Reminder
	decodeBody(t, resp, &created)

	resp = doJSON(t, app, http.MethodDelete, "/api/reminders/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/api/reminders/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestReminderDeleteAll(t *testing.T) {
	app := setupApp(t)
	_, token := registerUser(t, app, "alice", "secret1")

	for _, title := range []string{"one", "two", "three"} {
		resp := doJSON(t, app, http.MethodPost, "/api/reminders", token, map[string]string{
			"title": title, "category": "Custom", "date": "2024-01-01", "time": "09:00",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodDelete, "/api/reminders", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/reminders", token, nil)
	var list []models.Reminder
	decodeBody(t, resp, &list)
	assert.Empty(t, list)
}

func TestRemindersAreIsolatedBetweenUsers(t *testing.T) {
	app := setupApp(t)
	_, aliceToken := registerUser(t, app, "alice", "secret1")
	_, bobToken := registerUser(t, app, "bob", "secret2")

	resp := doJSON(t, app, http.MethodPost, "/api/reminders", aliceToken, map[string]string{
		"title": "Alice's secret", "category": "Custom", "date": "2024-01-01", "time": "09:00",
	})
	var aliceReminder models.Reminder
	decodeBody(t, resp, &aliceReminder)

	// Bob's list never contains Alice's reminder.
	resp = doJSON(t, app, http.MethodGet, "/api/reminders", bobToken, nil)
	var bobList []models.Reminder
	decodeBody(t, resp, &bobList)
	assert.Empty(t, bobList)

	// Bob cannot toggle, update or delete Alice's reminder.
	resp = doJSON(t, app, http.MethodPatch, "/api/reminders/"+aliceReminder.ID+"/toggle", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPatch, "/api/reminders/"+aliceReminder.ID, bobToken, map[string]string{"title": "hijack"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/api/reminders/"+aliceReminder.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	app := setupApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/reminders"},
		{http.MethodGet, "/api/user/profile"},
	} {
		resp := doJSON(t, app, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
		resp.Body.Close()
	}
}

func TestPushEndpoints(t *testing.T) {
	app := setupApp(t)
	_, token := registerUser(t, app, "alice", "secret1")

	// Public key endpoint needs no auth.
	resp := doJSON(t, app, http.MethodGet, "/api/push/vapid-public-key", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var keyBody map[string]string
	decodeBody(t, resp, &keyBody)
	assert.Equal(t, "test-vapid-public-key", keyBody["publicKey"])

	subscription := map[string]string{
		"endpoint": "https://push.example/ep-1",
		"auth":     "auth-secret",
		"p256dh":   "p256dh-key",
	}

	// Subscribing requires authentication.
	resp = doJSON(t, app, http.MethodPost, "/api/push/subscribe", "", subscription)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/push/subscribe", token, subscription)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Unsubscribing does not, so a signed-out client can clean up.
	resp = doJSON(t, app, http.MethodPost, "/api/push/unsubscribe", "", map[string]string{
		"endpoint": "https://push.example/ep-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
