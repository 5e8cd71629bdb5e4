package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"BubblyService/config"
	"BubblyService/internal/delivery/httpapi"
	"BubblyService/internal/mlclient"
	"BubblyService/internal/repository/postgres"
	redisrepo "BubblyService/internal/repository/redis"
	"BubblyService/internal/service"
	"BubblyService/pkg/database"
	"BubblyService/pkg/resilience"
	"BubblyService/pkg/server"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// newAPIServer собирает HTTP API так же, как cmd/server, поверх тестовых PostgreSQL и Redis
func newAPIServer(t *testing.T, rc *redis.Client) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	ml := httptest.NewServer(http.HandlerFunc(mlDown))
	t.Cleanup(ml.Close)

	healthChecker := database.NewDatabaseHealthChecker(db, rc, log)
	sessions := redisrepo.NewResilientSessionRepository(rc, 24*time.Hour, healthChecker, time.Second, log)
	bubbles := postgres.NewBubbleRepository(db)
	mlClient := mlclient.NewClient(config.MLConfig{
		URL:            ml.URL,
		PredictTimeout: time.Second,
		TrainTimeout:   time.Second,
		HealthTimeout:  time.Second,
	}, resilience.NewCircuitBreaker("ml_predict", 5, time.Minute, log), log)

	handler := httpapi.NewHandler(httpapi.Services{
		Auth:            service.NewAuthService(postgres.NewUserRepository(db), sessions, log),
		Bubbles:         service.NewBubbleService(bubbles, log),
		Messages:        service.NewMessageService(postgres.NewMessageRepository(db), bubbles, log),
		Interests:       service.NewInterestService(postgres.NewInterestRepository(db)),
		Recommendations: service.NewRecommendationService(postgres.NewRecommendationRepository(db), mlClient, log),
	}, httpapi.NewSessionCookie(config.SessionConfig{
		Secret:     "integration-secret",
		TTL:        24 * time.Hour,
		CookieName: "bubbly.sid",
	}), log)

	health := server.NewHealthCheck(healthChecker, log, "test")
	health.CheckNow(context.Background())

	router := httpapi.NewRouter(handler, httpapi.RouterOptions{Health: health, Logger: log})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// apiClient HTTP-клиент с собственной cookie-сессией
type apiClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newAPIClient(t *testing.T, srv *httptest.Server) *apiClient {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	return &apiClient{t: t, base: srv.URL, client: &http.Client{Jar: jar, Timeout: 10 * time.Second}}
}

func (c *apiClient) do(method, path string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()

	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}

	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func (c *apiClient) register(name string) {
	c.t.Helper()

	code, body := c.do(http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name": name, "email": name + "@example.com", "password": "secret-" + name, "sex": "other", "age": 28,
	})
	if code != http.StatusCreated {
		c.t.Fatalf("Failed to register %s: %d %v", name, code, body)
	}
}

func TestAPI_BubbleLifecycle(t *testing.T) {
	resetDatabase(t)
	srv := newAPIServer(t, redisClient)

	alice := newAPIClient(t, srv)
	bob := newAPIClient(t, srv)
	carol := newAPIClient(t, srv)
	alice.register("alice")
	bob.register("bob")
	carol.register("carol")

	code, body := alice.do(http.MethodGet, "/api/auth/me", nil)
	if code != http.StatusOK {
		t.Fatalf("Expected current user, got %d %v", code, body)
	}
	if user := body["user"].(map[string]interface{}); user["email"] != "alice@example.com" || user["password"] != nil {
		t.Errorf("Unexpected user payload: %v", user)
	}

	code, body = alice.do(http.MethodPost, "/api/bubbles", map[string]interface{}{
		"title": "Board games tonight", "maxMembers": 2, "latitude": 0, "longitude": 0, "interestIds": []int{8, 9},
	})
	if code != http.StatusCreated {
		t.Fatalf("Failed to create bubble: %d %v", code, body)
	}
	bubbleID := uint(body["bubble"].(map[string]interface{})["id"].(float64))
	path := fmt.Sprintf("/api/bubbles/%d", bubbleID)

	if code, body = bob.do(http.MethodPost, path+"/join", nil); code != http.StatusOK {
		t.Fatalf("Bob failed to join: %d %v", code, body)
	}
	if code, body = carol.do(http.MethodPost, path+"/join", nil); code != http.StatusBadRequest || body["error"] != "Bubble is full" {
		t.Errorf("Expected full bubble for carol, got %d %v", code, body)
	}

	msgPath := fmt.Sprintf("/api/messages/%d", bubbleID)
	if code, body = carol.do(http.MethodPost, msgPath, map[string]string{"content": "hi"}); code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-member message, got %d %v", code, body)
	}
	if code, body = bob.do(http.MethodPost, msgPath, map[string]string{"content": "  hello  "}); code != http.StatusCreated {
		t.Fatalf("Bob failed to send message: %d %v", code, body)
	}

	code, body = alice.do(http.MethodGet, msgPath, nil)
	messages, _ := body["messages"].([]interface{})
	if code != http.StatusOK || len(messages) != 1 {
		t.Fatalf("Expected one message, got %d %v", code, body)
	}
	if m := messages[0].(map[string]interface{}); m["content"] != "hello" || m["sender_name"] != "bob" {
		t.Errorf("Unexpected message: %v", m)
	}

	if code, _ = bob.do(http.MethodPost, path+"/close", nil); code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-owner close, got %d", code)
	}
	if code, body = alice.do(http.MethodPost, path+"/close", nil); code != http.StatusOK {
		t.Fatalf("Owner failed to close: %d %v", code, body)
	}
	if code, body = bob.do(http.MethodPost, msgPath, map[string]string{"content": "late"}); code != http.StatusBadRequest || body["error"] != "Bubble is closed" {
		t.Errorf("Expected closed bubble error, got %d %v", code, body)
	}

	code, body = alice.do(http.MethodGet, path, nil)
	if code != http.StatusOK {
		t.Fatalf("Failed to get bubble: %d %v", code, body)
	}
	details := body["bubble"].(map[string]interface{})
	members := details["members"].([]interface{})
	if details["status"] != "closed" || len(members) != 2 || members[0].(map[string]interface{})["role"] != "owner" {
		t.Errorf("Unexpected bubble details: %v", details)
	}

	if code, _ = alice.do(http.MethodPost, "/api/auth/logout", nil); code != http.StatusOK {
		t.Errorf("Logout failed: %d", code)
	}
	if code, _ = alice.do(http.MethodGet, "/api/auth/me", nil); code != http.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", code)
	}
}

func TestAPI_LoginAndRecommendationsFallback(t *testing.T) {
	resetDatabase(t)
	srv := newAPIServer(t, redisClient)

	dave := newAPIClient(t, srv)
	dave.register("dave")

	fresh := newAPIClient(t, srv)
	if code, body := fresh.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "dave@example.com", "password": "wrong"}); code != http.StatusUnauthorized || body["error"] != "Invalid credentials" {
		t.Errorf("Expected invalid credentials, got %d %v", code, body)
	}
	if code, body := fresh.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "dave@example.com", "password": "secret-dave"}); code != http.StatusOK {
		t.Fatalf("Login failed: %d %v", code, body)
	}

	if code, body := fresh.do(http.MethodPost, "/api/auth/interests", map[string]interface{}{"interestIds": []int{1, 2}}); code != http.StatusOK {
		t.Fatalf("Failed to save interests: %d %v", code, body)
	}
	code, body := fresh.do(http.MethodGet, "/api/auth/interests", nil)
	if interests, _ := body["interests"].([]interface{}); code != http.StatusOK || len(interests) != 2 {
		t.Errorf("Expected 2 saved interests, got %d %v", code, body)
	}

	// ML-сервис отвечает 500, рекомендации строятся по интересам
	code, body = fresh.do(http.MethodGet, "/api/recommendations", nil)
	if code != http.StatusOK || body["bubbles"] == nil {
		t.Errorf("Expected fallback recommendations, got %d %v", code, body)
	}

	code, body = fresh.do(http.MethodPost, "/api/recommendations/train", nil)
	if code != http.StatusServiceUnavailable || body["error"] != "ML service unavailable" {
		t.Errorf("Expected 503 for train, got %d %v", code, body)
	}
}

func TestAPI_SessionStoreOutage(t *testing.T) {
	resetDatabase(t)

	resource, err := startRedis()
	if err != nil {
		t.Fatalf("Could not start Redis: %s", err)
	}
	defer pool.Purge(resource)

	var rc *redis.Client
	if err := pool.Retry(func() error {
		var err error
		rc, err = database.NewRedisClient(redisConfig(resource))
		return err
	}); err != nil {
		t.Fatalf("Could not connect to Redis: %s", err)
	}
	defer rc.Close()

	srv := newAPIServer(t, rc)
	erin := newAPIClient(t, srv)
	erin.register("erin")

	t.Log("Stopping Redis container to simulate session store failure")
	if err := pool.Purge(resource); err != nil {
		t.Fatalf("Could not purge Redis container: %s", err)
	}

	if code, body := erin.do(http.MethodGet, "/api/auth/me", nil); code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 while sessions are unavailable, got %d %v", code, body)
	}
	if code, _ := erin.do(http.MethodGet, "/api/interests", nil); code != http.StatusOK {
		t.Errorf("Expected public route to keep working, got %d", code)
	}
	if code, _ := erin.do(http.MethodGet, "/api/bubbles", nil); code != http.StatusOK {
		t.Errorf("Expected bubble listing to keep working, got %d", code)
	}
}
