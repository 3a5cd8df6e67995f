package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MechanicWorks/MechanicWorks/internal/common/config"
	"github.com/MechanicWorks/MechanicWorks/internal/common/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Name = "shop-api"
	cfg.Server.Mode = "test"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.Issuer = "shop-api"
	cfg.Auth.TokenTTLHours = 24
	cfg.RateLimit.LoginMaxAttempts = 5
	cfg.RateLimit.LoginWindowSeconds = 60
	cfg.Cache.TicketTTLSeconds = 60
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	cfg.Log.Output = "stdout"

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	a, err := NewWithDB(cfg, log, db)
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	return a
}

func doJSON(t *testing.T, a *App, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return m
}

// 正常链路：注册 -> 登录 -> 建工单 -> 查工单；无 token 访问被拒。
func TestCustomerTicketFlow(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, http.MethodPost, "/customers/register", "", map[string]interface{}{
		"name":     "Jane Doe",
		"email":    "jane@example.dev",
		"password": "hunter2",
		"phone":    "555-0100",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, a, http.MethodPost, "/customers/login", "", map[string]interface{}{
		"email":    "jane@example.dev",
		"password": "hunter2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	token, _ := decodeBody(t, w)["token"].(string)
	if token == "" {
		t.Fatalf("login: expected token in response")
	}

	w = doJSON(t, a, http.MethodPost, "/service-tickets", token, map[string]interface{}{
		"VIN":         "2HGCM82633A654321",
		"description": "brake inspection",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create ticket: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, a, http.MethodGet, "/service-tickets/1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get ticket: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["VIN"]; got != "2HGCM82633A654321" {
		t.Fatalf("get ticket: unexpected VIN %v", got)
	}

	w = doJSON(t, a, http.MethodGet, "/service-tickets/1", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("get without token: expected 401, got %d", w.Code)
	}
	if got := decodeBody(t, w)["message"]; got != "Token is missing or invalid" {
		t.Fatalf("get without token: unexpected message %v", got)
	}
}

// 客户的 token 不能使用技师专属端点。
func TestRoleSeparation(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, http.MethodPost, "/customers/register", "", map[string]interface{}{
		"name": "Jane Doe", "email": "jane@example.dev", "password": "hunter2", "phone": "555-0100",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", w.Code)
	}
	w = doJSON(t, a, http.MethodPost, "/customers/login", "", map[string]interface{}{
		"email": "jane@example.dev", "password": "hunter2",
	})
	customerToken, _ := decodeBody(t, w)["token"].(string)

	w = doJSON(t, a, http.MethodGet, "/mechanics/statistics", customerToken, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("customer token on mechanic route: expected 401, got %d", w.Code)
	}

	w = doJSON(t, a, http.MethodPost, "/mechanics/register", "", map[string]interface{}{
		"name": "Bob", "email": "bob@shop.dev", "phone": "555-0200", "salary": 52000, "password": "secret",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("mechanic register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, a, http.MethodPost, "/mechanics/login", "", map[string]interface{}{
		"email": "bob@shop.dev", "password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("mechanic login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	mechanicToken, _ := decodeBody(t, w)["token"].(string)

	w = doJSON(t, a, http.MethodGet, "/mechanics/statistics", mechanicToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("mechanic statistics: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 技师 token 不能用在客户专属端点
	w = doJSON(t, a, http.MethodGet, "/customers/my-tickets", mechanicToken, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("mechanic token on customer route: expected 401, got %d", w.Code)
	}
}

// 登录限流：窗口内第 6 次尝试返回 429。
func TestLoginRateLimit(t *testing.T) {
	a := newTestApp(t)

	for i := 0; i < 5; i++ {
		w := doJSON(t, a, http.MethodPost, "/customers/login", "", map[string]interface{}{
			"email": "nobody@example.dev", "password": "wrong",
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, w.Code)
		}
	}

	w := doJSON(t, a, http.MethodPost, "/customers/login", "", map[string]interface{}{
		"email": "nobody@example.dev", "password": "wrong",
	})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on sixth attempt, got %d", w.Code)
	}
}

// 配件挂工单的完整链路，含重复关联拒绝。
func TestInventoryAddPartFlow(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, http.MethodPost, "/customers/register", "", map[string]interface{}{
		"name": "Jane Doe", "email": "jane@example.dev", "password": "hunter2", "phone": "555-0100",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", w.Code)
	}
	w = doJSON(t, a, http.MethodPost, "/customers/login", "", map[string]interface{}{
		"email": "jane@example.dev", "password": "hunter2",
	})
	customerToken, _ := decodeBody(t, w)["token"].(string)

	w = doJSON(t, a, http.MethodPost, "/customers/create-ticket", customerToken, map[string]interface{}{
		"VIN": "1HGCM82633A004352", "description": "oil change",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create ticket: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, a, http.MethodPost, "/mechanics/register", "", map[string]interface{}{
		"name": "Bob", "email": "bob@shop.dev", "phone": "555-0200", "salary": 52000, "password": "secret",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("mechanic register: expected 201, got %d", w.Code)
	}
	w = doJSON(t, a, http.MethodPost, "/mechanics/login", "", map[string]interface{}{
		"email": "bob@shop.dev", "password": "secret",
	})
	mechanicToken, _ := decodeBody(t, w)["token"].(string)

	w = doJSON(t, a, http.MethodPost, "/inventory", "", map[string]interface{}{
		"name": "Oil filter", "price": 9.99,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create inventory: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	itemID := fmt.Sprintf("%.0f", decodeBody(t, w)["id"].(float64))

	w = doJSON(t, a, http.MethodPost, "/inventory/"+itemID+"/add-part", mechanicToken, map[string]interface{}{
		"ticket_id": 1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add part: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, a, http.MethodPost, "/inventory/"+itemID+"/add-part", mechanicToken, map[string]interface{}{
		"ticket_id": 1,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate add part: expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// 工单列表里能看到配件
	w = doJSON(t, a, http.MethodGet, "/customers/my-tickets", customerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("my tickets: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var views []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode my tickets: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(views))
	}
	items, _ := views[0]["inventory_items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 inventory item on ticket, got %v", views[0]["inventory_items"])
	}
}
