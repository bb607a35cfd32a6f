package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verly-ai/founder-platform/internal/config"
	"github.com/verly-ai/founder-platform/internal/ledger"
	"github.com/verly-ai/founder-platform/internal/metrics"
	"github.com/verly-ai/founder-platform/internal/models"
	"github.com/verly-ai/founder-platform/internal/security"
	"github.com/verly-ai/founder-platform/internal/session"
	"github.com/verly-ai/founder-platform/internal/testutil"
)

const testPassword = "correct-horse-42"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handles := testutil.OpenHandles(t)

	hash, errHash := security.HashPassword(testPassword)
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	testutil.Create(t, handles.Founder, &models.Admin{Username: "founder", Password: hash, Role: models.AdminRoleFounder, Active: true})
	testutil.Create(t, handles.Founder, &models.Admin{Username: "viewer", Password: hash, Role: models.AdminRoleViewer, Active: true})
	disabled := models.Admin{Username: "disabled", Password: hash, Role: models.AdminRoleFounder, Active: true}
	testutil.Create(t, handles.Founder, &disabled)
	if errUpdate := handles.Founder.Model(&disabled).Update("active", false).Error; errUpdate != nil {
		t.Fatalf("disable admin: %v", errUpdate)
	}

	r := gin.New()
	RegisterAdminRoutes(r, Options{
		Handles:               handles,
		JWT:                   config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
		Sessions:              session.NewMemoryRegistry(),
		Metrics:               metrics.NewService(ledger.NewReader(handles.Main)),
		CostWindowDays:        30,
		SnapshotRetentionDays: 365,
	})
	return r
}

func do(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := do(r, http.MethodPost, "/v0/admin/login", "", map[string]string{"username": username, "password": testPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode login: %v", errDecode)
	}
	if resp.Data.Token == "" {
		t.Fatalf("expected token in login response")
	}
	return resp.Data.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := setupRouter(t)

	if w := do(r, http.MethodPost, "/v0/admin/login", "", map[string]string{"username": "founder", "password": "wrong-password"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/v0/admin/login", "", map[string]string{"username": "nobody", "password": testPassword}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/v0/admin/login", "", map[string]string{"username": "disabled", "password": testPassword}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled admin, got %d", w.Code)
	}
}

func TestRoutesRequireSession(t *testing.T) {
	r := setupRouter(t)

	for _, token := range []string{"", "garbage"} {
		if w := do(r, http.MethodGet, "/v0/admin/metrics", token, nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", token, w.Code)
		}
	}

	token := login(t, r, "founder")
	if w := do(r, http.MethodGet, "/v0/admin/me", token, nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for /me, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/v0/admin/metrics", token, nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for /metrics, got %d: %s", w.Code, w.Body.String())
	}

	if w := do(r, http.MethodPost, "/v0/admin/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for logout, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/v0/admin/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked session to be rejected, got %d", w.Code)
	}
}

func TestViewerIsReadOnly(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r, "viewer")

	if w := do(r, http.MethodGet, "/v0/admin/settings", token, nil); w.Code != http.StatusOK {
		t.Fatalf("expected viewer to read settings, got %d", w.Code)
	}
	if w := do(r, http.MethodPut, "/v0/admin/settings", token, map[string]any{"cost_window_days": 7}); w.Code != http.StatusForbidden {
		t.Fatalf("expected viewer write to be forbidden, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/v0/admin/service-rates", token, map[string]any{}); w.Code != http.StatusForbidden {
		t.Fatalf("expected viewer create to be forbidden, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/v0/admin/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("expected viewer to log out, got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	r := setupRouter(t)
	w := do(r, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
