package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func doJSON(t *testing.T, env *testEnv, method, path, token string, body any, cookies ...*http.Cookie) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, env.ts.URL+path, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp, raw
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealthEndpoint(t *testing.T) {
	env := startTestServer(t)

	resp, body := doJSON(t, env, http.MethodGet, "/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d: %s", resp.StatusCode, body)
	}
}

func TestRegisterLoginAndMe(t *testing.T) {
	env := startTestServer(t)

	resp, body := doJSON(t, env, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	var reg AuthResponse
	if err := json.Unmarshal(body, &reg); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	if reg.Token == "" || reg.User.Email != "alice@example.com" {
		t.Fatalf("unexpected register response: %+v", reg)
	}
	if findCookie(resp, refreshCookieName) == nil {
		t.Fatalf("expected refresh cookie to be set")
	}

	// Duplicate email is a conflict.
	resp, _ = doJSON(t, env, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name:     "alice2",
		Email:    "alice@example.com",
		Password: "password123",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, env, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var login AuthResponse
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}

	resp, _ = doJSON(t, env, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, env, http.MethodGet, "/api/auth/me", login.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var me UserResponse
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatalf("unmarshal me response: %v", err)
	}
	if me.ID != reg.User.ID || me.Name != "alice" {
		t.Fatalf("unexpected me response: %+v", me)
	}

	resp, _ = doJSON(t, env, http.MethodGet, "/api/auth/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRefreshFlow(t *testing.T) {
	env := startTestServer(t)

	resp, _ := doJSON(t, env, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	refresh := findCookie(resp, refreshCookieName)
	if refresh == nil {
		t.Fatalf("expected refresh cookie")
	}

	resp, body := doJSON(t, env, http.MethodPost, "/api/auth/refresh", "", nil, refresh)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal refresh response: %v", err)
	}
	if out.Token == "" {
		t.Fatalf("expected a new access token")
	}
	if _, err := env.auth.ValidateToken(out.Token); err != nil {
		t.Fatalf("refreshed token not valid: %v", err)
	}

	// No cookie at all is rejected.
	resp, _ = doJSON(t, env, http.MethodPost, "/api/auth/refresh", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	// A garbage cookie is rejected too.
	resp, _ = doJSON(t, env, http.MethodPost, "/api/auth/refresh", "", nil, &http.Cookie{
		Name:  refreshCookieName,
		Value: "garbage",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
