package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeCLIConfig produces a config file rooted in the test's temp
// directory and pointed at the fake backend.
func writeCLIConfig(t *testing.T, backendURL string) string {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[portal]
base_url = %q
request_timeout = 5

[jobs]
poll_interval = 1
initial_delay = 0
max_attempts = 3
progress_every = 1
`, base, filepath.Join(base, "logs"), backendURL)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginStoresSessionAndWhoamiReportsIt(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-1",
			"token_type":   "bearer",
			"user_id":      "user-7",
			"email":        "kari@example.no",
			"full_name":    "Kari Nordmann",
		})
	}))
	defer backend.Close()

	configPath := writeCLIConfig(t, backend.URL)

	out, err := runCommand(t, configPath, "login", "--email", "kari@example.no", "--password", "hunter2")
	if err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Logged in as Kari Nordmann") {
		t.Errorf("unexpected login output: %q", out)
	}

	out, err = runCommand(t, configPath, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v\n%s", err, out)
	}
	if !strings.Contains(out, "kari@example.no") || !strings.Contains(out, "user-7") {
		t.Errorf("whoami output missing identity: %q", out)
	}

	out, err = runCommand(t, configPath, "logout")
	if err != nil {
		t.Fatalf("logout: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Logged out") {
		t.Errorf("unexpected logout output: %q", out)
	}

	out, err = runCommand(t, configPath, "whoami")
	if err != nil {
		t.Fatalf("whoami after logout: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Not logged in") {
		t.Errorf("expected logged-out whoami, got: %q", out)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	defer backend.Close()

	configPath := writeCLIConfig(t, backend.URL)

	for _, args := range [][]string{
		{"concepts", "list"},
		{"structure", "show"},
		{"emails", "list"},
		{"approvals", "status"},
	} {
		if _, err := runCommand(t, configPath, args...); err == nil {
			t.Errorf("%v: expected login error", args)
		} else if !strings.Contains(err.Error(), "not logged in") {
			t.Errorf("%v: unexpected error %v", args, err)
		}
	}
}

func TestConceptsListRendersCandidates(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/login":
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "token-1",
				"token_type":   "bearer",
				"user_id":      "user-7",
				"email":        "kari@example.no",
			})
		case strings.HasPrefix(r.URL.Path, "/webinar/assets/"):
			if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
				t.Errorf("missing bearer token, got %q", got)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id":              "asset-1",
				"mentor_id":       "user-7",
				"concept_version": 1,
				"concepts_improved": []map[string]any{
					{"title": "Webinarmaskinen", "big_idea": "En kveld, fem kunder"},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	configPath := writeCLIConfig(t, backend.URL)

	if out, err := runCommand(t, configPath, "login", "--email", "kari@example.no", "--password", "x"); err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}

	out, err := runCommand(t, configPath, "concepts", "list", "--asset", "asset-1")
	if err != nil {
		t.Fatalf("concepts list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Webinarmaskinen") {
		t.Errorf("concept title missing from output: %q", out)
	}
}

func TestRootCommandWiring(t *testing.T) {
	cmd := newRootCommand()
	want := []string{
		"login", "logout", "register", "whoami",
		"profile", "setup", "status",
		"concepts", "structure", "emails", "media", "video",
		"approvals", "jobs",
		"start", "stop", "restart", "daemon-status", "test-notify",
		"logs", "config",
	}
	have := map[string]bool{}
	for _, sub := range cmd.Commands() {
		have[sub.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
