package portal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"maestro/internal/services"
	"maestro/internal/services/portal"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...portal.Option) *portal.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := portal.New(server.URL, 5*time.Second, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	cases := []string{"", "   ", "devwebinar.example.no/api", "ftp://example.no"}
	for _, base := range cases {
		if _, err := portal.New(base, time.Second); !errors.Is(err, services.ErrValidation) {
			t.Errorf("New(%q) error = %v, want ErrValidation", base, err)
		}
	}
}

func TestLoginReturnsToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","user_id":"u-1","email":"kari@example.no","full_name":"Kari Nordmann"}`))
	}))

	token, err := client.Login(context.Background(), "kari@example.no", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token.AccessToken != "tok-1" || token.UserID != "u-1" {
		t.Fatalf("unexpected token %+v", token)
	}
}

func TestLoginRejectsTokenWithoutCredential(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	if _, err := client.Login(context.Background(), "kari@example.no", "hunter2"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Login error = %v, want ErrValidation", err)
	}
}

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		detail string
		marker error
	}{
		{"unauthorized", http.StatusUnauthorized, "Incorrect email or password", services.ErrAuth},
		{"forbidden", http.StatusForbidden, "", services.ErrAuth},
		{"not found", http.StatusNotFound, "Mentor profile not found", services.ErrNotFound},
		{"bad request", http.StatusBadRequest, "Invalid concept index", services.ErrValidation},
		{"unprocessable", http.StatusUnprocessableEntity, "", services.ErrValidation},
		{"server error", http.StatusInternalServerError, "boom", services.ErrTransient},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				w.Write([]byte(`{"detail":"` + tc.detail + `"}`))
			}))
			_, err := client.Profile(context.Background(), "u-1")
			if !errors.Is(err, tc.marker) {
				t.Fatalf("error = %v, want %v", err, tc.marker)
			}
			if tc.detail != "" && !strings.Contains(err.Error(), tc.detail) {
				t.Fatalf("error %q should carry backend detail %q", err, tc.detail)
			}
		})
	}
}

func TestTokenSourceSetsAuthorization(t *testing.T) {
	var got string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"m-1","user_id":"u-1","current_stage":"onboarding"}`))
	}), portal.WithTokenSource(func() string { return "tok-9" }))

	if _, err := client.Profile(context.Background(), "u-1"); err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got != "Bearer tok-9" {
		t.Fatalf("Authorization = %q, want bearer token", got)
	}
}

func TestRequestIDHeader(t *testing.T) {
	var got string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"id":"m-1","user_id":"u-1","current_stage":"onboarding"}`))
	}))

	ctx := services.WithRequestID(context.Background(), "req-42")
	if _, err := client.Profile(ctx, "u-1"); err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got != "req-42" {
		t.Fatalf("X-Request-ID = %q, want the context correlation id", got)
	}

	if _, err := client.Profile(context.Background(), "u-1"); err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got == "" || got == "req-42" {
		t.Fatalf("X-Request-ID = %q, want a freshly generated id", got)
	}
}

func TestUploadContextAsync(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("mentor_id") != "m-1" {
			t.Errorf("mentor_id = %q", r.FormValue("mentor_id"))
		}
		if r.FormValue("onboarding_doc") == "" {
			t.Error("missing onboarding_doc field")
		}
		w.Write([]byte(`{"status":"accepted","job_id":"job-7"}`))
	}))

	result, err := client.UploadContext(context.Background(), portal.UploadContextRequest{
		MentorID:      "m-1",
		OnboardingDoc: "method notes",
		HookAnalysis:  "hooks",
	})
	if err != nil {
		t.Fatalf("UploadContext: %v", err)
	}
	if !result.Async || result.JobID != "job-7" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestUploadContextLegacySynchronous(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","asset_id":"asset-3"}`))
	}))

	result, err := client.UploadContext(context.Background(), portal.UploadContextRequest{
		MentorID:      "m-1",
		OnboardingDoc: "method notes",
	})
	if err != nil {
		t.Fatalf("UploadContext: %v", err)
	}
	if result.Async || result.AssetID != "asset-3" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestUploadContextRejectsMalformedAck(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"accepted"}`))
	}))
	_, err := client.UploadContext(context.Background(), portal.UploadContextRequest{MentorID: "m-1", OnboardingDoc: "doc"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestJobStatusValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		status  portal.JobState
	}{
		{"processing", `{"job_id":"job-1","status":"processing","progress":40,"message":"Analyzing"}`, false, portal.JobProcessing},
		{"completed", `{"job_id":"job-1","status":"completed","progress":100,"asset_id":"asset-9"}`, false, portal.JobCompleted},
		{"unknown status", `{"job_id":"job-1","status":"paused"}`, true, ""},
		{"trailing garbage", `{"job_id":"job-1","status":"pending"}{"x":1}`, true, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/webinar/jobs/job-1/status" {
					t.Errorf("path = %q", r.URL.Path)
				}
				w.Write([]byte(tc.body))
			}))
			job, err := client.JobStatus(context.Background(), "job-1")
			if tc.wantErr {
				if !errors.Is(err, services.ErrValidation) {
					t.Fatalf("error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("JobStatus: %v", err)
			}
			if job.Status != tc.status {
				t.Fatalf("status = %q, want %q", job.Status, tc.status)
			}
		})
	}
}

func TestJobStateTerminal(t *testing.T) {
	if portal.JobPending.Terminal() || portal.JobProcessing.Terminal() {
		t.Error("pending/processing must not be terminal")
	}
	if !portal.JobCompleted.Terminal() || !portal.JobFailed.Terminal() {
		t.Error("completed/failed must be terminal")
	}
}

func TestAssetAcceptsLegacyMongoID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_id":"asset-12","mentor_id":"m-1","concept_version":2}`))
	}))
	asset, err := client.Asset(context.Background(), "asset-12")
	if err != nil {
		t.Fatalf("Asset: %v", err)
	}
	if asset.ID != "asset-12" || asset.ConceptVersion != 2 {
		t.Fatalf("unexpected asset %+v", asset)
	}
}

func TestSelectConceptRoundTrip(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/webinar/assets/asset-1/select-concept" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","selected_concept":{"title":"Skaler uten utbrenthet","big_idea":"Systemet selger"}}`))
	}))
	concept, err := client.SelectConcept(context.Background(), "asset-1", 1, true)
	if err != nil {
		t.Fatalf("SelectConcept: %v", err)
	}
	if concept.Title != "Skaler uten utbrenthet" {
		t.Fatalf("unexpected concept %+v", concept)
	}
}

func TestGenerateStructureReturnsText(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","structure":"Slide 1: Hook"}`))
	}))
	structure, err := client.GenerateStructure(context.Background(), "asset-1", "concept text")
	if err != nil {
		t.Fatalf("GenerateStructure: %v", err)
	}
	if structure != "Slide 1: Hook" {
		t.Fatalf("structure = %q", structure)
	}
}

func TestSubmitForApprovalValidatesContentType(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the backend")
	}))
	if _, err := client.SubmitForApproval(context.Background(), "asset-1", "video"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestGenerateVideoReturnsTalkID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","id":"talk-5"}`))
	}))
	talkID, err := client.GenerateVideo(context.Background(), portal.VideoRequest{ScriptText: "intro"})
	if err != nil {
		t.Fatalf("GenerateVideo: %v", err)
	}
	if talkID != "talk-5" {
		t.Fatalf("talkID = %q", talkID)
	}
}
