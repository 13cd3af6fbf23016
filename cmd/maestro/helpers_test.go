package main

import (
	"errors"
	"strings"
	"testing"

	"maestro/internal/approvals"
	"maestro/internal/assetcache"
	"maestro/internal/services"
	"maestro/internal/services/portal"
)

func TestContentTypeFromArg(t *testing.T) {
	cases := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{arg: "concept", want: portal.ContentConcept},
		{arg: "Structure", want: portal.ContentStructure},
		{arg: "emails", want: portal.ContentEmailSequence},
		{arg: "email_sequence", want: portal.ContentEmailSequence},
		{arg: "video", wantErr: true},
		{arg: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := contentTypeFromArg(tc.arg)
		if tc.wantErr {
			if err == nil {
				t.Errorf("contentTypeFromArg(%q): expected error, got %q", tc.arg, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("contentTypeFromArg(%q): %v", tc.arg, err)
			continue
		}
		if got != tc.want {
			t.Errorf("contentTypeFromArg(%q) = %q, want %q", tc.arg, got, tc.want)
		}
	}
}

func TestConceptByNumber(t *testing.T) {
	asset := &portal.Asset{
		ID:             "asset-1",
		ConceptVersion: 2,
		ConceptsImproved: []portal.Concept{
			{Title: "Skaler uten ansettelser", BigIdea: "Systemet selger"},
			{Title: "Webinarmaskinen", BigIdea: "En kveld, fem kunder"},
		},
	}

	view, err := conceptByNumber(asset, "2")
	if err != nil {
		t.Fatalf("conceptByNumber: %v", err)
	}
	if view.Concept.Title != "Webinarmaskinen" {
		t.Errorf("unexpected concept %q", view.Concept.Title)
	}
	if view.Ref.Index != 1 || !view.Ref.FromImproved() {
		t.Errorf("unexpected ref %+v", view.Ref)
	}
	if view.Ref.Generation != 2 {
		t.Errorf("ref generation = %d, want 2", view.Ref.Generation)
	}

	if _, err := conceptByNumber(asset, "3"); err == nil {
		t.Error("expected out-of-range error for concept 3")
	}
	if _, err := conceptByNumber(asset, "abc"); err == nil {
		t.Error("expected parse error for non-numeric argument")
	}
}

func TestEmailByNumber(t *testing.T) {
	asset := &portal.Asset{
		ID: "asset-1",
		EmailPlan: &portal.EmailPlan{
			Emails: []portal.EmailDraft{
				{Day: "-3", Segment: "pre_webinar", Subject: "Snart i gang"},
				{Day: "+1", Segment: "post_webinar", Subject: "Takk for i går"},
				{Day: "+2", Purpose: "sales pitch", Subject: "Tilbudet stenger"},
			},
		},
	}

	entry, err := emailByNumber(asset, "2")
	if err != nil {
		t.Fatalf("emailByNumber: %v", err)
	}
	if entry.Email.Subject != "Takk for i går" {
		t.Errorf("unexpected email %q", entry.Email.Subject)
	}

	if _, err := emailByNumber(asset, "9"); err == nil {
		t.Error("expected not-found error for email 9")
	}
	if _, err := emailByNumber(&portal.Asset{}, "1"); err == nil {
		t.Error("expected error when no plan exists")
	}
}

func TestSequenceLabel(t *testing.T) {
	if got := sequenceLabel(assetcache.SequencePreWebinar); got != "Pre-Webinar" {
		t.Errorf("sequenceLabel(pre_webinar) = %q", got)
	}
	if got := sequenceLabel(assetcache.SequenceKey("other")); got != "other" {
		t.Errorf("sequenceLabel(other) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a long value that exceeds the limit", 10); got != "a long ..." {
		t.Errorf("truncate long = %q", got)
	}
}

func TestPrintFailureAppendsHint(t *testing.T) {
	var buf strings.Builder
	err := services.Wrap(services.ErrTimeout, "jobs", "watch", "gave up after 60 polls", nil)
	printFailure(&buf, err)
	out := buf.String()
	if !strings.Contains(out, "gave up after 60 polls") {
		t.Errorf("output %q missing the error itself", out)
	}
	if !strings.Contains(out, "maestro jobs status") {
		t.Errorf("output %q missing the timeout advisory", out)
	}

	buf.Reset()
	printFailure(&buf, errors.New("plain failure"))
	if strings.Count(strings.TrimSpace(buf.String()), "\n") != 0 {
		t.Errorf("unhinted error should print a single line, got %q", buf.String())
	}
}

func TestHasUnsubmittedMedia(t *testing.T) {
	items := []approvals.Item{
		{Kind: approvals.KindConcept, Key: "concept", Signals: approvals.Signals{SubmittedAt: "2026-08-20"}},
		{Kind: approvals.KindMedia, Key: "instagram_post"},
	}
	if !hasUnsubmittedMedia(items) {
		t.Error("pending media should trigger the notice")
	}

	items[1].Signals.SubmittedAt = "2026-08-21"
	if hasUnsubmittedMedia(items) {
		t.Error("submitted media should not trigger the notice")
	}

	if hasUnsubmittedMedia(nil) {
		t.Error("no items, no notice")
	}
}

func TestStageEvidenceFoldsApprovals(t *testing.T) {
	asset := &portal.Asset{
		ID:                    "asset-1",
		ConceptsImproved:      []portal.Concept{{Title: "T", BigIdea: "B"}},
		SelectedConcept:       &portal.Concept{Title: "T", BigIdea: "B"},
		StructureContent:      "outline",
		ConceptApprovalStatus: "approved",
	}
	ev := stageEvidence(asset)
	if !ev.HasAsset || !ev.HasConcepts || !ev.HasSelection || !ev.HasStructure {
		t.Errorf("unexpected evidence %+v", ev)
	}
	if !ev.ConceptApproved {
		t.Error("concept approval not carried into evidence")
	}
	if ev.StructureApproved || ev.EmailsApproved {
		t.Error("unexpected approvals set")
	}

	asset.ConceptApprovalStatus = ""
	asset.ReadyToPublish = true
	if !stageEvidence(asset).ConceptApproved {
		t.Error("ready_to_publish should imply concept approval")
	}
}
