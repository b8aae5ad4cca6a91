package internal

import (
	"context"
	"errors"
	"testing"
)

// stubClassifier returns canned results keyed by sender address.
type stubClassifier struct {
	results map[string]*AIResult
	err     error
	calls   int
}

func (s *stubClassifier) Detect(_ context.Context, email EmailRecord) (*AIResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results[email.From], nil
}

func TestProcessEmails_EndToEnd(t *testing.T) {
	emails := []EmailRecord{
		{
			Body:    "Your monthly plan. We charged $15.99 to your card.",
			Snippet: "We charged $15.99",
			From:    "no-reply@netflix.com",
			Subject: "Your Netflix subscription",
			Date:    "2024-03-01",
		},
	}

	d := NewDetector(nil, nil, nil)
	report := d.ProcessEmails(context.Background(), emails)

	if report.Processed != 1 {
		t.Fatalf("processed = %d, want 1", report.Processed)
	}
	if len(report.Skipped) != 0 {
		t.Fatalf("skipped = %d, want 0", len(report.Skipped))
	}
	if len(report.Subscriptions) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(report.Subscriptions))
	}

	sub := report.Subscriptions[0]
	if sub.Name != "netflix" {
		t.Errorf("name = %q, want netflix", sub.Name)
	}
	if sub.Cycle != CycleMonthly {
		t.Errorf("cycle = %q, want monthly", sub.Cycle)
	}
	if sub.Amount == nil || *sub.Amount != 15.99 {
		t.Errorf("amount = %v, want 15.99", fmtAmount(sub.Amount))
	}
	if sub.Category != CategoryStreaming {
		t.Errorf("category = %q, want streaming", sub.Category)
	}
	if sub.StartDate != "2024-03-01" {
		t.Errorf("start_date = %q, want 2024-03-01", sub.StartDate)
	}
}

func TestProcessEmails_SkipsBadDatesButContinues(t *testing.T) {
	emails := []EmailRecord{
		{Body: "monthly $9.99", From: "a@spotify.com", Subject: "Receipt", Date: "garbage"},
		{Body: "monthly $15.99", From: "b@netflix.com", Subject: "Receipt", Date: "2024-03-01"},
	}

	d := NewDetector(nil, nil, nil)
	report := d.ProcessEmails(context.Background(), emails)

	if report.Processed != 1 {
		t.Errorf("processed = %d, want 1", report.Processed)
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("skipped = %d, want 1", len(report.Skipped))
	}
	if report.Skipped[0].From != "a@spotify.com" {
		t.Errorf("skipped from = %q, want a@spotify.com", report.Skipped[0].From)
	}
	if report.Skipped[0].Err == nil {
		t.Error("skipped entry must carry the error")
	}
	if len(report.Subscriptions) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(report.Subscriptions))
	}
}

func TestProcessEmails_ClassifierErrorDegradesToRules(t *testing.T) {
	emails := []EmailRecord{
		{Body: "monthly $15.99", From: "no-reply@netflix.com", Subject: "Your Netflix subscription", Date: "2024-03-01"},
	}

	classifier := &stubClassifier{err: errors.New("rate limited")}
	d := NewDetector(classifier, nil, nil)
	report := d.ProcessEmails(context.Background(), emails)

	if report.ClassifierFailures != 1 {
		t.Errorf("classifier failures = %d, want 1", report.ClassifierFailures)
	}
	if report.Processed != 1 {
		t.Errorf("processed = %d, want 1 (email still handled by rules)", report.Processed)
	}
	if len(report.Subscriptions) != 1 || report.Subscriptions[0].Name != "netflix" {
		t.Fatalf("expected the rule-based record to survive, got %+v", report.Subscriptions)
	}
}

func TestProcessEmails_ClassifierResultOverridesRules(t *testing.T) {
	emails := []EmailRecord{
		{Body: "charged $5.00 monthly", From: "no-reply@netflix.com", Subject: "Receipt", Date: "2024-03-01"},
	}

	classifier := &stubClassifier{results: map[string]*AIResult{
		"no-reply@netflix.com": {Name: sptr("Netflix"), Amount: f64(15.49), Cycle: sptr("yearly")},
	}}
	d := NewDetector(classifier, nil, nil)
	report := d.ProcessEmails(context.Background(), emails)

	if classifier.calls != 1 {
		t.Errorf("classifier calls = %d, want 1", classifier.calls)
	}
	if len(report.Subscriptions) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(report.Subscriptions))
	}
	sub := report.Subscriptions[0]
	if sub.Amount == nil || *sub.Amount != 15.49 {
		t.Errorf("amount = %v, want classifier's 15.49", fmtAmount(sub.Amount))
	}
	if sub.Cycle != CycleYearly {
		t.Errorf("cycle = %q, want classifier's yearly", sub.Cycle)
	}
}

func TestProcessEmails_DeduplicatesAcrossEmails(t *testing.T) {
	emails := []EmailRecord{
		{Body: "Your 30 day trial of movie streaming", From: "no-reply@netflix.com", Subject: "Trial started", Date: "2024-01-01"},
		{Body: "We charged $15.99 for your monthly movie streaming", From: "no-reply@netflix.com", Subject: "Receipt", Date: "2024-02-01"},
	}

	d := NewDetector(nil, nil, nil)
	report := d.ProcessEmails(context.Background(), emails)

	if report.Processed != 2 {
		t.Errorf("processed = %d, want 2", report.Processed)
	}
	if len(report.Subscriptions) != 1 {
		t.Fatalf("subscriptions = %d, want 1 after dedup, got %+v", len(report.Subscriptions), report.Subscriptions)
	}

	sub := report.Subscriptions[0]
	if sub.StartDate != "2024-02-01" {
		t.Errorf("start_date = %q, want the later 2024-02-01", sub.StartDate)
	}
	if sub.Amount == nil || *sub.Amount != 15.99 {
		t.Errorf("amount = %v, want 15.99", fmtAmount(sub.Amount))
	}
	if sub.IsTrial == nil || !*sub.IsTrial {
		t.Error("trial flag from the January email should be backfilled")
	}
}

func TestProcessEmails_ConfigPipeline(t *testing.T) {
	emails := []EmailRecord{
		{Body: "monthly movie streaming $15.99", From: "no-reply@netflix.com", Subject: "Receipt", Date: "2024-01-01"},
		{Body: "monthly movie streaming $15.99", From: "info@dvd.netflix.com", Subject: "Receipt from Netflix DVD", Date: "2024-02-01"},
		{Body: "monthly music streaming $9.99", From: "billing@spotify.com", Subject: "Receipt", Date: "2024-01-15"},
	}

	cfg := mustConfig(t, `
groups:
  - name: netflix
    patterns:
      - "^netflix"
      - "netflix dvd"
exclude:
  - "^spotify$"
`)

	d := NewDetector(nil, cfg, nil)
	report := d.ProcessEmails(context.Background(), emails)

	if len(report.Subscriptions) != 1 {
		t.Fatalf("expected grouped netflix records and excluded spotify, got %+v", report.Subscriptions)
	}
	if report.Subscriptions[0].Name != "netflix" {
		t.Errorf("name = %q, want grouped netflix", report.Subscriptions[0].Name)
	}
}
