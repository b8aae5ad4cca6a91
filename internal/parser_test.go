package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseEmailsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.json")
	data := `[
  {"body": "monthly $15.99", "snippet": "charged", "from": "no-reply@netflix.com", "subject": "Receipt", "date": "2024-03-01"},
  {"from": "a@b.com", "subject": "Hi", "date": "2024-03-02"}
]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	emails, err := ParseEmailsJSON(path)
	if err != nil {
		t.Fatalf("ParseEmailsJSON: %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("emails = %d, want 2", len(emails))
	}
	if emails[0].From != "no-reply@netflix.com" || emails[0].Body != "monthly $15.99" {
		t.Errorf("first email = %+v", emails[0])
	}
	if emails[1].Body != "" || emails[1].Snippet != "" {
		t.Errorf("missing fields should stay empty: %+v", emails[1])
	}
}

func TestParseEmailsJSON_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseEmailsJSON(path); err == nil {
		t.Error("expected error for non-array JSON")
	}
}

func TestParseEmailsJSON_MissingFile(t *testing.T) {
	if _, err := ParseEmailsJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseEmailsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	// Title row above the header, mimicking real exports
	_ = f.SetSheetRow(sheet, "A1", &[]any{"Mail export"})
	_ = f.SetSheetRow(sheet, "A2", &[]any{"Date", "From", "Subject", "Snippet", "Body"})
	_ = f.SetSheetRow(sheet, "A3", &[]any{"2024-03-01", "no-reply@netflix.com", "Receipt", "charged", "monthly $15.99"})
	_ = f.SetSheetRow(sheet, "A4", &[]any{"2024-03-02", "a@b.com", "Hi"})
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	_ = f.Close()

	emails, err := ParseEmailsXLSX(path)
	if err != nil {
		t.Fatalf("ParseEmailsXLSX: %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("emails = %d, want 2: %+v", len(emails), emails)
	}
	want := EmailRecord{
		Date:    "2024-03-01",
		From:    "no-reply@netflix.com",
		Subject: "Receipt",
		Snippet: "charged",
		Body:    "monthly $15.99",
	}
	if emails[0] != want {
		t.Errorf("first email = %+v, want %+v", emails[0], want)
	}
	if emails[1].Body != "" {
		t.Errorf("short row body = %q, want empty", emails[1].Body)
	}
}

func TestParseEmailsXLSX_NoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noheader.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"just", "some", "cells"})
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	if _, err := ParseEmailsXLSX(path); err == nil {
		t.Error("expected error when no header row is present")
	}
}

func TestParserRegistry(t *testing.T) {
	for _, source := range []string{"json", "xlsx"} {
		if !IsKnownParser(source) {
			t.Errorf("parser %q not registered", source)
		}
		if _, err := GetParser(source); err != nil {
			t.Errorf("GetParser(%q): %v", source, err)
		}
	}
	if _, err := GetParser("mbox"); err == nil {
		t.Error("expected error for unregistered source")
	}
}

func TestParseFileArg(t *testing.T) {
	tests := []struct {
		arg        string
		wantFormat string
		wantPath   string
	}{
		{"json:emails.json", "json", "emails.json"},
		{"xlsx:export.xlsx", "xlsx", "export.xlsx"},
		{"emails.json", "", "emails.json"},
		{`C:\exports\mail.xlsx`, "", `C:\exports\mail.xlsx`},
		{"mbox:mail.mbox", "", "mbox:mail.mbox"},
	}

	for _, tt := range tests {
		format, path := ParseFileArg(tt.arg)
		if format != tt.wantFormat || path != tt.wantPath {
			t.Errorf("ParseFileArg(%q) = (%q, %q), want (%q, %q)",
				tt.arg, format, path, tt.wantFormat, tt.wantPath)
		}
	}
}
