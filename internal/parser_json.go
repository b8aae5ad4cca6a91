package internal

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParseEmailsJSON parses a JSON array of email objects, the format
// most mail-export tools emit:
//
//	[
//	  {"body": "...", "snippet": "...", "from": "no-reply@netflix.com",
//	   "subject": "Your Netflix subscription", "date": "2024-03-01"}
//	]
//
// Dates are kept as strings; parsing happens per email during
// processing so one bad date cannot fail the whole import.
func ParseEmailsJSON(path string) ([]EmailRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var emails []EmailRecord
	if err := json.Unmarshal(data, &emails); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	return emails, nil
}

func init() {
	RegisterParser("json", ParserFunc(ParseEmailsJSON))
}
