package internal

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseEmailsXLSX reads emails from an Excel export. The sheet must
// carry a header row with Date, From and Subject columns; Snippet and
// Body are optional. Header matching is case-insensitive and the
// header row does not have to be the first row.
func ParseEmailsXLSX(path string) ([]EmailRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}

	// Find header row and column indices
	dateCol, fromCol, subjectCol, snippetCol, bodyCol := -1, -1, -1, -1, -1
	dataStartRow := -1

	for i, row := range rows {
		for j, cell := range row {
			switch strings.ToLower(strings.TrimSpace(cell)) {
			case "date":
				dateCol = j
			case "from", "sender":
				fromCol = j
			case "subject":
				subjectCol = j
			case "snippet":
				snippetCol = j
			case "body":
				bodyCol = j
			}
		}
		if dateCol >= 0 && fromCol >= 0 && subjectCol >= 0 {
			dataStartRow = i + 1
			break
		}
		dateCol, fromCol, subjectCol, snippetCol, bodyCol = -1, -1, -1, -1, -1
	}

	if dataStartRow < 0 {
		return nil, fmt.Errorf("no header row with Date, From and Subject columns found")
	}

	cellAt := func(row []string, col int) string {
		if col < 0 || col >= len(row) {
			return ""
		}
		return row[col]
	}

	var emails []EmailRecord
	for _, row := range rows[dataStartRow:] {
		date := strings.TrimSpace(cellAt(row, dateCol))
		from := strings.TrimSpace(cellAt(row, fromCol))
		if date == "" && from == "" {
			continue // trailing empty row
		}
		emails = append(emails, EmailRecord{
			Date:    date,
			From:    from,
			Subject: cellAt(row, subjectCol),
			Snippet: cellAt(row, snippetCol),
			Body:    cellAt(row, bodyCol),
		})
	}

	return emails, nil
}

func init() {
	RegisterParser("xlsx", ParserFunc(ParseEmailsXLSX))
}
