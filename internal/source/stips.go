package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/stipcheck/internal/model"
)

// LoadStips reads an ordered stipulation list from a CSV or XLSX file.
// A record missing its category or description is skipped with a warning,
// never fatally; auto-assigned IDs are derived from the source row number so
// skipping a row never shifts another requirement's ID. Returns an error only
// when the file itself is unreadable.
func LoadStips(path string) ([]model.Requirement, []string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx", ".xlsm":
		return loadXLSX(path)
	default:
		return nil, nil, fmt.Errorf("unsupported stips format %q (supported: .csv, .xlsx)", filepath.Ext(path))
	}
}

func loadCSV(path string) ([]model.Requirement, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open stips file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // Ragged rows are handled per-record

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read stips file: %w", err)
		}
		rows = append(rows, record)
	}

	return fromRows(rows)
}

func loadXLSX(path string) ([]model.Requirement, []string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open stips workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read stips sheet %q: %w", sheet, err)
	}

	return fromRows(rows)
}

// fromRows converts header + data rows into requirements. The header row is
// matched case-insensitively; "requirement" is accepted for "description".
func fromRows(rows [][]string) ([]model.Requirement, []string, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("stips file is empty")
	}

	columns := make(map[string]int)
	for i, name := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id", "stip_id", "stip id":
			columns["id"] = i
		case "category":
			columns["category"] = i
		case "description", "requirement", "requirement text", "stipulation":
			columns["description"] = i
		case "section":
			columns["section"] = i
		}
	}
	if _, ok := columns["category"]; !ok {
		return nil, nil, fmt.Errorf("stips file has no category column")
	}
	if _, ok := columns["description"]; !ok {
		return nil, nil, fmt.Errorf("stips file has no description column")
	}

	cell := func(row []string, column string) string {
		idx, ok := columns[column]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var (
		requirements []model.Requirement
		warnings     []string
	)
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-indexed, counting the header

		category := cell(row, "category")
		description := cell(row, "description")
		switch {
		case category == "" && description == "":
			continue // Blank padding rows are silently ignored
		case category == "":
			warnings = append(warnings, fmt.Sprintf("stips row %d: missing category, skipped", rowNum))
			continue
		case description == "":
			warnings = append(warnings, fmt.Sprintf("stips row %d: missing description, skipped", rowNum))
			continue
		}

		id := cell(row, "id")
		if id == "" {
			// Row-number IDs stay stable when other rows are skipped
			id = fmt.Sprintf("STIP-%03d", rowNum-1)
		}

		requirements = append(requirements, model.Requirement{
			ID:          id,
			Category:    category,
			Description: description,
			Section:     cell(row, "section"),
		})
	}

	return requirements, warnings, nil
}
