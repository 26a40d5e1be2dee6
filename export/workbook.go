/*
workbook.go - Spreadsheet exports of a year's leave figures

PURPOSE:
  Turns aggregator output into xlsx workbooks (excelize). Two layouts:

  Detail:  one sheet per employee
             Name: | <name>
             Annual Leave Days | <quota or ->
             Year: | <year>
             (blank)
             From | To | Days          (bold)
             DD-MM-YYYY | DD-MM-YYYY | <days>   one row per booking
             (blank)
             Total Days: | <total>

  Summary: one sheet, one row per employee
             Name | Quota | Taken | Remaining   (bold, dash when absent)

SHEET NAMES:
  Excel limits sheet names to 31 characters and forbids \ / ? * [ ] :.
  SheetName strips those, truncates, falls back to "Employee", and
  the detail workbook appends " (2)", " (3)"... to repeated names.

SEE ALSO:
  - leave/aggregator.go: Detail and Summarize
  - api/export.go: HTTP download handlers
*/
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-quota/leave"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	maxSheetNameLen  = 31
	defaultSheetName = "Employee"
	columnWidth      = 20
	absent           = "-"
)

// =============================================================================
// DETAIL WORKBOOK
// =============================================================================

// DetailWorkbook builds one sheet per employee. The caller owns the
// returned file and must Close it.
func DetailWorkbook(year int, details []leave.EmployeeDetail) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, err := boldStyle(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if len(details) == 0 {
		if err := f.SetSheetName(f.GetSheetName(0), fmt.Sprintf("Leave %d", year)); err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	}

	used := make(map[string]bool)
	for i, d := range details {
		name := uniqueSheetName(SheetName(d.Employee.Name), used)
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		if err := writeDetailSheet(f, name, year, d, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeDetailSheet(f *excelize.File, sheet string, year int, d leave.EmployeeDetail, bold int) error {
	rows := [][]any{
		{"Name:", d.Employee.Name},
		{"Annual Leave Days", optionalNumber(d.Quota)},
		{"Year:", year},
		{},
		{"From", "To", "Days"},
	}
	const headerRow = 5

	for _, b := range d.Bookings {
		rows = append(rows, []any{b.From.ExportString(), b.To.ExportString(), number(b.Days)})
	}
	rows = append(rows, []any{}, []any{"Total Days:", number(d.Taken)})

	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, headerRow, headerRow, bold); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "C", columnWidth)
}

// =============================================================================
// SUMMARY WORKBOOK
// =============================================================================

// SummaryWorkbook builds a single sheet with one row per employee. The
// caller owns the returned file and must Close it.
func SummaryWorkbook(year int, summaries []leave.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := fmt.Sprintf("Summary %d", year)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, err
	}

	rows := [][]any{{"Name", "Quota", "Taken", "Remaining"}}
	for _, s := range summaries {
		rows = append(rows, []any{
			s.Employee.Name,
			optionalNumber(s.Quota),
			number(s.Taken),
			optionalNumber(s.Remaining),
		})
	}

	if err := writeRows(f, sheet, rows); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := boldStyle(f)
	if err == nil {
		err = f.SetRowStyle(sheet, 1, 1, bold)
	}
	if err == nil {
		err = f.SetColWidth(sheet, "A", "A", 25)
	}
	if err == nil {
		err = f.SetColWidth(sheet, "B", "D", 15)
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// =============================================================================
// NAMES
// =============================================================================

// SheetName makes an employee name usable as a worksheet name.
func SheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '?', '*', '[', ']', ':':
			return -1
		}
		return r
	}, name)
	cleaned = strings.Trim(cleaned, "'")
	cleaned = truncate(cleaned, maxSheetNameLen)
	if strings.TrimSpace(cleaned) == "" {
		return defaultSheetName
	}
	return cleaned
}

// DetailFilename names a detail export, e.g.
// leave-report-2024-2024-07-01T10-15-30-123Z.xlsx.
func DetailFilename(year int, now time.Time) string {
	now = now.UTC()
	stamp := fmt.Sprintf("%s-%03dZ", now.Format("2006-01-02T15-04-05"), now.Nanosecond()/int(time.Millisecond))
	return fmt.Sprintf("leave-report-%d-%s.xlsx", year, stamp)
}

// SummaryFilename names a summary export.
func SummaryFilename(year int) string {
	return fmt.Sprintf("summary_%d.xlsx", year)
}

// uniqueSheetName disambiguates repeated names. Excel compares sheet names
// case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(name, maxSheetNameLen-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// =============================================================================
// HELPERS
// =============================================================================

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func boldStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
}

func number(d decimal.Decimal) any {
	if d.IsInteger() && d.BigInt().IsInt64() {
		return d.IntPart()
	}
	return d.InexactFloat64()
}

func optionalNumber(d *decimal.Decimal) any {
	if d == nil {
		return absent
	}
	return number(*d)
}
