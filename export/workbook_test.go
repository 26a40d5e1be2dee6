package export

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-quota/leave"
	"github.com/xuri/excelize/v2"
)

func decPtr(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func detail(name string, quota *decimal.Decimal, lines ...leave.BookingLine) leave.EmployeeDetail {
	taken := decimal.Zero
	for _, l := range lines {
		taken = taken.Add(l.Days)
	}
	s := leave.Summary{Employee: leave.Employee{Name: name}, Year: 2024, Quota: quota, Taken: taken}
	if quota != nil {
		r := quota.Sub(taken)
		s.Remaining = &r
	}
	return leave.EmployeeDetail{Summary: s, Bookings: lines}
}

// =============================================================================
// SHEET NAMES
// =============================================================================

func TestSheetName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Maria", "Maria"},
		{"forbidden characters", `A/B\C?D*E[F]G:H`, "ABCDEFGH"},
		{"truncated", strings.Repeat("x", 40), strings.Repeat("x", 31)},
		{"multibyte truncated by rune", strings.Repeat("Ω", 35), strings.Repeat("Ω", 31)},
		{"empty", "", "Employee"},
		{"only forbidden", "/?*", "Employee"},
		{"blank", "   ", "Employee"},
		{"quotes trimmed", "'Nikos'", "Nikos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SheetName(tt.in))
		})
	}
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}

	assert.Equal(t, "Maria", uniqueSheetName("Maria", used))
	assert.Equal(t, "Maria (2)", uniqueSheetName("Maria", used))
	assert.Equal(t, "maria (3)", uniqueSheetName("maria", used))

	long := strings.Repeat("y", 31)
	assert.Equal(t, long, uniqueSheetName(long, used))
	second := uniqueSheetName(long, used)
	assert.Equal(t, strings.Repeat("y", 27)+" (2)", second)
	assert.Len(t, second, 31)
}

func TestFilenames(t *testing.T) {
	now := time.Date(2024, 7, 1, 10, 15, 30, 123_000_000, time.UTC)

	assert.Equal(t, "leave-report-2024-2024-07-01T10-15-30-123Z.xlsx", DetailFilename(2024, now))
	assert.Equal(t, "summary_2024.xlsx", SummaryFilename(2024))
}

// =============================================================================
// DETAIL WORKBOOK
// =============================================================================

func TestDetailWorkbook_Layout(t *testing.T) {
	// GIVEN: Maria with two bookings and Nikos without quota or bookings
	details := []leave.EmployeeDetail{
		detail("Maria", decPtr(20),
			leave.BookingLine{From: leave.NewDate(2024, 7, 1), To: leave.NewDate(2024, 7, 5), Days: decimal.NewFromInt(5)},
			leave.BookingLine{From: leave.NewDate(2024, 12, 24), To: leave.NewDate(2024, 12, 24), Days: decimal.RequireFromString("0.5")},
		),
		detail("Nikos", nil),
	}

	// WHEN: Building the workbook
	f, err := DetailWorkbook(2024, details)
	require.NoError(t, err)
	defer f.Close()

	// THEN: One sheet per employee, in order
	assert.Equal(t, []string{"Maria", "Nikos"}, f.GetSheetList())

	rows, err := f.GetRows("Maria")
	require.NoError(t, err)
	require.Len(t, rows, 9)
	assert.Equal(t, []string{"Name:", "Maria"}, rows[0])
	assert.Equal(t, []string{"Annual Leave Days", "20"}, rows[1])
	assert.Equal(t, []string{"Year:", "2024"}, rows[2])
	assert.Empty(t, rows[3])
	assert.Equal(t, []string{"From", "To", "Days"}, rows[4])
	assert.Equal(t, []string{"01-07-2024", "05-07-2024", "5"}, rows[5])
	assert.Equal(t, []string{"24-12-2024", "24-12-2024", "0.5"}, rows[6])
	assert.Empty(t, rows[7])
	assert.Equal(t, []string{"Total Days:", "5.5"}, rows[8])

	rows, err = f.GetRows("Nikos")
	require.NoError(t, err)
	assert.Equal(t, []string{"Annual Leave Days", "-"}, rows[1])
	assert.Equal(t, []string{"Total Days:", "0"}, rows[len(rows)-1])
}

func TestDetailWorkbook_HeaderRowIsBold(t *testing.T) {
	f, err := DetailWorkbook(2024, []leave.EmployeeDetail{detail("Maria", decPtr(20))})
	require.NoError(t, err)
	defer f.Close()

	styleID, err := f.GetCellStyle("Maria", "A5")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestDetailWorkbook_DuplicateAndInvalidNames(t *testing.T) {
	details := []leave.EmployeeDetail{
		detail("Maria", nil),
		detail("Maria", nil),
		detail("[HR]/Ops", nil),
		detail("***", nil),
	}

	f, err := DetailWorkbook(2024, details)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Maria", "Maria (2)", "HROps", "Employee"}, f.GetSheetList())
}

func TestDetailWorkbook_NoEmployees_SingleEmptySheet(t *testing.T) {
	f, err := DetailWorkbook(2024, nil)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Leave 2024"}, f.GetSheetList())
}

// =============================================================================
// SUMMARY WORKBOOK
// =============================================================================

func TestSummaryWorkbook_Layout(t *testing.T) {
	maria := detail("Maria", decPtr(20), leave.BookingLine{Days: decimal.NewFromInt(5)})
	nikos := detail("Nikos", nil, leave.BookingLine{Days: decimal.NewFromInt(2)})
	over := detail("Eleni", decPtr(3), leave.BookingLine{Days: decimal.NewFromInt(4)})

	f, err := SummaryWorkbook(2024, []leave.Summary{maria.Summary, nikos.Summary, over.Summary})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary 2024"}, f.GetSheetList())
	rows, err := f.GetRows("Summary 2024")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Name", "Quota", "Taken", "Remaining"},
		{"Maria", "20", "5", "15"},
		{"Nikos", "-", "2", "-"},
		{"Eleni", "3", "4", "-1"},
	}, rows)
}

func TestWorkbook_RoundTripThroughBytes(t *testing.T) {
	f, err := SummaryWorkbook(2024, nil)
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	f.Close()

	reopened, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer reopened.Close()

	rows, err := reopened.GetRows("Summary 2024")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Quota", "Taken", "Remaining"}}, rows)
}
