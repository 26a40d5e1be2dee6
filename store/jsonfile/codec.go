package jsonfile

import (
	"encoding/json"
	"time"

	"github.com/warp/leave-quota/leave"
)

// On-disk shapes. Dates stay strings so a hand-edited file with a bad date
// still loads; such a booking matches no year and its date strings are
// written back as they were found.

type fileDocument struct {
	Employees []fileEmployee `json:"employees"`
	Leaves    []fileLeave    `json:"leaves"`
}

type fileEmployee struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Quotas    []fileQuota `json:"quotas"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
}

type fileQuota struct {
	Year int            `json:"year"`
	Days leave.DayCount `json:"days"`
}

type fileLeave struct {
	ID         string         `json:"id"`
	EmployeeID string         `json:"employeeId"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Days       leave.DayCount `json:"days"`
	CreatedAt  *time.Time     `json:"createdAt,omitempty"`
}

func encodeDocument(doc document) ([]byte, error) {
	out := fileDocument{
		Employees: make([]fileEmployee, 0, len(doc.Employees)),
		Leaves:    make([]fileLeave, 0, len(doc.Leaves)),
	}

	for _, e := range doc.Employees {
		fe := fileEmployee{
			ID:        string(e.ID),
			Name:      e.Name,
			Quotas:    make([]fileQuota, 0, len(e.Quotas)),
			CreatedAt: timePtr(e.CreatedAt),
		}
		for _, q := range e.Quotas {
			fq := fileQuota{Year: q.Year}
			if q.Days != nil {
				fq.Days = leave.DecimalDays(*q.Days)
			}
			fe.Quotas = append(fe.Quotas, fq)
		}
		out.Employees = append(out.Employees, fe)
	}

	for _, b := range doc.Leaves {
		from, to := dateString(b.From), dateString(b.To)
		if raw, ok := doc.rawDates[b.ID]; ok {
			if b.From.IsZero() {
				from = raw.From
			}
			if b.To.IsZero() {
				to = raw.To
			}
		}
		out.Leaves = append(out.Leaves, fileLeave{
			ID:         string(b.ID),
			EmployeeID: string(b.EmployeeID),
			From:       from,
			To:         to,
			Days:       b.Days,
			CreatedAt:  timePtr(b.CreatedAt),
		})
	}

	return json.MarshalIndent(out, "", "  ")
}

func decodeDocument(data []byte) (document, error) {
	var in fileDocument
	if err := json.Unmarshal(data, &in); err != nil {
		return document{}, err
	}

	doc := document{
		Employees: make([]leave.Employee, 0, len(in.Employees)),
		Leaves:    make([]leave.Booking, 0, len(in.Leaves)),
	}

	for _, fe := range in.Employees {
		emp := leave.Employee{
			ID:        leave.EmployeeID(fe.ID),
			Name:      fe.Name,
			Quotas:    make([]leave.Quota, 0, len(fe.Quotas)),
			CreatedAt: timeValue(fe.CreatedAt),
		}
		for _, fq := range fe.Quotas {
			emp.Quotas = append(emp.Quotas, leave.Quota{Year: fq.Year, Days: fq.Days.QuotaDays()})
		}
		doc.Employees = append(doc.Employees, emp)
	}

	for _, fl := range in.Leaves {
		from, fromErr := leave.ParseDate(fl.From)
		to, toErr := leave.ParseDate(fl.To)
		if fromErr != nil || toErr != nil {
			if doc.rawDates == nil {
				doc.rawDates = make(map[leave.BookingID]rawRange)
			}
			doc.rawDates[leave.BookingID(fl.ID)] = rawRange{From: fl.From, To: fl.To}
		}
		doc.Leaves = append(doc.Leaves, leave.Booking{
			ID:         leave.BookingID(fl.ID),
			EmployeeID: leave.EmployeeID(fl.EmployeeID),
			From:       from,
			To:         to,
			Days:       fl.Days,
			CreatedAt:  timeValue(fl.CreatedAt),
		})
	}

	return doc, nil
}

func dateString(d leave.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
