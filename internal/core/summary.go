package core

import "iter"

// LocationStatus is the per-location collection status for one period.
type LocationStatus struct {
	Location     Location
	StudentCount int // active students enrolled at the location
	PaidCount    int // active students with at least one payment in the period
}

// PeriodSummary is the dashboard overview for one period.
type PeriodSummary struct {
	Period             Period
	TotalCollected     float64
	ActiveStudentCount int
	Locations          []LocationStatus
}

// HistoryEntry pairs one past period with the payment found for it, if any.
type HistoryEntry struct {
	Period  Period
	Payment *Payment
}

// TotalCollected sums the amounts of all payments in the period.
func TotalCollected(d AppData, p Period) float64 {
	var total float64
	for _, pay := range d.Payments {
		if p.Matches(pay) {
			total += pay.Amount
		}
	}
	return total
}

// ActiveStudentCount counts students that have not been soft-deleted.
func ActiveStudentCount(d AppData) int {
	n := 0
	for _, s := range d.Students {
		if s.IsActive {
			n++
		}
	}
	return n
}

// PaymentFor returns the payment for the student in the period, or nil.
// When more than one matches it returns the first in insertion order, so
// repeated lookups over the same snapshot always pick the same record.
func PaymentFor(d AppData, studentID string, p Period) *Payment {
	for i := range d.Payments {
		if d.Payments[i].StudentID == studentID && p.Matches(d.Payments[i]) {
			return &d.Payments[i]
		}
	}
	return nil
}

// LocationStatuses computes per-location paid/unpaid counts for the period,
// in location insertion order. Only active students are counted, and a
// student with several payments in the period still counts as paid once.
func LocationStatuses(d AppData, p Period) []LocationStatus {
	statuses := make([]LocationStatus, 0, len(d.Locations))
	for _, loc := range d.Locations {
		st := LocationStatus{Location: loc}
		for _, s := range d.Students {
			if s.LocationID != loc.ID || !s.IsActive {
				continue
			}
			st.StudentCount++
			if PaymentFor(d, s.ID, p) != nil {
				st.PaidCount++
			}
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// Summarize builds the full dashboard projection for the period.
func Summarize(d AppData, p Period) PeriodSummary {
	return PeriodSummary{
		Period:             p,
		TotalCollected:     TotalCollected(d, p),
		ActiveStudentCount: ActiveStudentCount(d),
		Locations:          LocationStatuses(d, p),
	}
}

// historyLen is how many past periods the student history covers.
const historyLen = 6

// History yields the six periods strictly before ref, newest first, each
// paired with the student's payment for it (nil when unpaid). The sequence
// is restartable: ranging over it again replays the same six entries.
func History(d AppData, studentID string, ref Period) iter.Seq[HistoryEntry] {
	return func(yield func(HistoryEntry) bool) {
		p := ref
		for i := 0; i < historyLen; i++ {
			p = p.Prev()
			if !yield(HistoryEntry{Period: p, Payment: PaymentFor(d, studentID, p)}) {
				return
			}
		}
	}
}

// HistoryEntries collects History into a slice of exactly six entries.
func HistoryEntries(d AppData, studentID string, ref Period) []HistoryEntry {
	entries := make([]HistoryEntry, 0, historyLen)
	for e := range History(d, studentID, ref) {
		entries = append(entries, e)
	}
	return entries
}
