package core

import (
	"errors"
	"strings"
	"time"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type (
	// Theme is the persisted display preference.
	Theme string

	// Date is a day-granularity date. It marshals as "2006-01-02" to stay
	// byte-compatible with data written by earlier releases.
	Date struct {
		time.Time
	}

	// Location is a place where recurring sessions happen. Color is a
	// display hint only.
	Location struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color,omitempty"`
	}

	// Student is enrolled at exactly one Location. IsActive=false is a
	// soft-delete marker: the student drops out of roster queries but
	// historical payments are kept.
	Student struct {
		ID         string  `json:"id"`
		Name       string  `json:"name"`
		LocationID string  `json:"locationId"`
		JoinedDate Date    `json:"joinedDate"`
		IsActive   bool    `json:"isActive"`
		DefaultFee float64 `json:"defaultFee,omitempty"`
	}

	// Payment records that a student paid for one (month, year) period.
	// Immutable once created; the only lifecycle transition is deletion.
	Payment struct {
		ID        string    `json:"id"`
		StudentID string    `json:"studentId"`
		Month     int       `json:"month"` // 0-11 (Jan-Dec)
		Year      int       `json:"year"`
		Amount    float64   `json:"amount"`
		DatePaid  time.Time `json:"datePaid"`
	}

	// AppData is the root aggregate, replaced wholesale on every mutation
	// and every persistence round-trip.
	AppData struct {
		Locations []Location `json:"locations"`
		Students  []Student  `json:"students"`
		Payments  []Payment  `json:"payments"`
	}

	// Period identifies one billing cycle.
	Period struct {
		Month int // 0-11 (Jan-Dec)
		Year  int
	}
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFee       = errors.New("invalid fee")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrUnknownLocation  = errors.New("unknown location")
	ErrUnknownStudent   = errors.New("unknown student")
	ErrDuplicatePayment = errors.New("payment already recorded for period")
	ErrInvalidTheme     = errors.New("invalid theme")
)

// NewDate builds a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		// Some older exports carried full timestamps here.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	d.Time = t
	return nil
}

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

func (p Period) Valid() bool {
	return p.Month >= 0 && p.Month <= 11
}

// Prev returns the period immediately before p, wrapping January back to
// December of the previous year.
func (p Period) Prev() Period {
	if p.Month == 0 {
		return Period{Month: 11, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// Matches reports whether the payment belongs to period p.
func (p Period) Matches(pay Payment) bool {
	return pay.Month == p.Month && pay.Year == p.Year
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English label for a 0-based month, or "" when the
// month is out of range.
func MonthName(month int) string {
	if month < 0 || month > 11 {
		return ""
	}
	return monthNames[month]
}

func (l Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (s Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.LocationID == "" {
		return ErrUnknownLocation
	}
	if s.DefaultFee < 0 {
		return ErrInvalidFee
	}
	return nil
}

func (p Payment) Validate() error {
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !(Period{Month: p.Month, Year: p.Year}).Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

// Location returns the location with the given id, or nil.
func (d AppData) Location(id string) *Location {
	for i := range d.Locations {
		if d.Locations[i].ID == id {
			return &d.Locations[i]
		}
	}
	return nil
}

// Student returns the student with the given id, or nil.
func (d AppData) Student(id string) *Student {
	for i := range d.Students {
		if d.Students[i].ID == id {
			return &d.Students[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the aggregate. Snapshots handed out by the
// store must not alias slices that a later mutation rebuilds.
func (d AppData) Clone() AppData {
	out := AppData{
		Locations: make([]Location, len(d.Locations)),
		Students:  make([]Student, len(d.Students)),
		Payments:  make([]Payment, len(d.Payments)),
	}
	copy(out.Locations, d.Locations)
	copy(out.Students, d.Students)
	copy(out.Payments, d.Payments)
	return out
}
