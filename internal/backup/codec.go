// Package backup converts AppData to and from the portable JSON backup
// document and guards what an import is allowed to replace the live data
// with.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"feetrack/internal/core"
)

// ErrInvalidBackup is returned for text that is not valid JSON or whose
// top level is not an object with locations/students/payments arrays.
var ErrInvalidBackup = errors.New("invalid backup document")

// appName is the prefix of exported backup filenames.
const appName = "feetrack"

// Encode serializes the aggregate as pretty-printed UTF-8 JSON. The output
// round-trips exactly through Decode.
func Encode(data core.AppData) ([]byte, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return out, nil
}

// Decode parses a backup document. The shape check is deliberately
// shallow: the top level must be an object carrying locations, students
// and payments as arrays, matching what every release of the app has ever
// exported. Field-level problems inside the records are accepted as-is;
// callers wanting more use DecodeStrict.
func Decode(text []byte) (core.AppData, error) {
	var shape struct {
		Locations json.RawMessage `json:"locations"`
		Students  json.RawMessage `json:"students"`
		Payments  json.RawMessage `json:"payments"`
	}
	if err := json.Unmarshal(text, &shape); err != nil {
		return core.AppData{}, ErrInvalidBackup
	}
	for _, raw := range []json.RawMessage{shape.Locations, shape.Students, shape.Payments} {
		if !isArray(raw) {
			return core.AppData{}, ErrInvalidBackup
		}
	}

	var data core.AppData
	if err := json.Unmarshal(text, &data); err != nil {
		return core.AppData{}, ErrInvalidBackup
	}
	if data.Locations == nil {
		data.Locations = []core.Location{}
	}
	if data.Students == nil {
		data.Students = []core.Student{}
	}
	if data.Payments == nil {
		data.Payments = []core.Payment{}
	}
	return data, nil
}

func isArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// strictDocument mirrors AppData with per-record validation rules for
// DecodeStrict. Kept separate so the lenient path stays exactly as
// permissive as the original import.
type strictDocument struct {
	Locations []struct {
		ID   string `json:"id" validate:"required"`
		Name string `json:"name" validate:"required"`
	} `json:"locations" validate:"dive"`
	Students []struct {
		ID         string  `json:"id" validate:"required"`
		Name       string  `json:"name" validate:"required"`
		LocationID string  `json:"locationId" validate:"required"`
		DefaultFee float64 `json:"defaultFee" validate:"gte=0"`
	} `json:"students" validate:"dive"`
	Payments []struct {
		ID        string  `json:"id" validate:"required"`
		StudentID string  `json:"studentId" validate:"required"`
		Month     int     `json:"month" validate:"gte=0,lte=11"`
		Year      int     `json:"year" validate:"gte=1970"`
		Amount    float64 `json:"amount" validate:"gt=0"`
	} `json:"payments" validate:"dive"`
}

var validate = validator.New()

// DecodeStrict is Decode plus field-level checks: ids and names present,
// months in range, amounts positive, and every foreign key resolving
// inside the document. Rejections still come back as ErrInvalidBackup so
// presentation handles both modes the same way.
func DecodeStrict(text []byte) (core.AppData, error) {
	data, err := Decode(text)
	if err != nil {
		return core.AppData{}, err
	}

	var doc strictDocument
	if err := json.Unmarshal(text, &doc); err != nil {
		return core.AppData{}, ErrInvalidBackup
	}
	if err := validate.Struct(doc); err != nil {
		return core.AppData{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	locs := make(map[string]bool, len(data.Locations))
	for _, l := range data.Locations {
		locs[l.ID] = true
	}
	students := make(map[string]bool, len(data.Students))
	for _, s := range data.Students {
		if !locs[s.LocationID] {
			return core.AppData{}, fmt.Errorf("%w: student %s references unknown location %s", ErrInvalidBackup, s.ID, s.LocationID)
		}
		students[s.ID] = true
	}
	for _, p := range data.Payments {
		if !students[p.StudentID] {
			return core.AppData{}, fmt.Errorf("%w: payment %s references unknown student %s", ErrInvalidBackup, p.ID, p.StudentID)
		}
	}
	return data, nil
}

// Filename returns the conventional backup filename for the given day,
// e.g. feetrack-backup-2026-08-29.json.
func Filename(now time.Time) string {
	return fmt.Sprintf("%s-backup-%s.json", appName, now.Format("2006-01-02"))
}

// ExportToFile writes the aggregate to dir under the conventional
// filename and returns the full path.
func ExportToFile(data core.AppData, dir string, now time.Time) (string, error) {
	out, err := Encode(data)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	path := filepath.Join(dir, Filename(now))
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("write backup file: %w", err)
	}
	return path, nil
}

// ImportFromFile reads and decodes a backup file with the lenient Decode.
func ImportFromFile(path string) (core.AppData, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return core.AppData{}, fmt.Errorf("read backup file: %w", err)
	}
	return Decode(text)
}
