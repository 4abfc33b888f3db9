package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the wire and storage format of calendar dates
const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NullDate is a calendar date that may be null. It reads DATE, TEXT and
// timestamp columns and always writes YYYY-MM-DD.
type NullDate struct {
	Date  string
	Valid bool
}

// ParseDate parses a strict YYYY-MM-DD value
func ParseDate(s string) (NullDate, error) {
	if !datePattern.MatchString(s) {
		return NullDate{}, fmt.Errorf("invalid date %q", s)
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return NullDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NullDate{Date: s, Valid: true}, nil
}

// DateOf returns the calendar date of t in UTC
func DateOf(t time.Time) NullDate {
	return NullDate{Date: t.UTC().Format(DateLayout), Valid: true}
}

// Scan implements sql.Scanner
func (d *NullDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = NullDate{}
		return nil
	case time.Time:
		*d = NullDate{Date: v.Format(DateLayout), Valid: true}
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into NullDate", src)
	}
}

func (d *NullDate) scanString(s string) error {
	if s == "" {
		*d = NullDate{}
		return nil
	}
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer
func (d NullDate) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}
	return d.Date, nil
}

// MarshalJSON renders null or "YYYY-MM-DD"
func (d NullDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Date)
}

// UnmarshalJSON accepts null, "" or "YYYY-MM-DD"
func (d *NullDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = NullDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = NullDate{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
