package model

import (
	"database/sql/driver"
	"fmt"
)

// Enum fields are persisted as stable integer codes. Decoding an unknown code
// is an error rather than a silent fallback, so corrupted rows surface loudly.

// Priority ranks how urgent a task is.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

func (Priority) GormDataType() string { return "integer" }

func (p Priority) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("encode priority: unknown code %d", int(p))
	}
	return int64(p), nil
}

func (p *Priority) Scan(src interface{}) error {
	code, err := scanEnumCode("priority", src)
	if err != nil {
		return err
	}
	v := Priority(code)
	if !v.Valid() {
		return fmt.Errorf("decode priority: unknown code %d", code)
	}
	*p = v
	return nil
}

// Section tells which list a task lives in. Secondary tasks belong to a study
// category; hidden tasks sit behind the PIN gate and carry a manual order.
type Section int

const (
	SectionPrimary Section = iota
	SectionSecondary
	SectionHidden
)

func (s Section) Valid() bool {
	return s >= SectionPrimary && s <= SectionHidden
}

func (s Section) String() string {
	switch s {
	case SectionPrimary:
		return "primary"
	case SectionSecondary:
		return "secondary"
	case SectionHidden:
		return "hidden"
	default:
		return fmt.Sprintf("section(%d)", int(s))
	}
}

func (Section) GormDataType() string { return "integer" }

func (s Section) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("encode section: unknown code %d", int(s))
	}
	return int64(s), nil
}

func (s *Section) Scan(src interface{}) error {
	code, err := scanEnumCode("section", src)
	if err != nil {
		return err
	}
	v := Section(code)
	if !v.Valid() {
		return fmt.Errorf("decode section: unknown code %d", code)
	}
	*s = v
	return nil
}

// MealKind is one of the three meals a day plan covers.
type MealKind int

const (
	MealBreakfast MealKind = iota
	MealLunch
	MealDinner
)

func (m MealKind) Valid() bool {
	return m >= MealBreakfast && m <= MealDinner
}

func (m MealKind) String() string {
	switch m {
	case MealBreakfast:
		return "breakfast"
	case MealLunch:
		return "lunch"
	case MealDinner:
		return "dinner"
	default:
		return fmt.Sprintf("meal(%d)", int(m))
	}
}

// Icon returns the marker shown next to the meal in lists.
func (m MealKind) Icon() string {
	switch m {
	case MealBreakfast:
		return "🌅"
	case MealLunch:
		return "☀️"
	case MealDinner:
		return "🌙"
	default:
		return "🍽"
	}
}

func (MealKind) GormDataType() string { return "integer" }

func (m MealKind) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("encode meal kind: unknown code %d", int(m))
	}
	return int64(m), nil
}

func (m *MealKind) Scan(src interface{}) error {
	code, err := scanEnumCode("meal kind", src)
	if err != nil {
		return err
	}
	v := MealKind(code)
	if !v.Valid() {
		return fmt.Errorf("decode meal kind: unknown code %d", code)
	}
	*m = v
	return nil
}

// PeriodKind distinguishes weekly from monthly free-text plans.
type PeriodKind int

const (
	PeriodWeekly PeriodKind = iota
	PeriodMonthly
)

func (k PeriodKind) Valid() bool {
	return k == PeriodWeekly || k == PeriodMonthly
}

func (k PeriodKind) String() string {
	switch k {
	case PeriodWeekly:
		return "weekly"
	case PeriodMonthly:
		return "monthly"
	default:
		return fmt.Sprintf("period(%d)", int(k))
	}
}

func (PeriodKind) GormDataType() string { return "integer" }

func (k PeriodKind) Value() (driver.Value, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("encode period kind: unknown code %d", int(k))
	}
	return int64(k), nil
}

func (k *PeriodKind) Scan(src interface{}) error {
	code, err := scanEnumCode("period kind", src)
	if err != nil {
		return err
	}
	v := PeriodKind(code)
	if !v.Valid() {
		return fmt.Errorf("decode period kind: unknown code %d", code)
	}
	*k = v
	return nil
}

func scanEnumCode(name string, src interface{}) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case nil:
		return 0, fmt.Errorf("decode %s: NULL code", name)
	default:
		return 0, fmt.Errorf("decode %s: unexpected type %T", name, src)
	}
}
