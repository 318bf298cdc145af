package normalize

import (
	"strconv"
	"time"
)

// Kind discriminates the typed values a normalizer can produce.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindInt
	KindFloat
	KindDate
	// KindDateText is a parsed date that is persisted as DD/MM/YYYY text.
	// The ordenes table stores its dates this way.
	KindDateText
)

// Value is the tagged result of normalizing one raw cell. Exactly one of
// the payload fields is meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Text  string
	Int   int64
	Float float64
	Date  time.Time
}

func Null() Value              { return Value{Kind: KindNull} }
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }
func IntValue(i int64) Value   { return Value{Kind: KindInt, Int: i} }
func FloatValue(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}
func DateValue(t time.Time) Value {
	return Value{Kind: KindDate, Date: t}
}
func DateTextValue(t time.Time) Value {
	return Value{Kind: KindDateText, Date: t}
}

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Arg converts the value to something a database driver accepts.
func (v Value) Arg() any {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindDate:
		return v.Date
	case KindDateText:
		return v.Date.Format("02/01/2006")
	default:
		return nil
	}
}

// String renders the value for diagnostics and JSON browsing.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindDate:
		return v.Date.Format("2006-01-02")
	case KindDateText:
		return v.Date.Format("02/01/2006")
	default:
		return ""
	}
}

// AsTime reports the value as a date for recency comparisons.
func (v Value) AsTime() (time.Time, bool) {
	if v.Kind == KindDate || v.Kind == KindDateText {
		return v.Date, true
	}
	return time.Time{}, false
}
