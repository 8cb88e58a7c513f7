package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Number is a numeric cell. Valid is false when the column is absent or the
// cell is blank, unparsable or not finite.
type Number struct {
	Value float64
	Valid bool
}

// Record is one customer row. Categorical attributes are empty when absent.
type Record struct {
	Contract      string
	Gender        string
	PaymentMethod string
	SeniorCitizen string
	Partner       string
	Churn         string

	MonthlyCharges Number
	TotalCharges   Number
	TenureMonths   Number
}

func (r Record) Text(f Field) string {
	switch f {
	case Contract:
		return r.Contract
	case Gender:
		return r.Gender
	case PaymentMethod:
		return r.PaymentMethod
	case SeniorCitizen:
		return r.SeniorCitizen
	case Partner:
		return r.Partner
	case Churn:
		return r.Churn
	case MonthlyCharges, TotalCharges, TenureMonths:
		n := r.Num(f)
		if !n.Valid {
			return ""
		}
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	}
	return ""
}

func (r Record) Num(f Field) Number {
	switch f {
	case MonthlyCharges:
		return r.MonthlyCharges
	case TotalCharges:
		return r.TotalCharges
	case TenureMonths:
		return r.TenureMonths
	}
	return Number{}
}

func (r *Record) set(f Field, raw string) {
	raw = strings.TrimSpace(raw)
	switch f {
	case Contract:
		r.Contract = raw
	case Gender:
		r.Gender = raw
	case PaymentMethod:
		r.PaymentMethod = raw
	case SeniorCitizen:
		r.SeniorCitizen = raw
	case Partner:
		r.Partner = raw
	case Churn:
		r.Churn = raw
	case MonthlyCharges:
		r.MonthlyCharges = parseNumber(raw)
	case TotalCharges:
		r.TotalCharges = parseNumber(raw)
	case TenureMonths:
		r.TenureMonths = parseNumber(raw)
	}
}

func parseNumber(raw string) Number {
	if raw == "" {
		return Number{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}

// Dataset is the immutable result of one load.
type Dataset struct {
	Source       string
	Columns      []string
	Capabilities Capabilities
	Records      []Record
}

func (d *Dataset) Len() int {
	return len(d.Records)
}

// New maps a header and its rows onto the typed schema. Columns outside the
// schema are kept in Columns but otherwise ignored.
func New(source string, header []string, rows [][]string) *Dataset {
	index := make(map[Field]int)
	for i, col := range header {
		f := Field(col)
		if bit(f) == 0 {
			continue
		}
		if _, dup := index[f]; !dup {
			index[f] = i
		}
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		var rec Record
		for f, i := range index {
			if i < len(row) {
				rec.set(f, row[i])
			}
		}
		records = append(records, rec)
	}

	return &Dataset{
		Source:       source,
		Columns:      header,
		Capabilities: Negotiate(header),
		Records:      records,
	}
}
