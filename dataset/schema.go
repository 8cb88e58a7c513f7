package dataset

import "strings"

// Field is one optional attribute of a customer record. Its value is the
// exact column header the loader looks for.
type Field string

const (
	Contract       Field = "Contract"
	Gender         Field = "Gender"
	PaymentMethod  Field = "Payment_Method"
	SeniorCitizen  Field = "Senior_Citizen"
	Partner        Field = "Partner"
	Churn          Field = "Churn"
	MonthlyCharges Field = "Monthly_Charges"
	TotalCharges   Field = "Total_Charges"
	TenureMonths   Field = "Tenure_Months"
)

// Fields lists the schema in a stable order.
var Fields = []Field{
	Contract, Gender, PaymentMethod, SeniorCitizen, Partner, Churn,
	MonthlyCharges, TotalCharges, TenureMonths,
}

func (f Field) IsNumeric() bool {
	switch f {
	case MonthlyCharges, TotalCharges, TenureMonths:
		return true
	}
	return false
}

// Capabilities is the set of schema fields a loaded dataset carries.
type Capabilities uint16

func bit(f Field) Capabilities {
	for i, known := range Fields {
		if known == f {
			return 1 << i
		}
	}
	return 0
}

// Negotiate matches a header against the schema. Matching is exact and
// case-sensitive: "monthly_charges" does not enable Monthly_Charges.
func Negotiate(header []string) Capabilities {
	var caps Capabilities
	for _, col := range header {
		caps |= bit(Field(col))
	}
	return caps
}

func (c Capabilities) Has(fields ...Field) bool {
	for _, f := range fields {
		b := bit(f)
		if b == 0 || c&b == 0 {
			return false
		}
	}
	return true
}

// Missing returns the fields from the argument list the set lacks, in
// argument order.
func (c Capabilities) Missing(fields ...Field) []Field {
	var missing []Field
	for _, f := range fields {
		if !c.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (c Capabilities) String() string {
	var names []string
	for _, f := range Fields {
		if c.Has(f) {
			names = append(names, string(f))
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}
