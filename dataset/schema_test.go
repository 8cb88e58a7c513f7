package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNegotiate(t *testing.T) {
	caps := Negotiate([]string{"Customer_ID", "Contract", "Churn", "Tenure_Months"})

	assert.True(t, caps.Has(Contract))
	assert.True(t, caps.Has(Churn, TenureMonths))
	assert.False(t, caps.Has(Churn, PaymentMethod))
	assert.Equal(t, []Field{PaymentMethod, Partner}, caps.Missing(PaymentMethod, Churn, Partner))
	assert.Nil(t, caps.Missing(Contract))
	assert.Equal(t, "{Contract, Churn, Tenure_Months}", caps.String())
}

func TestNegotiateIsExact(t *testing.T) {
	caps := Negotiate([]string{"contract", "Monthly Charges", "TotalCharges", " Gender"})
	assert.Equal(t, Capabilities(0), caps)
}

func TestUnknownFieldNeverPresent(t *testing.T) {
	caps := Negotiate([]string{"Customer_ID"})
	assert.False(t, caps.Has(Field("Customer_ID")))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, MonthlyCharges.IsNumeric())
	assert.True(t, TenureMonths.IsNumeric())
	assert.False(t, Contract.IsNumeric())
}
