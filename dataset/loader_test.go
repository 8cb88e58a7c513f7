package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFixture(t *testing.T) {
	ds, err := Load(context.Background(), FileSource{Path: "testdata/customers.csv"})
	require.NoError(t, err)

	assert.Equal(t, 41, ds.Len())
	assert.Equal(t, "testdata/customers.csv", ds.Source)
	for _, f := range Fields {
		assert.True(t, ds.Capabilities.Has(f), "expected %s to be negotiated", f)
	}

	first := ds.Records[0]
	assert.Equal(t, "Month-to-month", first.Contract)
	assert.Equal(t, "Female", first.Gender)
	assert.Equal(t, "0", first.SeniorCitizen)
	assert.Equal(t, Number{Value: 29.85, Valid: true}, first.MonthlyCharges)
	assert.Equal(t, Number{Value: 1, Valid: true}, first.TenureMonths)
}

func TestLoadBlankNumericIsMissingValue(t *testing.T) {
	ds, err := Load(context.Background(), FileSource{Path: "testdata/customers.csv"})
	require.NoError(t, err)

	last := ds.Records[ds.Len()-1]
	assert.False(t, last.TotalCharges.Valid)
	assert.Equal(t, "", last.Text(TotalCharges))
	assert.True(t, last.TenureMonths.Valid)
}

func TestLoadNonFiniteNumericIsMissingValue(t *testing.T) {
	path := writeCSV(t, "Tenure_Months,Monthly_Charges,Total_Charges\n"+
		"NaN,nan,inf\n"+
		"1,-Inf,+Inf\n"+
		"2,10.5,Infinity\n")

	ds, err := Load(context.Background(), FileSource{Path: path})
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	tests := []struct {
		row   int
		field Field
		want  Number
	}{
		{0, TenureMonths, Number{}},
		{0, MonthlyCharges, Number{}},
		{0, TotalCharges, Number{}},
		{1, TenureMonths, Number{Value: 1, Valid: true}},
		{1, MonthlyCharges, Number{}},
		{1, TotalCharges, Number{}},
		{2, MonthlyCharges, Number{Value: 10.5, Valid: true}},
		{2, TotalCharges, Number{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ds.Records[tt.row].Num(tt.field), "row %d %s", tt.row, tt.field)
	}
}

func TestLoadPartialSchema(t *testing.T) {
	path := writeCSV(t, "Gender,monthly_charges,Churn\nMale,10,No\nFemale,20,Yes\n")

	ds, err := Load(context.Background(), FileSource{Path: path})
	require.NoError(t, err)

	assert.True(t, ds.Capabilities.Has(Gender, Churn))
	assert.False(t, ds.Capabilities.Has(MonthlyCharges), "header match must be case-sensitive")
	assert.False(t, ds.Records[0].MonthlyCharges.Valid)
	assert.Equal(t, []string{"Gender", "monthly_charges", "Churn"}, ds.Columns)
}

func TestLoadStripsByteOrderMark(t *testing.T) {
	path := writeCSV(t, "\ufeffContract,Gender\nOne year,Male\n")

	ds, err := Load(context.Background(), FileSource{Path: path})
	require.NoError(t, err)
	assert.True(t, ds.Capabilities.Has(Contract))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") }},
		{"empty file", func(t *testing.T) string { return writeCSV(t, "") }},
		{"ragged rows", func(t *testing.T) string { return writeCSV(t, "Gender,Churn\nMale,No\nFemale\n") }},
		{"bad quoting", func(t *testing.T) string { return writeCSV(t, "Gender,Churn\n\"Male,No\n") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path(t)
			ds, err := Load(context.Background(), FileSource{Path: path})
			require.Error(t, err)
			assert.Nil(t, ds)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, path, loadErr.Source)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, FileSource{Path: "testdata/customers.csv"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoaderRereadsWithoutCache(t *testing.T) {
	path := writeCSV(t, "Gender\nMale\n")
	loader := NewLoader(FileSource{Path: path}, false)

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	require.NoError(t, os.WriteFile(path, []byte("Gender\nMale\nFemale\n"), 0o644))
	ds, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestLoaderCacheKeepsFirstSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.csv")
	loader := NewLoader(FileSource{Path: path}, true)

	// failures are not cached
	_, err := loader.Load(context.Background())
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("Gender\nMale\n"), 0o644))
	first, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("Gender\nMale\nFemale\n"), 0o644))
	second, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, second.Len())
}

func TestTableSourceWithoutConnection(t *testing.T) {
	_, err := Load(context.Background(), TableSource{Table: "customers"})
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "table customers", loadErr.Source)
}
