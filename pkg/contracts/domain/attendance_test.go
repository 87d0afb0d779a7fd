package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordKeyString(t *testing.T) {
	assert.Equal(t, "Prog_C_Month_3_4-6", RecordKey{Program: "Prog_C", Month: 3, Band: Grade4to6}.String())
	assert.Equal(t, "Prog_C_TK_Month_12_TK-3", RecordKey{Program: "Prog_C_TK", Month: 12, Band: GradeTK3, TK: true}.String())
}

func TestParseRecordKey(t *testing.T) {
	catalog := Catalog{{Label: "C TK", Code: "Prog_C_TK", Display: "C", TK: true}}

	keys := []RecordKey{
		{Program: "Prog_C", Month: 1, Band: GradeTK3},
		{Program: "Prog_C_TK", Month: 11, Band: GradeTK3, TK: true},
		{Program: "Prog_N_SYC", Month: 7, Band: Grade9to12},
	}
	for _, k := range keys {
		t.Run(k.String(), func(t *testing.T) {
			got, err := ParseRecordKey(k.String(), catalog)
			require.NoError(t, err)
			assert.Equal(t, k, got)
		})
	}

	for _, bad := range []string{"", "Prog_C", "Prog_C_Month_x_TK-3", "Prog_C_Month_3", "_Month_3_TK-3"} {
		_, err := ParseRecordKey(bad, catalog)
		assert.Error(t, err, bad)
	}
}

func TestRecordSetSortedKeys(t *testing.T) {
	catalog := Catalog{{Code: "B"}, {Code: "A"}}
	rs := RecordSet{}
	for _, k := range []RecordKey{
		{Program: "A", Month: 1, Band: GradeTK3},
		{Program: "B", Month: 2, Band: Grade9to12},
		{Program: "B", Month: 2, Band: GradeTK3},
		{Program: "B", Month: 1, Band: "K-3"},
		{Program: "Z", Month: 1, Band: GradeTK3},
	} {
		rs.Put(AttendanceRecord{Key: k})
	}

	assert.Equal(t, []RecordKey{
		{Program: "B", Month: 1, Band: "K-3"},
		{Program: "B", Month: 2, Band: GradeTK3},
		{Program: "B", Month: 2, Band: Grade9to12},
		{Program: "A", Month: 1, Band: GradeTK3},
		{Program: "Z", Month: 1, Band: GradeTK3},
	}, rs.SortedKeys(catalog))
}

func TestMeasureOr(t *testing.T) {
	assert.Equal(t, 0.0, Measure{Value: 9}.Or(0))
	assert.Equal(t, 9.0, Measure{Value: 9, Valid: true}.Or(0))
}
