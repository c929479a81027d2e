package parser

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

func testSet(fields map[models.Field][]*regexp.Regexp) *PatternSet {
	return &PatternSet{ID: "test", Name: "Test", Dates: DayFirst, Fields: fields}
}

func TestExtractFieldsPatternPriority(t *testing.T) {
	set := testSet(map[models.Field][]*regexp.Regexp{
		models.FieldTotalAmountDue: patterns(
			`Total\s+Due[:\s]*([\d,]+\.\d{2})`,
			`Amount\s+Payable[:\s]*([\d,]+\.\d{2})`,
		),
	})

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"first pattern wins", "Amount Payable: 9.99\nTotal Due: 1,000.00", "1000.00"},
		{"second pattern as fallback", "Amount Payable: 9.99", "9.99"},
		{"none", "nothing here", models.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFields(tt.text, set)
			assert.Equal(t, tt.expected, got[models.FieldTotalAmountDue])
		})
	}
}

func TestExtractFieldsSkipsEmptyCapture(t *testing.T) {
	set := testSet(map[models.Field][]*regexp.Regexp{
		models.FieldMinimumPayment: patterns(
			`Minimum\s+Due:[ \t]*([\d,.]*)`,
			`Min\s+Pay\s+([\d,]+\.\d{2})`,
		),
	})

	got := ExtractFields("Minimum Due:\nMin Pay 250.00", set)
	assert.Equal(t, "250.00", got[models.FieldMinimumPayment])
}

func TestExtractFieldsEveryFieldPresent(t *testing.T) {
	got := ExtractFields("", testSet(nil))
	assert.Len(t, got, len(models.Fields))
	for _, f := range models.Fields {
		assert.Equal(t, models.NotFound, got[f], f)
	}
}

func TestCleanField(t *testing.T) {
	tests := []struct {
		name     string
		field    models.Field
		value    string
		dates    DateFormat
		expected string
	}{
		{"card suffix", models.FieldCardLast4, "3458", DayFirst, "3458"},
		{"card suffix rejects letters", models.FieldCardLast4, "XX12", DayFirst, models.NotFound},
		{"amount", models.FieldCreditLimit, "₹1,50,000", DayFirst, "150000"},
		{"day first date", models.FieldPaymentDueDate, "03/07/2025", DayFirst, "07/03/2025"},
		{"month first date", models.FieldPaymentDueDate, "3/7/2025", MonthFirst, "03/07/2025"},
		{"named month date", models.FieldStatementDate, "14 JUN 2025", DayMonthName, "06/14/2025"},
		{"missing", models.FieldMinimumPayment, models.NotFound, DayFirst, models.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanField(tt.field, tt.value, tt.dates))
		})
	}
}

func TestSyndicateFields(t *testing.T) {
	set, ok := Lookup(models.IssuerSyndicate)
	if !ok {
		t.Fatal("syndicate set not registered")
	}
	text := `GLOBAL CREDIT CARD
Credit Card No: XXXX XXXX XXXX 9921
Statement Date: 14 JUN 2025
Payment Due Date: 04 JUL 2025
Total Payment Due: 12,345.00
Minimum Payment Due: 617.25`

	got := ExtractFields(text, set)
	assert.Equal(t, "06/14/2025", got[models.FieldStatementDate])
	assert.Equal(t, "07/04/2025", got[models.FieldPaymentDueDate])
	assert.Equal(t, "12345.00", got[models.FieldTotalAmountDue])
	assert.Equal(t, "617.25", got[models.FieldMinimumPayment])
}
