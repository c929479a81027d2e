package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

func TestDetectIssuer(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.IssuerID
	}{
		{"hdfc", "HDFC Bank Credit Card Statement", models.IssuerHDFC},
		{"lower case", "welcome to hdfc bank", models.IssuerHDFC},
		{"axis co-brand", "Flipkart Axis Bank Credit Card", models.IssuerAxis},
		{"idfc", "IDFC FIRST Bank statement", models.IssuerIDFC},
		{"syndicate", "GLOBAL CREDIT CARD statement", models.IssuerSyndicate},
		{"sbi long name", "State Bank of India card", models.IssuerSBI},
		{"sbi word", "Your SBI card statement", models.IssuerSBI},
		{"kotak", "Kotak Mahindra Bank", models.IssuerKotak},
		{"chase", "JPMorgan Chase Bank, N.A.", models.IssuerChase},
		{"amex", "American Express Blue Cash", models.IssuerAmex},
		{"citi", "Citi Double Cash card", models.IssuerCiti},
		{"discover", "Discover it Card", models.IssuerDiscover},
		{"bofa", "Bank of America Customized Cash", models.IssuerBankOfAmerica},
		{"domestic beats international", "ICICI Bank\nVisa card issued in partnership with Citibank", models.IssuerICICI},
		{"table order between domestic", "HDFC Bank\npayments via ICICI gateway", models.IssuerHDFC},
		{"citizen is not citi", "Senior citizen rewards programme", models.IssuerUnknown},
		{"purchase is not chase", "Purchases and cash advances", models.IssuerUnknown},
		{"taxis is not axis", "Airport taxis and parking", models.IssuerUnknown},
		{"sbicard host is not a word match", "visit sbicard.com", models.IssuerUnknown},
		{"nothing", "A statement from a regional credit union", models.IssuerUnknown},
		{"empty", "", models.IssuerUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectIssuer(tt.text))
		})
	}
}

func TestNewEngine(t *testing.T) {
	tests := []struct {
		id       models.IssuerID
		wantName string
		wantOK   bool
	}{
		{models.IssuerHDFC, "HDFC Bank", true},
		{models.IssuerAmex, "American Express", true},
		{models.IssuerUnknown, "", false},
		{"bogus", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			e, ok := NewEngine(tt.id, DefaultTxnOptions())
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantName, e.BankName())
			}
		})
	}
}

func TestIssuersCoverTable(t *testing.T) {
	sets := Issuers()
	require.Len(t, sets, 12)
	assert.Equal(t, models.IssuerHDFC, sets[0].ID)
	assert.Equal(t, models.IssuerBankOfAmerica, sets[len(sets)-1].ID)

	for _, s := range sets {
		assert.NotEmpty(t, s.Keywords, s.ID)
		for _, f := range models.RequiredFields {
			assert.NotEmpty(t, s.Fields[f], "%s has no patterns for %s", s.ID, f)
		}
	}
	assert.Equal(t, "Unknown", IssuerName(models.IssuerUnknown))
}

const hdfcStatement = `HDFC Bank Credit Card Statement
Card No: 4695 25XX XXXX 3458
Statement Date:15/06/2025
Statement Period: 16/05/2025 to 15/06/2025
Payment Due Date Total Dues Minimum Amount Due
03/07/2025 25,625.00 1,290.00
Credit Limit Available Credit Limit
1,50,000 1,24,375.00

Domestic Transactions
Date Transaction Description Amount
20/05/2025 SWIGGY BANGALORE 450.00
20/05/2025 SWIGGY BANGALORE 450.00
22/05/2025 PAYMENT RECEIVED NETBANKING 10,000.00 Cr
25/05/2025 AMAZON PAY INDIA 1,299.50
`

func TestEngineExtractHDFC(t *testing.T) {
	e, ok := NewEngine(models.IssuerHDFC, DefaultTxnOptions())
	require.True(t, ok)

	rec := e.Extract(hdfcStatement)

	assert.Equal(t, "HDFC Bank", rec.BankName)
	assert.Equal(t, models.IssuerHDFC, rec.Issuer)
	assert.Equal(t, "INR", rec.Currency)
	assert.Equal(t, "3458", rec.CardLast4)
	assert.Equal(t, "06/15/2025", rec.StatementDate)
	assert.Equal(t, "07/03/2025", rec.PaymentDueDate)
	assert.Equal(t, "25625.00", rec.TotalAmountDue)
	assert.Equal(t, "1290.00", rec.MinimumPayment)
	assert.Equal(t, "05/16/2025", rec.PeriodStart)
	assert.Equal(t, "06/15/2025", rec.PeriodEnd)
	assert.Equal(t, 1.0, rec.ConfidenceScore)
	assert.Equal(t, []string{models.MethodPattern}, rec.Methods)
	assert.True(t, rec.IsValid())

	require.Len(t, rec.Transactions, 3)
	assert.Equal(t, "20/05/2025", rec.Transactions[0].Date)
	assert.Equal(t, "SWIGGY BANGALORE", rec.Transactions[0].Description)
	assert.Equal(t, "Dining", rec.Transactions[0].Category)
	assert.Equal(t, models.TypeCredit, rec.Transactions[1].Type)
	assert.Equal(t, "10000.00", rec.Transactions[1].Amount)
	assert.Equal(t, "1299.50", rec.Transactions[2].Amount)
	for _, txn := range rec.Transactions {
		assert.Equal(t, "INR", txn.Currency)
	}
}

func TestEngineExtractPartial(t *testing.T) {
	e, ok := NewEngine(models.IssuerHDFC, DefaultTxnOptions())
	require.True(t, ok)

	rec := e.Extract("HDFC Bank\nCard ending in 1234\nnothing else of use here")

	assert.Equal(t, "1234", rec.CardLast4)
	assert.Equal(t, models.NotFound, rec.TotalAmountDue)
	assert.Equal(t, models.NotFound, rec.PaymentDueDate)
	assert.InDelta(t, 0.2, rec.ConfidenceScore, 1e-9)
	assert.False(t, rec.IsValid())
	assert.Empty(t, rec.Transactions)
}

func TestEngineExtractAmex(t *testing.T) {
	text := `American Express
Account Ending 3456
Statement Closing Date March 14, 2025
Payment Due Date April 8, 2025
Total New Balance $1,234.56
Minimum Payment Due $40.00
03/01 KROGER 123 $82.10
03/05 PAYMENT RECEIVED -$500.00
`
	e, ok := NewEngine(models.IssuerAmex, DefaultTxnOptions())
	require.True(t, ok)

	rec := e.Extract(text)

	assert.Equal(t, "3456", rec.CardLast4)
	assert.Equal(t, "03/14/2025", rec.StatementDate)
	assert.Equal(t, "04/08/2025", rec.PaymentDueDate)
	assert.Equal(t, "1234.56", rec.TotalAmountDue)
	assert.Equal(t, "40.00", rec.MinimumPayment)
	assert.Equal(t, 1.0, rec.ConfidenceScore)

	require.Len(t, rec.Transactions, 2)
	assert.Equal(t, "01/03/2025", rec.Transactions[0].Date)
	assert.Equal(t, "Groceries", rec.Transactions[0].Category)
	assert.True(t, rec.Transactions[1].IsCredit())
	assert.Equal(t, "USD", rec.Transactions[1].Currency)
}

func TestEngineExtractIssuers(t *testing.T) {
	tests := []struct {
		name   string
		id     models.IssuerID
		text   string
		fields map[models.Field]string
		txns   []models.Transaction
	}{
		{
			name: "icici",
			id:   models.IssuerICICI,
			text: `ICICI Bank Credit Card Statement
Card Number: 4375XXXXXXXX9012
Statement Generation Date 14/06/2025
Payment Due Date: 02/07/2025
Your Total Amount Due: ₹18,450.75
Minimum Amount Due: ₹920.00
Statement Period: 15/05/2025 - 14/06/2025
Credit Limit: 2,00,000.00
Available Credit Limit 1,81,549.25
Transaction Details
20/05/2025 BIGBASKET ORDER 2,340.00
28/05/2025 PAYMENT THANK YOU 15,000.00 Cr
`,
			fields: map[models.Field]string{
				models.FieldCardLast4:       "9012",
				models.FieldStatementDate:   "06/14/2025",
				models.FieldPaymentDueDate:  "07/02/2025",
				models.FieldTotalAmountDue:  "18450.75",
				models.FieldMinimumPayment:  "920.00",
				models.FieldPeriodStart:     "05/15/2025",
				models.FieldPeriodEnd:       "06/14/2025",
				models.FieldCreditLimit:     "200000.00",
				models.FieldAvailableCredit: "181549.25",
			},
			txns: []models.Transaction{
				{Date: "20/05/2025", Description: "BIGBASKET ORDER", Amount: "2340.00", Type: models.TypeDebit},
				{Date: "28/05/2025", Description: "PAYMENT THANK YOU", Amount: "15000.00", Type: models.TypeCredit},
			},
		},
		{
			name: "idfc",
			id:   models.IssuerIDFC,
			text: "IDFC FIRST Bank Credit Card Statement\n" +
				"Card Number: XXXX XXXX XXXX 5566\n" +
				"Statement Date: 10/06/2025\n" +
				"Payment Due Date: 30/06/2025\n" +
				"Total Amount Due ₹12,340.50\n" +
				"Minimum Amount Due `620.00\n" +
				"Statement Period: From: 11/05/2025 To: 10/06/2025\n" +
				"Credit Limit: ₹1,00,000\n" +
				"Available Credit Limit: ₹87,659.50\n" +
				"Transaction Details\n" +
				"15/05/2025 UBER INDIA RIDE 340.00\n",
			fields: map[models.Field]string{
				models.FieldCardLast4:       "5566",
				models.FieldStatementDate:   "06/10/2025",
				models.FieldPaymentDueDate:  "06/30/2025",
				models.FieldTotalAmountDue:  "12340.50",
				models.FieldMinimumPayment:  "620.00",
				models.FieldPeriodStart:     "05/11/2025",
				models.FieldPeriodEnd:       "06/10/2025",
				models.FieldCreditLimit:     "100000",
				models.FieldAvailableCredit: "87659.50",
			},
			txns: []models.Transaction{
				{Date: "15/05/2025", Description: "UBER INDIA RIDE", Amount: "340.00", Type: models.TypeDebit},
			},
		},
		{
			name: "sbi",
			id:   models.IssuerSBI,
			text: `SBI Card Statement
Card Number: XXXX XXXX XXXX 7744
Statement Date: 12/06/2025
Payment Due on: 02/07/2025
Total Amount Due: Rs. 9,876.00
Minimum Amount Due: Rs. 494.00
Statement Period: 13/05/2025 to 12/06/2025
Credit Limit: Rs. 1,50,000.00
Available Credit: Rs. 1,40,124.00
Transaction Details
18/05/2025 ZOMATO ORDER 450.00
`,
			fields: map[models.Field]string{
				models.FieldCardLast4:       "7744",
				models.FieldStatementDate:   "06/12/2025",
				models.FieldPaymentDueDate:  "07/02/2025",
				models.FieldTotalAmountDue:  "9876.00",
				models.FieldMinimumPayment:  "494.00",
				models.FieldPeriodStart:     "05/13/2025",
				models.FieldPeriodEnd:       "06/12/2025",
				models.FieldCreditLimit:     "150000.00",
				models.FieldAvailableCredit: "140124.00",
			},
			txns: []models.Transaction{
				{Date: "18/05/2025", Description: "ZOMATO ORDER", Amount: "450.00", Type: models.TypeDebit},
			},
		},
		{
			name: "kotak",
			id:   models.IssuerKotak,
			text: `Kotak Mahindra Bank Credit Card Statement
Card Number: **** **** **** 3321
Statement Date: 08/06/2025
Payment Due Date: 28/06/2025
Total Amount Due: ₹5,432.10
Minimum Amount Due: ₹272.00
Statement Period: 09/05/2025 to 08/06/2025
Total Credit Limit: ₹75,000.00
Available Credit Limit: ₹69,567.90
Transaction Details
12/05/2025 AMAZON PAY INDIA 1,200.00
`,
			fields: map[models.Field]string{
				models.FieldCardLast4:       "3321",
				models.FieldStatementDate:   "06/08/2025",
				models.FieldPaymentDueDate:  "06/28/2025",
				models.FieldTotalAmountDue:  "5432.10",
				models.FieldMinimumPayment:  "272.00",
				models.FieldPeriodStart:     "05/09/2025",
				models.FieldPeriodEnd:       "06/08/2025",
				models.FieldCreditLimit:     "75000.00",
				models.FieldAvailableCredit: "69567.90",
			},
			txns: []models.Transaction{
				{Date: "12/05/2025", Description: "AMAZON PAY INDIA", Amount: "1200.00", Type: models.TypeDebit},
			},
		},
		{
			name: "chase",
			id:   models.IssuerChase,
			text: `JPMorgan Chase Bank, N.A.
Account ending in: 4821
Statement Date: 06/14/2025
Payment Due Date: 07/09/2025
New Balance: $2,345.67
Minimum Payment Due: $35.00
Statement Period: 05/15/2025 to 06/14/2025
Credit Limit: $10,000.00
Available Credit: $7,654.33
06/01 STARBUCKS STORE 123 $6.45
06/03 PAYMENT THANK YOU -$500.00
`,
			fields: map[models.Field]string{
				models.FieldCardLast4:       "4821",
				models.FieldStatementDate:   "06/14/2025",
				models.FieldPaymentDueDate:  "07/09/2025",
				models.FieldTotalAmountDue:  "2345.67",
				models.FieldMinimumPayment:  "35.00",
				models.FieldPeriodStart:     "05/15/2025",
				models.FieldPeriodEnd:       "06/14/2025",
				models.FieldCreditLimit:     "10000.00",
				models.FieldAvailableCredit: "7654.33",
			},
			txns: []models.Transaction{
				{Date: "01/06/2025", Description: "STARBUCKS STORE 123", Amount: "6.45", Type: models.TypeDebit},
				{Date: "03/06/2025", Description: "PAYMENT THANK YOU", Amount: "500.00", Type: models.TypeCredit},
			},
		},
		{
			name: "citi",
			id:   models.IssuerCiti,
			text: `Citibank Card Statement
Account Number ending 1357
Statement Date: 06/20/2025
Payment Due Date: 07/15/2025
New Balance: $1,111.11
Minimum Payment Due: $41.00
Credit Limit: $5,000.00
Available Credit: $3,888.89
06/05 SHELL OIL 57444 $45.20
`,
			fields: map[models.Field]string{
				models.FieldCardLast4:       "1357",
				models.FieldStatementDate:   "06/20/2025",
				models.FieldPaymentDueDate:  "07/15/2025",
				models.FieldTotalAmountDue:  "1111.11",
				models.FieldMinimumPayment:  "41.00",
				models.FieldCreditLimit:     "5000.00",
				models.FieldAvailableCredit: "3888.89",
			},
			txns: []models.Transaction{
				{Date: "05/06/2025", Description: "SHELL OIL 57444", Amount: "45.20", Type: models.TypeDebit},
			},
		},
		{
			name: "discover",
			id:   models.IssuerDiscover,
			text: `Discover it Card
Account ending in 2468
Closing Date: 06/18/2025
Payment Due Date: 07/13/2025
New Balance: $876.54
Minimum Payment Due: $35.00
Credit Limit: $8,000.00
Credit Available: $7,123.46
06/02 WHOLE FOODS MARKET $54.32
`,
			fields: map[models.Field]string{
				models.FieldCardLast4:       "2468",
				models.FieldStatementDate:   "06/18/2025",
				models.FieldPaymentDueDate:  "07/13/2025",
				models.FieldTotalAmountDue:  "876.54",
				models.FieldMinimumPayment:  "35.00",
				models.FieldCreditLimit:     "8000.00",
				models.FieldAvailableCredit: "7123.46",
			},
			txns: []models.Transaction{
				{Date: "02/06/2025", Description: "WHOLE FOODS MARKET", Amount: "54.32", Type: models.TypeDebit},
			},
		},
		{
			name: "bank of america",
			id:   models.IssuerBankOfAmerica,
			text: `Bank of America Customized Cash Rewards
Account ending in 1122
Statement Date: 06/25/2025
Payment Due Date: 07/20/2025
New Balance Total: $3,210.98
Minimum Payment Due: $64.00
Credit Limit: $12,000.00
Available Credit: $8,789.02
06/10 TARGET STORE 0042 $120.00
`,
			fields: map[models.Field]string{
				models.FieldCardLast4:       "1122",
				models.FieldStatementDate:   "06/25/2025",
				models.FieldPaymentDueDate:  "07/20/2025",
				models.FieldTotalAmountDue:  "3210.98",
				models.FieldMinimumPayment:  "64.00",
				models.FieldCreditLimit:     "12000.00",
				models.FieldAvailableCredit: "8789.02",
			},
			txns: []models.Transaction{
				{Date: "10/06/2025", Description: "TARGET STORE 0042", Amount: "120.00", Type: models.TypeDebit},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, DetectIssuer(tt.text))

			e, ok := NewEngine(tt.id, DefaultTxnOptions())
			require.True(t, ok)
			rec := e.Extract(tt.text)

			for f, want := range tt.fields {
				assert.Equal(t, want, rec.Get(f), f)
			}
			assert.True(t, rec.IsValid())
			assert.Equal(t, 1.0, rec.ConfidenceScore)

			require.Len(t, rec.Transactions, len(tt.txns))
			for i, want := range tt.txns {
				got := rec.Transactions[i]
				assert.Equal(t, want.Date, got.Date)
				assert.Equal(t, want.Description, got.Description)
				assert.Equal(t, want.Amount, got.Amount)
				assert.Equal(t, want.Type, got.Type)
				assert.Equal(t, e.Set.Currency, got.Currency)
			}
		})
	}
}

// Layouts that miss an issuer's first pattern and land on a later one.
func TestExtractFieldsAlternatePatterns(t *testing.T) {
	tests := []struct {
		name   string
		id     models.IssuerID
		text   string
		fields map[models.Field]string
	}{
		{
			name: "icici spaced card and billing cycle",
			id:   models.IssuerICICI,
			text: "ICICI Bank\nCard: XXXX XXXX XXXX 9012\nStatement Date: 14/06/2025\nTotal Due: Rs. 18,450.75\nBilling cycle 15/05/2025 - 14/06/2025",
			fields: map[models.Field]string{
				models.FieldCardLast4:      "9012",
				models.FieldStatementDate:  "06/14/2025",
				models.FieldTotalAmountDue: "18450.75",
				models.FieldPeriodStart:    "05/15/2025",
				models.FieldPeriodEnd:      "06/14/2025",
			},
		},
		{
			name: "idfc account number and date range",
			id:   models.IssuerIDFC,
			text: "IDFC FIRST Bank\nAccount Number: XXXXXXXX5566\n11/05/2025 - 10/06/2025",
			fields: map[models.Field]string{
				models.FieldCardLast4:     "5566",
				models.FieldStatementDate: "06/10/2025",
			},
		},
		{
			name: "sbi card ending and due date",
			id:   models.IssuerSBI,
			text: "SBI Card\nCard ending: 7744\nPayment Due Date: 02/07/2025",
			fields: map[models.Field]string{
				models.FieldCardLast4:      "7744",
				models.FieldPaymentDueDate: "07/02/2025",
			},
		},
		{
			name: "kotak card ending",
			id:   models.IssuerKotak,
			text: "Kotak Mahindra Bank\nCard ending 3321",
			fields: map[models.Field]string{
				models.FieldCardLast4: "3321",
			},
		},
		{
			name: "chase account number and short labels",
			id:   models.IssuerChase,
			text: "Chase\nAccount Number: XXXX-XXXX-XXXX-4821\nStatement Period: 05/15/2025 to 06/14/2025\nBalance: $2,345.67\nMinimum Due: $35.00",
			fields: map[models.Field]string{
				models.FieldCardLast4:      "4821",
				models.FieldStatementDate:  "06/14/2025",
				models.FieldTotalAmountDue: "2345.67",
				models.FieldMinimumPayment: "35.00",
			},
		},
		{
			name: "citi masked card and closing date",
			id:   models.IssuerCiti,
			text: "Citi\nCard xxxx 1357\nStatement Closing Date: 06/20/2025\nTotal Balance: $1,111.11",
			fields: map[models.Field]string{
				models.FieldCardLast4:      "1357",
				models.FieldStatementDate:  "06/20/2025",
				models.FieldTotalAmountDue: "1111.11",
			},
		},
		{
			name: "discover bare account number",
			id:   models.IssuerDiscover,
			text: "Discover\nAccount number 2468\nStatement Date: 06/18/2025",
			fields: map[models.Field]string{
				models.FieldCardLast4:     "2468",
				models.FieldStatementDate: "06/18/2025",
			},
		},
		{
			name: "bank of america closing date",
			id:   models.IssuerBankOfAmerica,
			text: "Bank of America\nAccount # 1122\nClosing Date: 06/25/2025\nNew Balance: $3,210.98",
			fields: map[models.Field]string{
				models.FieldCardLast4:      "1122",
				models.FieldStatementDate:  "06/25/2025",
				models.FieldTotalAmountDue: "3210.98",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, ok := Lookup(tt.id)
			require.True(t, ok)
			got := ExtractFields(tt.text, set)
			for f, want := range tt.fields {
				assert.Equal(t, want, got[f], f)
			}
		})
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	set, ok := Lookup(models.IssuerHDFC)
	require.True(t, ok)
	set.Name = "Tampered"
	set.Keywords[0].Text = "NOPE"
	set.Fields[models.FieldCardLast4] = nil
	for _, s := range Issuers() {
		s.Fields[models.FieldTotalAmountDue][0] = nil
	}

	again, ok := Lookup(models.IssuerHDFC)
	require.True(t, ok)
	assert.Equal(t, "HDFC Bank", again.Name)
	assert.Equal(t, "HDFC BANK", again.Keywords[0].Text)
	assert.NotEmpty(t, again.Fields[models.FieldCardLast4])
	assert.NotNil(t, again.Fields[models.FieldTotalAmountDue][0])

	e, ok := NewEngine(models.IssuerHDFC, DefaultTxnOptions())
	require.True(t, ok)
	rec := e.Extract(hdfcStatement)
	assert.Equal(t, "3458", rec.CardLast4)
	assert.Equal(t, "25625.00", rec.TotalAmountDue)
}
