package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

func TestDatedLineGrammar(t *testing.T) {
	text := `Payment Due Date Total Dues Minimum Amount Due
03/07/2025 25,625.00 1,290.00
Transaction Details
14/06/2025 ZOMATO ORDER 320.50
14/06/2025 ZOMATO ORDER 320.50
15/06/2025 PAYMENT DUE DATE REMINDER 0.00
16/06/2025 REVERSAL OF FEE 0.00
17/06/2025 AB 10.00
18/06/2025 PAYMENT RECEIVED 5,000.00 Cr`

	txns := ExtractTransactions(text, GrammarDatedLine, "INR", DefaultTxnOptions())
	require.Len(t, txns, 3)

	assert.Equal(t, models.Transaction{
		Date:        "14/06/2025",
		Description: "ZOMATO ORDER",
		Amount:      "320.50",
		Type:        models.TypeDebit,
		Currency:    "INR",
		Category:    "Dining",
	}, txns[0])
	assert.Equal(t, "REVERSAL OF FEE", txns[1].Description)
	assert.Equal(t, "0.00", txns[1].Amount)
	assert.Equal(t, models.TypeCredit, txns[2].Type)
	assert.Equal(t, "5000.00", txns[2].Amount)
}

func TestDatedLineDescriptionCap(t *testing.T) {
	long := strings.Repeat("A", 200)
	txns := ExtractTransactions("01/01/2025 "+long+" 10.00", GrammarDatedLine, "INR", DefaultTxnOptions())
	require.Len(t, txns, 1)
	assert.Len(t, txns[0].Description, 150)
}

func TestDrCrGrammar(t *testing.T) {
	text := `01/06/2025 BEFORE SUMMARY 99.00 Dr
Account Summary
15/06/2025 FLIPKART INTERNET 1,299.00 Dr
16/06/2025 REFUND FLIPKART 299.00 Cr
17/06/2025 ZERO VALUE 0.00 Dr
18/06/2025 NO MARKER 45.00
19/06/2025 120.00 Dr`

	txns := ExtractTransactions(text, GrammarDrCr, "INR", DefaultTxnOptions())
	require.Len(t, txns, 2)

	assert.Equal(t, "15/06/2025", txns[0].Date)
	assert.Equal(t, "FLIPKART INTERNET", txns[0].Description)
	assert.Equal(t, "1299.00", txns[0].Amount)
	assert.Equal(t, models.TypeDebit, txns[0].Type)
	assert.Equal(t, "Shopping", txns[0].Category)

	assert.Equal(t, models.TypeCredit, txns[1].Type)
	assert.Equal(t, "299.00", txns[1].Amount)
}

func TestUSDGrammar(t *testing.T) {
	text := `Statement Period: 02/15/2024 to 03/14/2024
Payment Due Date: 04/08/2025
03/01 STARBUCKS STORE 123 $5.67
03/02 PAYMENT THANK YOU -$500.00
03/03 AMAZON MKTPLACE $25.00 CR
03/04 123 NUMBERS FIRST $1.00
03/05/2024 SHELL OIL $40.10`

	txns := ExtractTransactions(text, GrammarUSD, "USD", DefaultTxnOptions())
	require.Len(t, txns, 4)

	assert.Equal(t, "01/03/2024", txns[0].Date)
	assert.Equal(t, "STARBUCKS STORE 123", txns[0].Description)
	assert.Equal(t, "5.67", txns[0].Amount)
	assert.Equal(t, models.TypeDebit, txns[0].Type)

	assert.True(t, txns[1].IsCredit())
	assert.Equal(t, "500.00", txns[1].Amount)
	assert.True(t, txns[2].IsCredit())

	assert.Equal(t, "05/03/2024", txns[3].Date)
	assert.Equal(t, "Transportation", txns[3].Category)
}

func TestUSDGrammarYearCompletion(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		opts     TxnOptions
		expected string
	}{
		{"latest year in text", "Opened 01/10/2022\nClosing 02/28/2025\n03/01 STARBUCKS $5.67", DefaultTxnOptions(), "01/03/2025"},
		{"configured default", "03/01 STARBUCKS $5.67", TxnOptions{DedupPrefix: 40, DefaultYear: 2021}, "01/03/2021"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns := ExtractTransactions(tt.text, GrammarUSD, "USD", tt.opts)
			require.Len(t, txns, 1)
			assert.Equal(t, tt.expected, txns[0].Date)
		})
	}
}

func TestGenericGrammar(t *testing.T) {
	text := "01/06/2025 SOME SHOP 100.00\n02/06/2025 REFUND 50.00 Cr\n03/06/2025 FREEBIE 0.00"

	txns := ExtractTransactions(text, GrammarGeneric, "", DefaultTxnOptions())
	require.Len(t, txns, 2)
	assert.Equal(t, "01/06/2025", txns[0].Date)
	assert.Equal(t, "SOME SHOP", txns[0].Description)
	assert.True(t, txns[1].IsCredit())
	assert.Equal(t, "INR", txns[0].Currency)
}

func TestGenericGrammarSkipsHeaderLines(t *testing.T) {
	text := `Statement Period: 16/05/2025 to 15/06/2025
Credit Limit Available Credit Limit
1,50,000 1,24,375.00
Payment Due Date Total Dues Minimum Amount Due
03/07/2025 25,625.00 1,290.00
15/06/2025 CREDIT LIMIT REVISED 2,00,000.00
20/05/2025 SWIGGY BANGALORE 450.00
22/05/2025 PAYMENT RECEIVED 10,000.00 Cr`

	txns := ExtractTransactions(text, GrammarGeneric, "INR", DefaultTxnOptions())
	require.Len(t, txns, 2)
	assert.Equal(t, "20/05/2025", txns[0].Date)
	assert.Equal(t, "SWIGGY BANGALORE", txns[0].Description)
	assert.Equal(t, "450.00", txns[0].Amount)
	assert.Equal(t, "PAYMENT RECEIVED", txns[1].Description)
	assert.True(t, txns[1].IsCredit())
}

func TestGenericGrammarUSFallback(t *testing.T) {
	text := "Charges\n03/15 COFFEE HOUSE $4.50\n03/16 REFUND $2.00 CR"

	txns := ExtractTransactions(text, GrammarGeneric, "", TxnOptions{DefaultYear: 2024})
	require.Len(t, txns, 2)
	assert.Equal(t, "15/03/2024", txns[0].Date)
	assert.Equal(t, "USD", txns[0].Currency)
	assert.True(t, txns[1].IsCredit())
}

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	prefix := strings.Repeat("X", 40)
	text := `Transaction Details
01/06/2025 ` + prefix + ` ALPHA 10.00
01/06/2025 ` + prefix + ` BETA 10.00
01/06/2025 ` + prefix + ` ALPHA 10.00 Cr
02/06/2025 ` + prefix + ` ALPHA 10.00`

	txns := ExtractTransactions(text, GrammarDatedLine, "INR", DefaultTxnOptions())
	require.Len(t, txns, 3)
	assert.True(t, strings.HasSuffix(txns[0].Description, "ALPHA"))
	assert.True(t, txns[1].IsCredit())
	assert.Equal(t, "02/06/2025", txns[2].Date)

	wide := ExtractTransactions(text, GrammarDatedLine, "INR", TxnOptions{DedupPrefix: 60})
	assert.Len(t, wide, 4)
}

func TestDedupKeysUnique(t *testing.T) {
	text := "Transaction Details\n" + strings.Repeat("05/06/2025 UBER TRIP MUMBAI 250.00\n", 5) +
		strings.Repeat("06/06/2025 UBER TRIP MUMBAI 250.00 Cr\n", 3)

	txns := ExtractTransactions(text, GrammarDatedLine, "INR", DefaultTxnOptions())
	seen := make(map[string]bool)
	for _, txn := range txns {
		key := txn.DedupKey(40)
		assert.False(t, seen[key], key)
		seen[key] = true
	}
	assert.Len(t, txns, 2)
}

func TestGuessCurrency(t *testing.T) {
	assert.Equal(t, "INR", GuessCurrency("Total ₹500"))
	assert.Equal(t, "INR", GuessCurrency("Rs. 500"))
	assert.Equal(t, "USD", GuessCurrency("Total $500"))
	assert.Equal(t, "INR", GuessCurrency("500"))
}
