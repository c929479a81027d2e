package fallback_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/card-statement-parser/internal/fallback"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Extract(ctx context.Context, req fallback.Request) (fallback.Fields, error) {
	args := m.Called(ctx, req)
	fields, _ := args.Get(0).(fallback.Fields)
	return fields, args.Error(1)
}

func newTestAdapter(b fallback.Backend, key string) *fallback.Adapter {
	return fallback.NewAdapter(b, fallback.Config{APIKey: key}, parser.DefaultTxnOptions())
}

const statementText = `Regional Credit Union Card Statement
Statement Summary
01/06/2025 GROCERY OUTLET 1,250.00
05/06/2025 PAYMENT RECEIVED 5,000.00 Cr
Total Rs 12,000`

func TestAdapter_Extract_Unconfigured(t *testing.T) {
	b := new(mockBackend)
	a := newTestAdapter(b, "")

	rec := a.Extract(context.Background(), statementText, "")

	assert.False(t, a.Configured())
	assert.Equal(t, "Unknown", rec.BankName)
	assert.Equal(t, []string{models.MethodAIFailed}, rec.Methods)
	assert.Equal(t, []string{"AI backend not configured"}, rec.Errors)
	assert.Equal(t, 0.0, rec.ConfidenceScore)
	assert.False(t, rec.HasAnyField())
	b.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestAdapter_Extract_Success(t *testing.T) {
	b := new(mockBackend)
	b.On("Extract", mock.Anything, mock.MatchedBy(func(req fallback.Request) bool {
		return req.IssuerHint == "" && strings.Contains(req.Text, "GROCERY OUTLET")
	})).Return(fallback.Fields{
		"bank_name":        "Regional Credit Union",
		"card_last_4":      "4321",
		"statement_date":   "15/06/2025",
		"payment_due_date": "05/07/2025",
		"total_amount_due": "Rs. 12,000.00",
		"minimum_payment":  "NOT_FOUND",
		"credit_limit":     "",
	}, nil)

	rec := newTestAdapter(b, "key").Extract(context.Background(), statementText, "")

	assert.Equal(t, "Regional Credit Union", rec.BankName)
	assert.Equal(t, "4321", rec.CardLast4)
	assert.Equal(t, "06/15/2025", rec.StatementDate)
	assert.Equal(t, "07/05/2025", rec.PaymentDueDate)
	assert.Equal(t, "12000.00", rec.TotalAmountDue)
	assert.Equal(t, models.NotFound, rec.MinimumPayment)
	assert.Equal(t, models.NotFound, rec.CreditLimit)
	assert.InDelta(t, 0.8, rec.ConfidenceScore, 1e-9)
	assert.Equal(t, []string{models.MethodAIFallback}, rec.Methods)
	assert.Equal(t, "INR", rec.Currency)
	assert.NotEmpty(t, rec.RawTextPreview)

	require.Len(t, rec.Transactions, 2)
	assert.True(t, rec.Transactions[1].IsCredit())
	b.AssertExpectations(t)
}

func TestAdapter_Extract_BackendError(t *testing.T) {
	b := new(mockBackend)
	b.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	rec := newTestAdapter(b, "key").Extract(context.Background(), statementText, "Some Bank")

	assert.Equal(t, []string{models.MethodAIFailed}, rec.Methods)
	require.Len(t, rec.Errors, 1)
	assert.Contains(t, rec.Errors[0], "connection refused")
	assert.False(t, rec.IsValid())
}

func TestAdapter_Extract_TruncatesText(t *testing.T) {
	b := new(mockBackend)
	long := strings.Repeat("₹", 20)
	b.On("Extract", mock.Anything, mock.MatchedBy(func(req fallback.Request) bool {
		return req.Text == strings.Repeat("₹", 8)
	})).Return(fallback.Fields{}, nil)

	a := fallback.NewAdapter(b, fallback.Config{APIKey: "key", MaxChars: 8}, parser.DefaultTxnOptions())
	rec := a.Extract(context.Background(), long, "")

	assert.Equal(t, "Unknown Bank", rec.BankName)
	b.AssertExpectations(t)
}

func partialRecord() *models.StatementRecord {
	rec := models.NewStatementRecord(models.IssuerHDFC, "HDFC Bank")
	rec.CardLast4 = "3458"
	rec.TotalAmountDue = "25625.00"
	rec.AddMethod(models.MethodPattern)
	rec.Rescore()
	return rec
}

func TestAdapter_Enhance_FillsOnlyMissing(t *testing.T) {
	b := new(mockBackend)
	b.On("Extract", mock.Anything, mock.MatchedBy(func(req fallback.Request) bool {
		return req.IssuerHint == "HDFC Bank"
	})).Return(fallback.Fields{
		"card_last_4":      "9999",
		"total_amount_due": "1.00",
		"payment_due_date": "03/07/2025",
		"minimum_payment":  "₹1,290.00",
		"statement_date":   "NOT_FOUND",
	}, nil)

	rec := partialRecord()
	err := newTestAdapter(b, "key").Enhance(context.Background(), rec, "text")

	require.NoError(t, err)
	assert.Equal(t, "3458", rec.CardLast4)
	assert.Equal(t, "25625.00", rec.TotalAmountDue)
	assert.Equal(t, "07/03/2025", rec.PaymentDueDate)
	assert.Equal(t, "1290.00", rec.MinimumPayment)
	assert.Equal(t, models.NotFound, rec.StatementDate)
	assert.Equal(t, []string{models.MethodPattern, models.MethodAIEnhanced}, rec.Methods)
	assert.InDelta(t, 0.8, rec.ConfidenceScore, 1e-9)
	assert.Empty(t, rec.Errors)
}

func TestAdapter_Enhance_Failure(t *testing.T) {
	b := new(mockBackend)
	b.On("Extract", mock.Anything, mock.Anything).Return(nil, fallback.ErrMalformedResponse)

	rec := partialRecord()
	before := *rec
	err := newTestAdapter(b, "key").Enhance(context.Background(), rec, "text")

	require.ErrorIs(t, err, fallback.ErrMalformedResponse)
	assert.Equal(t, before.CardLast4, rec.CardLast4)
	assert.Equal(t, before.PaymentDueDate, rec.PaymentDueDate)
	assert.Equal(t, []string{models.MethodPattern}, rec.Methods)
	require.Len(t, rec.Errors, 1)
	assert.True(t, strings.HasPrefix(rec.Errors[0], "AI enhancement failed: "))
	assert.InDelta(t, 0.4, rec.ConfidenceScore, 1e-9)
}

func TestAdapter_Enhance_NoOps(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		b := new(mockBackend)
		rec := partialRecord()
		require.NoError(t, newTestAdapter(b, "").Enhance(context.Background(), rec, "text"))
		assert.Equal(t, []string{models.MethodPattern}, rec.Methods)
		b.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	})

	t.Run("nothing missing", func(t *testing.T) {
		b := new(mockBackend)
		rec := models.NewStatementRecord(models.IssuerHDFC, "HDFC Bank")
		for _, f := range models.Fields {
			rec.Set(f, "1")
		}
		require.NoError(t, newTestAdapter(b, "key").Enhance(context.Background(), rec, "text"))
		assert.Empty(t, rec.Errors)
		b.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	})
}

func TestAdapter_Enhance_NeverOverwrites(t *testing.T) {
	b := new(mockBackend)
	all := fallback.Fields{}
	for _, f := range models.Fields {
		all[string(f)] = "0000"
	}
	b.On("Extract", mock.Anything, mock.Anything).Return(all, nil)

	rec := partialRecord()
	present := map[models.Field]string{}
	for _, f := range models.Fields {
		if v := rec.Get(f); models.Present(v) {
			present[f] = v
		}
	}

	require.NoError(t, newTestAdapter(b, "key").Enhance(context.Background(), rec, "text"))
	for f, v := range present {
		assert.Equal(t, v, rec.Get(f), f)
	}
}
