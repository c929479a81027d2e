package models

// NotFound marks a field that no strategy could extract.
const NotFound = "NOT_FOUND"

// Extraction method tags, appended in the order strategies ran.
const (
	MethodPattern    = "pattern-match"
	MethodAIFallback = "ai-fallback"
	MethodAIEnhanced = "ai-enhanced"
	MethodAIFailed   = "ai-failed"
)

// PreviewLength bounds StatementRecord.RawTextPreview.
const PreviewLength = 500

// IssuerID identifies a card issuer.
type IssuerID string

const (
	IssuerUnknown       IssuerID = "unknown"
	IssuerHDFC          IssuerID = "hdfc"
	IssuerAxis          IssuerID = "axis"
	IssuerICICI         IssuerID = "icici"
	IssuerIDFC          IssuerID = "idfc"
	IssuerSyndicate     IssuerID = "syndicate"
	IssuerSBI           IssuerID = "sbi"
	IssuerKotak         IssuerID = "kotak"
	IssuerChase         IssuerID = "chase"
	IssuerAmex          IssuerID = "amex"
	IssuerCiti          IssuerID = "citi"
	IssuerDiscover      IssuerID = "discover"
	IssuerBankOfAmerica IssuerID = "bankofamerica"
)

// Field names a logical statement field. Values double as JSON keys and as
// keys of the AI backend's response schema.
type Field string

const (
	FieldCardLast4       Field = "card_last_4"
	FieldStatementDate   Field = "statement_date"
	FieldPaymentDueDate  Field = "payment_due_date"
	FieldTotalAmountDue  Field = "total_amount_due"
	FieldMinimumPayment  Field = "minimum_payment"
	FieldPeriodStart     Field = "statement_period_start"
	FieldPeriodEnd       Field = "statement_period_end"
	FieldCreditLimit     Field = "credit_limit"
	FieldAvailableCredit Field = "available_credit"
)

// Fields lists every extractable field in output order.
var Fields = []Field{
	FieldCardLast4,
	FieldStatementDate,
	FieldPaymentDueDate,
	FieldTotalAmountDue,
	FieldMinimumPayment,
	FieldPeriodStart,
	FieldPeriodEnd,
	FieldCreditLimit,
	FieldAvailableCredit,
}

// RequiredFields drive the confidence score.
var RequiredFields = []Field{
	FieldCardLast4,
	FieldStatementDate,
	FieldPaymentDueDate,
	FieldTotalAmountDue,
	FieldMinimumPayment,
}

// IsAmount reports whether f holds a monetary value.
func (f Field) IsAmount() bool {
	switch f {
	case FieldTotalAmountDue, FieldMinimumPayment, FieldCreditLimit, FieldAvailableCredit:
		return true
	}
	return false
}

// IsDate reports whether f holds a calendar date.
func (f Field) IsDate() bool {
	switch f {
	case FieldStatementDate, FieldPaymentDueDate, FieldPeriodStart, FieldPeriodEnd:
		return true
	}
	return false
}

// Present reports whether v is an actual extracted value.
func Present(v string) bool {
	return v != "" && v != NotFound
}

// StatementRecord is the canonical output of one parse.
type StatementRecord struct {
	BankName        string        `json:"bank_name"`
	Issuer          IssuerID      `json:"issuer"`
	Currency        string        `json:"currency"`
	CardLast4       string        `json:"card_last_4"`
	StatementDate   string        `json:"statement_date"`
	PaymentDueDate  string        `json:"payment_due_date"`
	TotalAmountDue  string        `json:"total_amount_due"`
	MinimumPayment  string        `json:"minimum_payment"`
	PeriodStart     string        `json:"statement_period_start"`
	PeriodEnd       string        `json:"statement_period_end"`
	CreditLimit     string        `json:"credit_limit"`
	AvailableCredit string        `json:"available_credit"`
	Methods         []string      `json:"extraction_method"`
	ConfidenceScore float64       `json:"confidence_score"`
	Transactions    []Transaction `json:"transactions"`
	Errors          []string      `json:"errors"`
	RawTextPreview  string        `json:"raw_text_preview"`
}

// NewStatementRecord returns a record with every field set to NotFound.
func NewStatementRecord(issuer IssuerID, bankName string) *StatementRecord {
	r := &StatementRecord{
		BankName:     bankName,
		Issuer:       issuer,
		Transactions: []Transaction{},
		Errors:       []string{},
	}
	for _, f := range Fields {
		r.Set(f, NotFound)
	}
	return r
}

func (r *StatementRecord) ptr(f Field) *string {
	switch f {
	case FieldCardLast4:
		return &r.CardLast4
	case FieldStatementDate:
		return &r.StatementDate
	case FieldPaymentDueDate:
		return &r.PaymentDueDate
	case FieldTotalAmountDue:
		return &r.TotalAmountDue
	case FieldMinimumPayment:
		return &r.MinimumPayment
	case FieldPeriodStart:
		return &r.PeriodStart
	case FieldPeriodEnd:
		return &r.PeriodEnd
	case FieldCreditLimit:
		return &r.CreditLimit
	case FieldAvailableCredit:
		return &r.AvailableCredit
	}
	return nil
}

// Get returns the value of f, or NotFound for an unknown field.
func (r *StatementRecord) Get(f Field) string {
	if p := r.ptr(f); p != nil {
		return *p
	}
	return NotFound
}

// Set stores v in f. Empty values are stored as NotFound.
func (r *StatementRecord) Set(f Field, v string) {
	p := r.ptr(f)
	if p == nil {
		return
	}
	if v == "" {
		v = NotFound
	}
	*p = v
}

// Missing returns the fields still at NotFound, in output order.
func (r *StatementRecord) Missing() []Field {
	var out []Field
	for _, f := range Fields {
		if !Present(r.Get(f)) {
			out = append(out, f)
		}
	}
	return out
}

// AddMethod appends a strategy tag.
func (r *StatementRecord) AddMethod(tag string) {
	r.Methods = append(r.Methods, tag)
}

// AddError appends a non-fatal note.
func (r *StatementRecord) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// SetPreview stores the first PreviewLength characters of text.
func (r *StatementRecord) SetPreview(text string) {
	runes := []rune(text)
	if len(runes) > PreviewLength {
		runes = runes[:PreviewLength]
	}
	r.RawTextPreview = string(runes)
}

// Score computes the share of required fields present in r.
func Score(r *StatementRecord) float64 {
	found := 0
	for _, f := range RequiredFields {
		if Present(r.Get(f)) {
			found++
		}
	}
	return float64(found) / float64(len(RequiredFields))
}

// Rescore recomputes and stores the confidence score.
func (r *StatementRecord) Rescore() float64 {
	r.ConfidenceScore = Score(r)
	return r.ConfidenceScore
}

// IsValid reports whether the card suffix, total due and due date are all present.
func (r *StatementRecord) IsValid() bool {
	return Present(r.CardLast4) && Present(r.TotalAmountDue) && Present(r.PaymentDueDate)
}

// HasAnyField reports whether at least one field was extracted.
func (r *StatementRecord) HasAnyField() bool {
	for _, f := range Fields {
		if Present(r.Get(f)) {
			return true
		}
	}
	return false
}
