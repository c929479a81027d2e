package parser

import (
	"regexp"
	"slices"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// IDFC prints the rupee sign as a backtick in some font encodings.
const idfcRupee = "[₹`]?"

// issuerTable is ordered by detection priority: domestic issuers first,
// since their keywords are more specific than the international ones.
var issuerTable = []*PatternSet{
	{
		ID:       models.IssuerHDFC,
		Name:     "HDFC Bank",
		Keywords: kw("HDFC BANK", "HDFC", "HDFC CREDIT CARD"),
		Dates:    DayFirst,
		Currency: "INR",
		Grammar:  GrammarDatedLine,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Card\s+No[:\s]*\d{4}\s+\d{2}XX\s+XXXX\s+(\d{4})`,
				`Card\s+No[:\s]*[\dX\s]+(\d{4})`,
				`Card\s+ending\s+in[:\s]*(\d{4})`,
			),
			models.FieldStatementDate: patterns(
				`Statement\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
				`Statement\s+for.*?Statement\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Payment\s+Due\s+Date\s+Total\s+Dues\s+Minimum\s+Amount\s+Due[\s\S]{0,100}?(\d{2}/\d{2}/\d{4})`,
				`Payment\s+Due\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`Payment\s+Due\s+Date\s+Total\s+Dues\s+Minimum\s+Amount\s+Due[\s\S]{0,100}?\d{2}/\d{2}/\d{4}\s+([\d,]+\.\d{2})`,
				`Total\s+Dues[\s\S]{0,50}?([\d,]+\.\d{2})`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Amount\s+Due[\s\S]{0,150}?\d{2}/\d{2}/\d{4}\s+[\d,]+\.\d{2}\s+([\d,]+\.\d{2})`,
				`Minimum\s+Amount\s+Due\s+([\d,]+\.\d{2})`,
			),
			models.FieldPeriodStart: patterns(
				`Statement\s+Period[:\s]*(\d{2}/\d{2}/\d{4})\s*to`,
			),
			models.FieldPeriodEnd: patterns(
				`Statement\s+Period[:\s]*\d{2}/\d{2}/\d{4}\s*to\s*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldCreditLimit: patterns(
				`Credit\s+Limit\s+Available\s+Credit\s+Limit[\s\S]{0,100}?([\d,]+(?:\.\d{2})?)`,
				`Credit\s+Limit[:\s]+([\d,]+(?:\.\d{2})?)`,
			),
			models.FieldAvailableCredit: patterns(
				`Available\s+Credit\s+Limit[\s\S]{0,100}?([\d,]+\.\d{2})`,
				`Credit\s+Limit\s+Available\s+Credit\s+Limit[\s\S]{0,100}?[\d,]+\s+([\d,]+\.\d{2})`,
			),
		},
	},
	{
		ID:                 models.IssuerAxis,
		Name:               "Axis Bank",
		Keywords:           []Keyword{{Text: "AXIS BANK"}, {Text: "AXIS", Word: true}, {Text: "FLIPKART AXIS"}},
		Dates:              DayFirst,
		Currency:           "INR",
		Grammar:            GrammarDrCr,
		SparseTransactions: true,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Credit\s+Card\s+Number[:\s]*.*?[\*Xx]{4,}[\s\-]*(\d{4})`,
				`[\*Xx]{12,}[\s\-]*(\d{4})`,
			),
			models.FieldStatementDate: patterns(
				`Statement\s+Generation\s+Date[\s\S]{0,100}?(\d{2}/\d{2}/\d{4})`,
				`Generation\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Payment\s+Due\s+Date[\s\S]{0,100}?(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`Total\s+Payment\s+Due\s+Minimum\s+Payment\s+Due[\s\S]{0,200}?([\d,]+\.\d{2})\s+Dr`,
				`Total\s+Payment\s+Due[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.\d{2})`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Payment\s+Due[\s\S]{0,200}?([\d,]+\.\d{2})\s+Dr`,
			),
			models.FieldPeriodStart: patterns(
				`Statement\s+Period[\s\S]{0,100}?(\d{2}/\d{2}/\d{4})\s*[-–]`,
				`(\d{2}/\d{2}/\d{4})\s*[-–]\s*\d{2}/\d{2}/\d{4}`,
			),
			models.FieldPeriodEnd: patterns(
				`Statement\s+Period[\s\S]{0,100}?\d{2}/\d{2}/\d{4}\s*[-–]\s*(\d{2}/\d{2}/\d{4})`,
				`\d{2}/\d{2}/\d{4}\s*[-–]\s*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldCreditLimit: patterns(
				`Credit\s+Limit\s+Available\s+Credit\s+Limit[\s\S]{0,150}?([\d,]+\.\d{2})`,
				`Credit\s+Limit[:\s]+([\d,]+\.\d{2})`,
			),
			models.FieldAvailableCredit: patterns(
				`Available\s+Credit\s+Limit[\s\S]{0,150}?([\d,]+\.\d{2})`,
				`Credit\s+Limit\s+Available\s+Credit\s+Limit[\s\S]{0,150}?[\d,]+\.\d{2}\s+([\d,]+\.\d{2})`,
			),
		},
	},
	{
		ID:       models.IssuerICICI,
		Name:     "ICICI Bank",
		Keywords: kw("ICICI BANK", "ICICI", "ICICI CREDIT"),
		Dates:    DayFirst,
		Currency: "INR",
		Grammar:  GrammarDatedLine,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Card\s+Number[:\s]*.*?[\dXx]+(\d{4})`,
				`XXXX\s+(\d{4})`,
			),
			models.FieldStatementDate: patterns(
				`Statement\s+Generation\s+Date[\s\S]{0,100}?(\d{2}/\d{2}/\d{4})`,
				`Statement\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Due\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
				`Payment\s+Due\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`(?:Your\s+)?Total\s+Amount\s+Due[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.?\d{0,2})`,
				`Total\s+Due[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.?\d{0,2})`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Amount\s+Due[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.?\d{0,2})`,
			),
			models.FieldPeriodStart: patterns(
				`Statement\s+Period[\s\S]{0,100}?(\d{2}/\d{2}/\d{4})\s*[-–]`,
				`(\d{2}/\d{2}/\d{4})\s*[-–]\s*\d{2}/\d{2}/\d{4}`,
			),
			models.FieldPeriodEnd: patterns(
				`Statement\s+Period[\s\S]{0,100}?\d{2}/\d{2}/\d{4}\s*[-–]\s*(\d{2}/\d{2}/\d{4})`,
				`\d{2}/\d{2}/\d{4}\s*[-–]\s*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldCreditLimit: patterns(
				`Credit\s+Limit[:\s]+([\d,]+\.?\d{0,2})`,
			),
			models.FieldAvailableCredit: patterns(
				`Available\s+Credit\s+Limit[\s\S]{0,100}?([\d,]+\.\d{2})`,
				`Credit\s+Limit\s+Available\s+Credit\s+Limit[\s\S]{0,150}?[\d,]+\.\d{2}\s+([\d,]+\.\d{2})`,
			),
		},
	},
	{
		ID:       models.IssuerIDFC,
		Name:     "IDFC First Bank",
		Keywords: kw("IDFC FIRST BANK", "IDFC FIRST", "IDFC BANK", "IDFC"),
		Dates:    DayFirst,
		Currency: "INR",
		Grammar:  GrammarDatedLine,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Card\s+Number[:\s]*[Xx]{4}\s+[Xx]{4}\s+[Xx]{4}\s+(\d{4})`,
				`Account\s+Number[:\s]*.*?[Xx]{4,}[\s\-]*(\d{4})`,
			),
			models.FieldStatementDate: patterns(
				`Statement\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
				`\d{2}/\d{2}/\d{4}\s*-\s*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Payment\s+Due\s+Date[:\s\S]{0,100}?(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`Total\s+Amount\s+Due[\s\S]{0,100}?` + idfcRupee + `\s*([\d,]+\.?\d{0,2})`,
				`STATEMENT\s+SUMMARY[\s\S]{1,300}?Total\s+Amount\s+Due[\s\S]{0,50}?` + idfcRupee + `\s*([\d,]+\.\d{2})`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Amount\s+Due[\s\S]{0,100}?` + idfcRupee + `\s*([\d,]+\.?\d{0,2})`,
			),
			models.FieldPeriodStart: patterns(
				`Statement\s+Period[:\s]*From:\s*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldPeriodEnd: patterns(
				`Statement\s+Period[:\s]*From:\s*\d{2}/\d{2}/\d{4}\s*To:\s*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldCreditLimit: patterns(
				`Credit\s+Limit[:\s]+` + idfcRupee + `\s*([\d,]+(?:\.\d{2})?)`,
			),
			models.FieldAvailableCredit: patterns(
				`Available\s+Credit\s+Limit[:\s]+` + idfcRupee + `\s*([\d,]+(?:\.\d{2})?)`,
			),
		},
	},
	{
		ID:       models.IssuerSyndicate,
		Name:     "Syndicate Bank",
		Keywords: kw("SYNDICATE BANK", "CANARA BANK", "GLOBAL CREDIT CARD"),
		Dates:    DayMonthName,
		Currency: "INR",
		Grammar:  GrammarDatedLine,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Credit\s+Card\s+No[:\s]*.*?(\d{4})`,
				`Card\s+Account\s+Number[\s\S]{0,50}?(\d{4})`,
			),
			models.FieldStatementDate: patterns(
				`Statement\s+Date[:\s]*(\d{2}\s[A-Z]{3}\s\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Payment\s+Due\s+Date[:\s]*(\d{2}\s[A-Z]{3}\s\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`Total\s+Payment\s+Due[:\s]+([\d,]+\.?\d{0,2})`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Payment\s+Due[:\s]+([\d,]+\.?\d{0,2})`,
			),
			models.FieldCreditLimit: patterns(
				`Credit\s+Limit[:\s]+([\d,]+\.?\d{0,2})`,
			),
			models.FieldAvailableCredit: patterns(
				`Available\s+Credit\s+Limit[:\s]+([\d,]+\.?\d{0,2})`,
			),
		},
	},
	{
		ID:       models.IssuerSBI,
		Name:     "SBI Card",
		Keywords: []Keyword{{Text: "STATE BANK OF INDIA"}, {Text: "STATE BANK"}, {Text: "SBI", Word: true}},
		Dates:    DayFirst,
		Currency: "INR",
		Grammar:  GrammarDatedLine,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Card\s+Number[:\s]*[\*Xx\s]+(\d{4})`,
				`Card\s+ending[:\s]*(\d{4})`,
			),
			models.FieldStatementDate: patterns(
				`Statement\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Payment\s+Due\s+on[:\s]*(\d{2}/\d{2}/\d{4})`,
				`Payment\s+Due\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`Total\s+Amount\s+Due[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.?\d*)`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Amount\s+Due[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.?\d*)`,
			),
			models.FieldPeriodStart: patterns(
				`Statement\s+Period[:\s]*(\d{2}/\d{2}/\d{4})\s*to`,
			),
			models.FieldPeriodEnd: patterns(
				`Statement\s+Period[:\s]*\d{2}/\d{2}/\d{4}\s*to\s*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldCreditLimit: patterns(
				`Credit\s+Limit[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.?\d*)`,
			),
			models.FieldAvailableCredit: patterns(
				`Available\s+Credit(?:\s+Limit)?[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.?\d*)`,
			),
		},
	},
	{
		ID:       models.IssuerKotak,
		Name:     "Kotak Mahindra Bank",
		Keywords: kw("KOTAK MAHINDRA", "KOTAK"),
		Dates:    DayFirst,
		Currency: "INR",
		Grammar:  GrammarDatedLine,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Card\s+Number[:\s]*[\*Xx\s]+(\d{4})`,
				`Card\s+ending[:\s]*(\d{4})`,
			),
			models.FieldStatementDate: patterns(
				`Statement\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Payment\s+Due\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`Total\s+Amount\s+Due[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.?\d*)`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Amount\s+Due[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.?\d*)`,
			),
			models.FieldPeriodStart: patterns(
				`Statement\s+Period[:\s]*(\d{2}/\d{2}/\d{4})\s*to`,
			),
			models.FieldPeriodEnd: patterns(
				`Statement\s+Period[:\s]*\d{2}/\d{2}/\d{4}\s*to\s*(\d{2}/\d{2}/\d{4})`,
			),
			models.FieldCreditLimit: patterns(
				`Total\s+Credit\s+Limit[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.?\d*)`,
			),
			models.FieldAvailableCredit: patterns(
				`Available\s+Credit\s+Limit[:\s]*(?:Rs\.?\s*|₹\s*)?([\d,]+\.?\d*)`,
			),
		},
	},
	{
		ID:       models.IssuerChase,
		Name:     "Chase",
		Keywords: []Keyword{{Text: "JPMORGAN CHASE"}, {Text: "CHASE", Word: true}},
		Dates:    MonthFirst,
		Currency: "USD",
		Grammar:  GrammarUSD,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Account.*?ending\s+in[:\s]+(\d{4})`,
				`Account\s+Number:.*?(\d{4})\b`,
			),
			models.FieldStatementDate: patterns(
				`Statement\s+Date[:\s]*(\d{1,2}/\d{1,2}/\d{4})`,
				`Statement\s+Period[:\s]*\d{1,2}/\d{1,2}/\d{4}\s*to\s*(\d{1,2}/\d{1,2}/\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Payment\s+Due\s+Date[:\s]*(\d{1,2}/\d{1,2}/\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`New\s+Balance[:\s]*\$\s*([\d,]+\.\d{2})`,
				`(?:Amount\s+Due|Balance)[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Payment\s+Due[:\s]*\$\s*([\d,]+\.\d{2})`,
				`(?:Minimum\s+Payment|Minimum\s+Due)[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldPeriodStart: patterns(
				`Statement\s+Period[:\s]*(\d{1,2}/\d{1,2}/\d{4})\s*to`,
			),
			models.FieldPeriodEnd: patterns(
				`Statement\s+Period[:\s]*\d{1,2}/\d{1,2}/\d{4}\s*to\s*(\d{1,2}/\d{1,2}/\d{4})`,
			),
			models.FieldCreditLimit: patterns(
				`Credit\s+Limit[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldAvailableCredit: patterns(
				`(?:Available\s+Credit|Credit\s+Available)[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
		},
	},
	{
		ID:       models.IssuerAmex,
		Name:     "American Express",
		Keywords: []Keyword{{Text: "AMERICAN EXPRESS"}, {Text: "AMEX", Word: true}},
		Dates:    MonthNameDay,
		Currency: "USD",
		Grammar:  GrammarUSD,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Account\s+Ending[:\s]*(?:\d-)?(\d{4})`,
				`Account.*?-(\d{4})\b`,
			),
			models.FieldStatementDate: patterns(
				`Statement\s+Closing\s+Date[:\s]*([A-Za-z]+\s+\d{1,2},\s+\d{4})`,
				`Closing\s+Date[:\s]*(\d{1,2}/\d{1,2}/\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Payment\s+Due\s+Date[:\s]*([A-Za-z]+\s+\d{1,2},\s+\d{4})`,
				`Please\s+Pay\s+By[:\s]*([A-Za-z]+\s+\d{1,2},\s+\d{4})`,
				`Payment\s+Due\s+Date[:\s]*(\d{1,2}/\d{1,2}/\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`Total\s+New\s+Balance[:\s]*\$\s*([\d,]+\.\d{2})`,
				`(?:Total\s+Amount\s+Due|New\s+Balance)[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Payment\s+Due[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldCreditLimit: patterns(
				`Total\s+Credit\s+Limit[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldAvailableCredit: patterns(
				`Total\s+Available\s+Credit[:\s]*\$\s*([\d,]+\.\d{2})`,
				`(?:Credit\s+Available|Available\s+Credit)[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
		},
	},
	{
		ID:       models.IssuerCiti,
		Name:     "Citibank",
		Keywords: []Keyword{{Text: "CITIBANK"}, {Text: "CITI", Word: true}},
		Dates:    MonthFirst,
		Currency: "USD",
		Grammar:  GrammarUSD,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Account\s+Number.*?(\d{4})\b`,
				`xxxx\s*(\d{4})`,
				`Account.*?ending\s+in[:\s]+(\d{4})`,
			),
			models.FieldStatementDate: patterns(
				`Statement\s+Date[:\s]*(\d{1,2}/\d{1,2}/\d{4})`,
				`Statement\s+Closing\s+Date[:\s]*(\d{1,2}/\d{1,2}/\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Payment\s+Due\s+Date[:\s]*(\d{1,2}/\d{1,2}/\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`New\s+Balance[:\s]*\$\s*([\d,]+\.\d{2})`,
				`Total\s+Balance[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Payment(?:\s+Due)?[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldCreditLimit: patterns(
				`Credit\s+Limit[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldAvailableCredit: patterns(
				`Available\s+Credit[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
		},
	},
	{
		ID:       models.IssuerDiscover,
		Name:     "Discover",
		Keywords: kw("DISCOVER"),
		Dates:    MonthFirst,
		Currency: "USD",
		Grammar:  GrammarUSD,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Account.*?ending\s+in[:\s]+(\d{4})`,
				`Account.*?(\d{4})\b`,
			),
			models.FieldStatementDate: patterns(
				`(?:Statement|Closing)\s+Date[:\s]*(\d{1,2}/\d{1,2}/\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Payment\s+Due\s+Date[:\s]*(\d{1,2}/\d{1,2}/\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`New\s+Balance[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Payment(?:\s+Due)?[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldCreditLimit: patterns(
				`Credit\s+Limit[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldAvailableCredit: patterns(
				`Credit\s+Available[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
		},
	},
	{
		ID:       models.IssuerBankOfAmerica,
		Name:     "Bank of America",
		Keywords: []Keyword{{Text: "BANK OF AMERICA"}, {Text: "BOFA", Word: true}},
		Dates:    MonthFirst,
		Currency: "USD",
		Grammar:  GrammarUSD,
		Fields: map[models.Field][]*regexp.Regexp{
			models.FieldCardLast4: patterns(
				`Account.*?ending\s+in[:\s]+(\d{4})`,
				`Account.*?(\d{4})\b`,
			),
			models.FieldStatementDate: patterns(
				`(?:Statement|Closing)\s+Date[:\s]*(\d{1,2}/\d{1,2}/\d{4})`,
			),
			models.FieldPaymentDueDate: patterns(
				`Payment\s+Due\s+Date[:\s]*(\d{1,2}/\d{1,2}/\d{4})`,
			),
			models.FieldTotalAmountDue: patterns(
				`New\s+Balance(?:\s+Total)?[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldMinimumPayment: patterns(
				`Minimum\s+Payment\s+Due[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldCreditLimit: patterns(
				`Credit\s+Limit[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
			models.FieldAvailableCredit: patterns(
				`Available\s+Credit[:\s]*\$\s*([\d,]+\.\d{2})`,
			),
		},
	},
}

var issuerByID = func() map[models.IssuerID]*PatternSet {
	m := make(map[models.IssuerID]*PatternSet, len(issuerTable))
	for _, s := range issuerTable {
		m[s.ID] = s
	}
	return m
}()

// Lookup returns a copy of the pattern set registered for id.
func Lookup(id models.IssuerID) (*PatternSet, bool) {
	s, ok := issuerByID[id]
	if !ok {
		return nil, false
	}
	return s.clone(), true
}

// Issuers returns copies of every registered pattern set in detection
// priority order.
func Issuers() []*PatternSet {
	out := make([]*PatternSet, len(issuerTable))
	for i, s := range issuerTable {
		out[i] = s.clone()
	}
	return out
}

// IssuerName returns the display name for id, or "Unknown".
func IssuerName(id models.IssuerID) string {
	if s, ok := issuerByID[id]; ok {
		return s.Name
	}
	return "Unknown"
}

// clone copies s down to the pattern lists. The compiled regexps are
// shared; they are immutable.
func (s *PatternSet) clone() *PatternSet {
	c := *s
	c.Keywords = slices.Clone(s.Keywords)
	c.Fields = make(map[models.Field][]*regexp.Regexp, len(s.Fields))
	for f, res := range s.Fields {
		c.Fields[f] = slices.Clone(res)
	}
	return &c
}

func kw(texts ...string) []Keyword {
	out := make([]Keyword, len(texts))
	for i, t := range texts {
		out[i] = Keyword{Text: t}
	}
	return out
}
