package docname

import "strings"

// DefaultLabel is assigned when no rule matches a file name.
const DefaultLabel = "Other"

// Rule maps file-name keywords to a document type label.
type Rule struct {
	Name     string
	Keywords []string
	Label    string
}

// Match reports whether any keyword occurs in the normalized file name.
func (r Rule) Match(name string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// DefaultRules is evaluated top to bottom; the first match wins. More
// specific rules must stay above broader ones ("withholding" before "tax",
// "repayment" before "payment").
var DefaultRules = []Rule{
	{Name: "profit_loss", Keywords: []string{"profit", "p&l", "pnl"}, Label: "Profit & Loss Statement"},
	{Name: "balance_sheet", Keywords: []string{"balance"}, Label: "Balance Sheet"},
	{Name: "cash_flow", Keywords: []string{"cash flow", "cashflow"}, Label: "Cash Flow Statement"},
	{Name: "audit", Keywords: []string{"audit"}, Label: "Audited Financial Report"},
	{Name: "gst_vat", Keywords: []string{"gst", "vat"}, Label: "GST/VAT Return"},
	{Name: "withholding", Keywords: []string{"withholding"}, Label: "Withholding Tax Statement"},
	{Name: "tax_clearance", Keywords: []string{"clearance"}, Label: "Tax Clearance Certificate"},
	{Name: "tax_return", Keywords: []string{"tax"}, Label: "Business Tax Return"},
	{Name: "bank_statement", Keywords: []string{"bank"}, Label: "Business Bank Statement"},
	{Name: "fixed_deposit", Keywords: []string{"deposit"}, Label: "Fixed Deposit Certificate"},
	{Name: "investment", Keywords: []string{"portfolio", "investment"}, Label: "Investment Portfolio"},
	{Name: "invoice", Keywords: []string{"invoice"}, Label: "Outstanding Invoice"},
	{Name: "repayment", Keywords: []string{"repayment"}, Label: "Repayment Schedule"},
	{Name: "payment", Keywords: []string{"payment", "receipt"}, Label: "Payment Record"},
	{Name: "receivable", Keywords: []string{"receivable"}, Label: "Accounts Receivable Report"},
	{Name: "payable", Keywords: []string{"payable"}, Label: "Accounts Payable Report"},
	{Name: "shareholder", Keywords: []string{"shareholder"}, Label: "Shareholder Agreement"},
	{Name: "valuation", Keywords: []string{"valuation"}, Label: "Company Valuation Report"},
	{Name: "share_certificate", Keywords: []string{"share cert"}, Label: "Share Certificate"},
	{Name: "collateral", Keywords: []string{"collateral"}, Label: "Collateral Documentation"},
	{Name: "restructuring", Keywords: []string{"restructur"}, Label: "Debt Restructuring Agreement"},
	{Name: "loan", Keywords: []string{"loan"}, Label: "Loan Agreement"},
	{Name: "contract", Keywords: []string{"contract"}, Label: "Contract"},
	{Name: "license", Keywords: []string{"license", "licence"}, Label: "License"},
	{Name: "permit", Keywords: []string{"permit"}, Label: "Permit"},
}
