package catalog

import "sync"

// KYC slot keys.
const (
	SlotPassport       = "passport"
	SlotAddressProof   = "address_proof"
	SlotUtilityBill    = "utility_bill"
	SlotDrivingLicense = "driving_license"
)

var defaultCategories = []CategoryInfo{
	{
		Key: "financial_statements", DisplayName: "Financial Statements", Icon: "📊",
		AllowedTypes: []string{
			"Profit & Loss Statement",
			"Balance Sheet",
			"Cash Flow Statement",
			"Audited Financial Report",
		},
	},
	{
		Key: "tax_compliance", DisplayName: "Tax & Compliance", Icon: "📋",
		AllowedTypes: []string{
			"Business Tax Return",
			"GST/VAT Return",
			"Withholding Tax Statement",
			"Tax Clearance Certificate",
		},
	},
	{
		Key: "banking_investment", DisplayName: "Banking & Investment", Icon: "🏦",
		AllowedTypes: []string{
			"Business Bank Statement",
			"Fixed Deposit Certificate",
			"Investment Portfolio",
			"Loan & Credit Agreement",
		},
	},
	{
		Key: "accounts", DisplayName: "Accounts Payable & Receivable", Icon: "💰",
		AllowedTypes: []string{
			"Outstanding Invoice",
			"Payment Record",
			"Accounts Receivable Report",
			"Accounts Payable Report",
		},
	},
	{
		Key: "valuation", DisplayName: "Company Valuation & Shareholding", Icon: "📈",
		AllowedTypes: []string{
			"Shareholder Agreement",
			"Company Valuation Report",
			"Business Ownership Document",
			"Share Certificate",
		},
	},
	{
		Key: "debt_loan", DisplayName: "Debt & Loan Documentation", Icon: "📝",
		AllowedTypes: []string{
			"Loan Agreement",
			"Repayment Schedule",
			"Collateral Documentation",
			"Debt Restructuring Agreement",
		},
	},
	{
		Key: DefaultCategory, DisplayName: "Other Documents", Icon: "📄", FreeFormType: true,
		AllowedTypes: []string{
			"Contract",
			"Agreement",
			"Certificate",
			"License",
			"Permit",
			"Report",
			"Statement",
			"Other",
		},
	},
}

var defaultSlots = []SlotInfo{
	{Key: SlotPassport, Title: "Passport", Description: "Upload a clear copy of your passport. All details must be visible."},
	{Key: SlotAddressProof, Title: "Address Proof", Description: "Upload a document proving your current residential address."},
	{Key: SlotUtilityBill, Title: "Utility Bill", Description: "Upload a recent utility bill (less than 3 months old)."},
	{Key: SlotDrivingLicense, Title: "Driving License", Description: "Upload a clear copy of your driving license (front and back)."},
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the portal's classification table.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = New(defaultCategories, defaultSlots)
	})
	return defaultCatalog
}
