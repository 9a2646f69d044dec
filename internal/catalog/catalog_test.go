package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clientportal/internal/catalog"
)

func TestCatalog_CategoryForType_KnownTypes(t *testing.T) {
	c := catalog.Default()

	assert.Equal(t, "financial_statements", c.CategoryForType("Balance Sheet"))
	assert.Equal(t, "accounts", c.CategoryForType("Outstanding Invoice"))
	assert.Equal(t, "debt_loan", c.CategoryForType("loan agreement"))
	assert.Equal(t, "tax_compliance", c.CategoryForType("  GST/VAT Return "))
}

func TestCatalog_CategoryForType_UnknownResolvesToDefault(t *testing.T) {
	c := catalog.Default()

	for _, docType := range []string{"", "Napkin Sketch", "???", "balance"} {
		got := c.CategoryForType(docType)
		assert.Equal(t, catalog.DefaultCategory, got, "docType %q", docType)
		assert.True(t, c.HasCategory(got))
	}
}

func TestCatalog_CategoryForType_EveryTypeResolvesToItsCategory(t *testing.T) {
	c := catalog.Default()

	for _, cat := range c.Categories() {
		for _, docType := range cat.AllowedTypes {
			assert.Equal(t, cat.Key, c.CategoryForType(docType), "type %q", docType)
		}
	}
}

func TestCatalog_Category_UnknownKeyReturnsDefault(t *testing.T) {
	c := catalog.Default()

	cat := c.Category("does_not_exist")
	assert.Equal(t, catalog.DefaultCategory, cat.Key)
	assert.Equal(t, "Other Documents", cat.DisplayName)
	assert.True(t, cat.FreeFormType)
}

func TestCatalog_Category_ReturnsCopy(t *testing.T) {
	c := catalog.Default()

	cat := c.Category("accounts")
	cat.AllowedTypes[0] = "mutated"

	assert.Equal(t, "Outstanding Invoice", c.Category("accounts").AllowedTypes[0])
}

func TestCatalog_AllowsType(t *testing.T) {
	c := catalog.Default()

	assert.True(t, c.AllowsType("accounts", "Payment Record"))
	assert.False(t, c.AllowsType("accounts", "Balance Sheet"))
	assert.True(t, c.AllowsType(catalog.DefaultCategory, "Board Minutes"))
	assert.False(t, c.AllowsType(catalog.DefaultCategory, "   "))
	assert.False(t, c.AllowsType(catalog.AllCategories, "Payment Record"))
}

func TestCatalog_CanonicalType(t *testing.T) {
	c := catalog.Default()

	got, ok := c.CanonicalType("profit & loss statement")
	assert.True(t, ok)
	assert.Equal(t, "Profit & Loss Statement", got)

	_, ok = c.CanonicalType("unknown")
	assert.False(t, ok)
}

func TestCatalog_KYCSlots(t *testing.T) {
	c := catalog.Default()

	slots := c.KYCSlots()
	assert.Len(t, slots, 4)
	assert.Equal(t, catalog.SlotPassport, slots[0].Key)
	assert.True(t, c.IsKYCSlot(catalog.SlotUtilityBill))
	assert.False(t, c.IsKYCSlot("selfie"))
	assert.Equal(t, "Driving License", c.Slot(catalog.SlotDrivingLicense).Title)
	assert.Equal(t, "Document", c.Slot("selfie").Title)
	assert.Equal(t, catalog.SlotPassport, c.CategoryForType(catalog.SlotPassport))
}

func TestCatalog_NewAddsMissingDefaultCategory(t *testing.T) {
	c := catalog.New([]catalog.CategoryInfo{{Key: "a", AllowedTypes: []string{"A"}}}, nil)

	assert.True(t, c.HasCategory(catalog.DefaultCategory))
	assert.Equal(t, catalog.DefaultCategory, c.CategoryForType("B"))
	assert.Equal(t, "a", c.CategoryForType("a"))
}
