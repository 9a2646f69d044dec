// Package catalog holds the document classification table shared by every
// component: financial categories with their allowed type labels, and the
// fixed KYC slots. A Catalog is immutable after construction; accessors hand
// out copies.
package catalog

import "strings"

const (
	// DefaultCategory is the catch-all bucket for types no category lists.
	DefaultCategory = "other_documents"
	// AllCategories is the listing filter meaning "no category filter".
	AllCategories = "all"
)

// CategoryInfo describes a financial document category.
type CategoryInfo struct {
	Key          string   `json:"key"`
	DisplayName  string   `json:"name"`
	Icon         string   `json:"icon"`
	AllowedTypes []string `json:"types"`
	// FreeFormType allows any non-empty type label, in addition to AllowedTypes.
	FreeFormType bool `json:"free_form_type"`
}

// SlotInfo describes a KYC document slot.
type SlotInfo struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Catalog is the read-only classification table.
type Catalog struct {
	categories []CategoryInfo
	byKey      map[string]int
	byType     map[string]string
	slots      []SlotInfo
	slotByKey  map[string]int
}

// New builds a Catalog. The category keyed DefaultCategory must be present.
func New(categories []CategoryInfo, slots []SlotInfo) *Catalog {
	c := &Catalog{
		byKey:     make(map[string]int, len(categories)),
		byType:    make(map[string]string),
		slotByKey: make(map[string]int, len(slots)),
	}
	for _, cat := range categories {
		cat.AllowedTypes = append([]string(nil), cat.AllowedTypes...)
		c.byKey[cat.Key] = len(c.categories)
		c.categories = append(c.categories, cat)
		for _, t := range cat.AllowedTypes {
			key := normalize(t)
			// first category listing a type owns it
			if _, taken := c.byType[key]; !taken {
				c.byType[key] = cat.Key
			}
		}
	}
	if _, ok := c.byKey[DefaultCategory]; !ok {
		c.byKey[DefaultCategory] = len(c.categories)
		c.categories = append(c.categories, CategoryInfo{
			Key: DefaultCategory, DisplayName: "Other Documents", Icon: "📄", FreeFormType: true,
		})
	}
	for _, s := range slots {
		c.slotByKey[s.Key] = len(c.slots)
		c.slots = append(c.slots, s)
	}
	return c
}

// Category returns the category for key, or the default category when key is unknown.
func (c *Catalog) Category(key string) CategoryInfo {
	i, ok := c.byKey[key]
	if !ok {
		i = c.byKey[DefaultCategory]
	}
	return copyCategory(c.categories[i])
}

// HasCategory reports whether key names a real category.
func (c *Catalog) HasCategory(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// Categories returns all categories in display order.
func (c *Catalog) Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(c.categories))
	for i, cat := range c.categories {
		out[i] = copyCategory(cat)
	}
	return out
}

// CategoryForType maps a type label back to its category key. Matching is
// case-insensitive. Unknown labels resolve to DefaultCategory.
func (c *Catalog) CategoryForType(docType string) string {
	if key, ok := c.byType[normalize(docType)]; ok {
		return key
	}
	if _, ok := c.slotByKey[docType]; ok {
		return docType
	}
	return DefaultCategory
}

// CanonicalType returns the catalog spelling of docType and whether it is known.
func (c *Catalog) CanonicalType(docType string) (string, bool) {
	key := normalize(docType)
	catKey, ok := c.byType[key]
	if !ok {
		return "", false
	}
	for _, t := range c.categories[c.byKey[catKey]].AllowedTypes {
		if normalize(t) == key {
			return t, true
		}
	}
	return "", false
}

// AllowsType reports whether docType may be filed under category.
func (c *Catalog) AllowsType(category, docType string) bool {
	i, ok := c.byKey[category]
	if !ok || strings.TrimSpace(docType) == "" {
		return false
	}
	cat := c.categories[i]
	if cat.FreeFormType {
		return true
	}
	for _, t := range cat.AllowedTypes {
		if normalize(t) == normalize(docType) {
			return true
		}
	}
	return false
}

// AllTypes returns every known financial type label in table order.
func (c *Catalog) AllTypes() []string {
	var out []string
	for _, cat := range c.categories {
		out = append(out, cat.AllowedTypes...)
	}
	return out
}

// KYCSlots returns the KYC slots in display order.
func (c *Catalog) KYCSlots() []SlotInfo {
	return append([]SlotInfo(nil), c.slots...)
}

// IsKYCSlot reports whether key is one of the fixed KYC slots.
func (c *Catalog) IsKYCSlot(key string) bool {
	_, ok := c.slotByKey[key]
	return ok
}

// Slot returns the slot for key, or a generic "Document" entry.
func (c *Catalog) Slot(key string) SlotInfo {
	if i, ok := c.slotByKey[key]; ok {
		return c.slots[i]
	}
	return SlotInfo{Key: key, Title: "Document"}
}

func copyCategory(cat CategoryInfo) CategoryInfo {
	cat.AllowedTypes = append([]string(nil), cat.AllowedTypes...)
	return cat
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
