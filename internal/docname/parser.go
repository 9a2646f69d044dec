// Package docname derives a document's type and category from stored object
// names and upload metadata, and builds object names and storage paths for
// new uploads.
package docname

import (
	"path"
	"regexp"
	"strings"

	"clientportal/internal/catalog"
)

// Metadata keys attached to uploaded objects.
const (
	MetaDocumentType = "documentType"
	MetaCategory     = "category"
	MetaOriginalName = "originalName"
	MetaUploadDate   = "uploadDate"
)

// prefixDelimiter separates an encoded type label from the rest of a legacy name.
const prefixDelimiter = "__"

// Source records which stage of Parse decided the type.
type Source string

const (
	SourceMetadata Source = "metadata"
	SourcePrefix   Source = "prefix"
	SourceKeyword  Source = "keyword"
	SourceDefault  Source = "default"
)

// Metadata is the descriptive metadata attached to an upload. Empty fields are absent.
type Metadata struct {
	DocumentType string
	Category     string
	OriginalName string
}

// MetadataFromMap reads Metadata from object metadata. Keys are matched
// case-insensitively since S3 lowercases user metadata keys.
func MetadataFromMap(m map[string]string) Metadata {
	var md Metadata
	for k, v := range m {
		switch strings.ToLower(k) {
		case strings.ToLower(MetaDocumentType):
			md.DocumentType = v
		case strings.ToLower(MetaCategory):
			md.Category = v
		case strings.ToLower(MetaOriginalName):
			md.OriginalName = v
		}
	}
	return md
}

// Result is the classification of one stored object.
type Result struct {
	DisplayName string
	DocType     string
	Category    string
	Source      Source
}

// Parser classifies stored objects. It is safe for concurrent use.
type Parser struct {
	catalog *catalog.Catalog
	rules   []Rule
	types   map[string]string
}

var timestampPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}(-\d+)?Z_`)

// NewParser creates a Parser that evaluates rules in order.
func NewParser(c *catalog.Catalog, rules []Rule) *Parser {
	p := &Parser{
		catalog: c,
		rules:   append([]Rule(nil), rules...),
		types:   make(map[string]string),
	}
	for _, t := range c.AllTypes() {
		p.types[strings.ToLower(t)] = t
	}
	return p
}

// Parse classifies objectName. Explicit metadata wins over anything inferred
// from the name; among keyword rules the first match wins.
func (p *Parser) Parse(objectName string, meta Metadata) Result {
	base := StripTimestamp(path.Base(objectName))

	if meta.DocumentType != "" {
		res := Result{
			DisplayName: meta.OriginalName,
			DocType:     meta.DocumentType,
			Category:    meta.Category,
			Source:      SourceMetadata,
		}
		if res.DisplayName == "" {
			res.DisplayName = base
		}
		if res.Category == "" || !p.catalog.HasCategory(res.Category) {
			res.Category = p.catalog.CategoryForType(res.DocType)
		}
		return res
	}

	res := Result{DisplayName: base}
	if meta.OriginalName != "" {
		res.DisplayName = meta.OriginalName
	}

	if docType, ok := p.typeFromPrefix(base); ok {
		res.DocType = docType
		res.Source = SourcePrefix
	} else if docType, ok := p.typeFromKeywords(base); ok {
		res.DocType = docType
		res.Source = SourceKeyword
	} else {
		res.DocType = DefaultLabel
		res.Source = SourceDefault
	}

	res.Category = p.catalog.CategoryForType(res.DocType)
	if meta.Category != "" && p.catalog.HasCategory(meta.Category) {
		res.Category = meta.Category
	}
	return res
}

func (p *Parser) typeFromPrefix(name string) (string, bool) {
	idx := strings.Index(name, prefixDelimiter)
	if idx <= 0 {
		return "", false
	}
	prefix := strings.ToLower(strings.ReplaceAll(name[:idx], "_", " "))
	t, ok := p.types[strings.TrimSpace(prefix)]
	return t, ok
}

func (p *Parser) typeFromKeywords(name string) (string, bool) {
	normalized := strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(name))
	for _, r := range p.rules {
		if r.Match(normalized) {
			return r.Label, true
		}
	}
	return "", false
}

// StripTimestamp removes the upload timestamp that GenerateObjectName prepends.
func StripTimestamp(name string) string {
	return timestampPrefix.ReplaceAllString(name, "")
}
