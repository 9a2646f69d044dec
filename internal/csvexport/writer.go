package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"clientportal/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Document Name",
	"Document Type",
	"Category",
	"Year",
	"Status",
	"Reviewer Comments",
	"File Size (KB)",
	"Content Type",
	"Uploaded At",
}

// Writer wraps csv.Writer for exporting document listings as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteDocuments converts a batch of documents to CSV rows and writes them.
func (w *Writer) WriteDocuments(docs []domain.Document) error {
	for i := range docs {
		if err := w.csv.Write(documentToRow(&docs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// documentToRow prefers the enriched display fields and falls back to the
// stored ones when a listing was not enriched.
func documentToRow(doc *domain.Document) []string {
	name := doc.DisplayName
	if name == "" {
		name = doc.FileName
	}
	category := doc.CategoryName
	if category == "" {
		category = doc.Category
	}

	return []string{
		sanitizeCell(name),
		sanitizeCell(doc.DocType),
		sanitizeCell(category),
		doc.Year,
		string(doc.Status),
		sanitizeCell(doc.Comments),
		formatKB(doc.FileSize),
		doc.ContentType,
		doc.UploadDate.UTC().Format(time.RFC3339),
	}
}

func formatKB(size int64) string {
	return strconv.FormatFloat(float64(size)/1024, 'f', 1, 64)
}

// sanitizeCell stops spreadsheet applications from evaluating user-supplied
// text as a formula.
func sanitizeCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string, now time.Time) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "documents"
	}
	return fmt.Sprintf("%s_%s.csv", sanitized, now.Format("2006-01-02"))
}
