package docname

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var whitespace = regexp.MustCompile(`\s+`)

// SanitizeFileName collapses whitespace to underscores and drops any
// directory components so the name is safe to use as an object key segment.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." {
		return "file"
	}
	return whitespace.ReplaceAllString(name, "_")
}

// GenerateObjectName prefixes the sanitized original name with a UTC
// millisecond timestamp, e.g. 2025-03-01T10-04-05-123Z_invoice_q1.pdf.
func GenerateObjectName(original string, now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return ts + "_" + SanitizeFileName(original)
}

// BuildPath joins the segments of an object key under the owner's prefix,
// skipping empty segments: {owner}/{partition}/{docType}/{objectName}.
func BuildPath(ownerID uuid.UUID, segments ...string) string {
	parts := []string{ownerID.String()}
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// PathSegment turns a label such as "GST/VAT Return" into a single key
// segment ("GST-VAT_Return").
func PathSegment(label string) string {
	label = strings.NewReplacer("/", "-", "\\", "-").Replace(strings.TrimSpace(label))
	return whitespace.ReplaceAllString(label, "_")
}

// SplitPath returns the directory prefix and the object name of key.
func SplitPath(key string) (dir, name string) {
	i := strings.LastIndex(key, "/")
	if i < 0 {
		return "", key
	}
	return key[:i], key[i+1:]
}
