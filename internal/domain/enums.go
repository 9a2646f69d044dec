package domain

import "strings"

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLS  FileType = "xls"
	FileTypeCSV  FileType = "csv"
	FileTypeDOC  FileType = "doc"
	FileTypeDOCX FileType = "docx"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileTypeXLS:  "application/vnd.ms-excel",
	FileTypeCSV:  "text/csv",
	FileTypeDOC:  "application/msword",
	FileTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Extensions maps file extensions (without dot) to FileType.
var Extensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"xlsx": FileTypeXLSX,
	"xls":  FileTypeXLS,
	"csv":  FileTypeCSV,
	"doc":  FileTypeDOC,
	"docx": FileTypeDOCX,
}

// Identity documents are scans or photos; financial documents also come as
// spreadsheets and office files.
var (
	KYCExtensions       = []string{"pdf", "jpg", "jpeg", "png"}
	FinancialExtensions = []string{"pdf", "jpg", "jpeg", "png", "xlsx", "xls", "csv", "doc", "docx"}
)

// ContentTypeFor returns the MIME type for ext, or "application/octet-stream".
func ContentTypeFor(ext string) string {
	if ft, ok := Extensions[strings.ToLower(ext)]; ok {
		return AllowedFileTypes[ft]
	}
	return "application/octet-stream"
}

// UnsupportedFileMessage is the upload error for a file outside allowed.
func UnsupportedFileMessage(allowed []string) string {
	return "Unsupported file type. Allowed: " + strings.ToUpper(strings.Join(allowed, ", ")) + "."
}

// UserRole defines what a portal user may do.
type UserRole string

const (
	RoleClient   UserRole = "client"
	RoleReviewer UserRole = "reviewer"
)

// DocumentDomain separates identity documents from financial documents.
type DocumentDomain string

const (
	DomainKYC       DocumentDomain = "kyc"
	DomainFinancial DocumentDomain = "financial"
)

// DocumentStatus is the review lifecycle of a document.
type DocumentStatus string

const (
	StatusRequired DocumentStatus = "required"
	StatusPending  DocumentStatus = "pending"
	StatusApproved DocumentStatus = "approved"
	StatusRejected DocumentStatus = "rejected"
)

var statusTransitions = map[DocumentStatus][]DocumentStatus{
	StatusRequired: {StatusPending},
	StatusPending:  {StatusApproved, StatusRejected},
	StatusRejected: {StatusPending},
}

// Valid reports whether s is a known status.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusRequired, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AcceptsUpload reports whether a new file may replace the current one.
// Pending slots accept a replacement and stay pending.
func (s DocumentStatus) AcceptsUpload() bool {
	return s == "" || s == StatusPending || s.CanTransitionTo(StatusPending)
}

// NoticeLevel classifies a transient message shown to the client.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeWarning NoticeLevel = "warning"
)
