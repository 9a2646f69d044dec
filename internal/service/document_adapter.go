package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clientportal/internal/catalog"
	"clientportal/internal/docname"
	"clientportal/internal/domain"
	"clientportal/internal/metrics"
	"clientportal/internal/port"
)

// AdapterConfig holds the per-domain storage settings of a DocumentAdapter.
type AdapterConfig struct {
	Domain          domain.DocumentDomain
	Bucket          string
	PresignExpiry   int64
	SignConcurrency int
	CacheControl    string
}

// DeleteStrategy names one way of locating the stored object of a document.
type DeleteStrategy string

const (
	StrategyID             DeleteStrategy = "id"
	StrategyPath           DeleteStrategy = "path"
	StrategyRecomputedPath DeleteStrategy = "recomputed_path"
	StrategyStorageDirect  DeleteStrategy = "storage_direct"
)

// DeleteTarget identifies the document to delete. FilePath is optional and,
// when set, must lie under the owner's prefix.
type DeleteTarget struct {
	OwnerID  uuid.UUID
	DocID    uuid.UUID
	FilePath string
}

// StrategyAttempt records why a strategy did not resolve the object.
type StrategyAttempt struct {
	Strategy DeleteStrategy `json:"strategy"`
	Error    string         `json:"error"`
}

// DeleteOutcome reports how a delete was resolved.
// ObjectMissing means no strategy found a stored object; Orphaned means
// storage errors prevented removal and the object may remain.
type DeleteOutcome struct {
	Strategy      DeleteStrategy    `json:"strategy,omitempty"`
	ObjectMissing bool              `json:"object_missing"`
	Orphaned      bool              `json:"orphaned"`
	Attempts      []StrategyAttempt `json:"attempts,omitempty"`
}

var errObjectNotFound = errors.New("object not found")

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// DocumentAdapter combines the row store and the object store of one
// document domain. Listings are driven by rows; objects are only consulted
// to sign URLs.
type DocumentAdapter struct {
	repo    port.DocumentRepository
	storage port.ObjectStorage
	broker  port.StatusBroker
	parser  *docname.Parser
	catalog *catalog.Catalog
	cfg     AdapterConfig
	now     func() time.Time
}

// NewDocumentAdapter creates a DocumentAdapter for cfg.Domain.
func NewDocumentAdapter(
	repo port.DocumentRepository,
	storage port.ObjectStorage,
	broker port.StatusBroker,
	parser *docname.Parser,
	cat *catalog.Catalog,
	cfg AdapterConfig,
) *DocumentAdapter {
	if cfg.SignConcurrency <= 0 {
		cfg.SignConcurrency = 1
	}
	return &DocumentAdapter{
		repo:    repo,
		storage: storage,
		broker:  broker,
		parser:  parser,
		catalog: cat,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Domain returns the document domain served by the adapter.
func (a *DocumentAdapter) Domain() domain.DocumentDomain {
	return a.cfg.Domain
}

// List returns the owner's documents, newest first, each enriched with its
// display fields and a signed URL. A document whose object is missing or
// cannot be signed is returned with a nil SignedURL.
func (a *DocumentAdapter) List(ctx context.Context, ownerID uuid.UUID, filter domain.DocumentFilter) ([]domain.Document, error) {
	start := time.Now()
	defer metrics.ObserveList(string(a.cfg.Domain), start)

	docs, err := a.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRowRead, err)
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	for i := range docs {
		a.enrich(&docs[i])
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.SignConcurrency)
	for i := range docs {
		doc := &docs[i]
		g.Go(func() error {
			a.sign(gctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	return docs, nil
}

// Get returns a single enriched and signed document.
func (a *DocumentAdapter) Get(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error) {
	doc, err := a.repo.GetByID(ctx, ownerID, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRowRead, err)
	}
	a.enrich(doc)
	a.sign(ctx, doc)
	return doc, nil
}

// Lookup returns an enriched document without signing its URL.
func (a *DocumentAdapter) Lookup(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error) {
	doc, err := a.repo.GetByID(ctx, ownerID, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRowRead, err)
	}
	a.enrich(doc)
	return doc, nil
}

// Insert stores body as a new object and records it. When the object is
// written but the row is not, the object is removed again and the error is
// ErrPartialFailure wrapping ErrRowWrite.
func (a *DocumentAdapter) Insert(ctx context.Context, doc *domain.Document, body io.Reader) (*domain.Document, error) {
	if err := a.validateInsert(doc); err != nil {
		return nil, err
	}

	now := a.now().UTC()
	doc.Domain = a.cfg.Domain
	doc.FileName = docname.SanitizeFileName(doc.FileName)
	doc.FilePath = a.objectKey(doc.OwnerID, doc, docname.GenerateObjectName(doc.FileName, now))
	doc.UploadDate = now

	var previousPath string
	if a.cfg.Domain == domain.DomainKYC {
		previousPath = a.currentSlotPath(ctx, doc.OwnerID, doc.DocType)
	}

	log.Printf("documentAdapter.Insert: uploading %s (%s, %d bytes) for user %s",
		doc.FilePath, doc.ContentType, doc.FileSize, doc.OwnerID)

	_, err := a.storage.Upload(ctx, port.UploadInput{
		Bucket:       a.cfg.Bucket,
		Key:          doc.FilePath,
		Body:         body,
		ContentType:  doc.ContentType,
		Size:         doc.FileSize,
		CacheControl: a.cfg.CacheControl,
		Metadata: map[string]string{
			docname.MetaDocumentType: doc.DocType,
			docname.MetaCategory:     doc.Category,
			docname.MetaOriginalName: doc.FileName,
			docname.MetaUploadDate:   now.Format(time.RFC3339),
		},
	})
	if err != nil {
		log.Printf("documentAdapter.Insert: storage upload failed for %s: %v", doc.FilePath, err)
		metrics.RecordUpload(string(a.cfg.Domain), "failed")
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStorageWrite, doc.FilePath, err)
	}

	if err := a.repo.Save(ctx, doc); err != nil {
		log.Printf("documentAdapter.Insert: row write failed for %s, removing object: %v", doc.FilePath, err)
		if delErr := a.storage.Delete(context.WithoutCancel(ctx), a.cfg.Bucket, doc.FilePath); delErr != nil {
			log.Printf("documentAdapter.Insert: WARNING: could not remove %s after row failure: %v", doc.FilePath, delErr)
		}
		metrics.RecordUpload(string(a.cfg.Domain), "partial")
		return nil, fmt.Errorf("%w: %w: %v", domain.ErrPartialFailure, domain.ErrRowWrite, err)
	}

	if previousPath != "" && previousPath != doc.FilePath {
		if err := a.storage.Delete(ctx, a.cfg.Bucket, previousPath); err != nil {
			log.Printf("documentAdapter.Insert: WARNING: could not remove replaced object %s: %v", previousPath, err)
		}
	}

	metrics.RecordUpload(string(a.cfg.Domain), "success")
	a.enrich(doc)
	a.sign(ctx, doc)
	return doc, nil
}

// Delete removes a document's object and row. Strategies to locate the
// object run in order until one removes it. The row is removed even when no
// object was found.
func (a *DocumentAdapter) Delete(ctx context.Context, target DeleteTarget) (*DeleteOutcome, error) {
	var doc *domain.Document
	if target.DocID != uuid.Nil {
		d, err := a.repo.GetByID(ctx, target.OwnerID, target.DocID)
		switch {
		case err == nil:
			doc = d
		case errors.Is(err, domain.ErrNotFound):
			if target.FilePath == "" {
				return nil, domain.ErrNotFound
			}
		default:
			return nil, fmt.Errorf("%w: %v", domain.ErrRowRead, err)
		}
	} else if target.FilePath == "" {
		return nil, domain.NewValidationError("id", "document id or file path is required")
	}

	outcome := &DeleteOutcome{}
	storageFailed := false

	for _, s := range a.deleteStrategies() {
		err := s.run(ctx, target, doc)
		if err == nil {
			outcome.Strategy = s.name
			break
		}
		if !errors.Is(err, errObjectNotFound) {
			storageFailed = true
			log.Printf("documentAdapter.Delete: strategy %s failed for user %s: %v", s.name, target.OwnerID, err)
		}
		outcome.Attempts = append(outcome.Attempts, StrategyAttempt{Strategy: s.name, Error: err.Error()})
	}

	if outcome.Strategy == "" {
		outcome.Orphaned = storageFailed
		outcome.ObjectMissing = !storageFailed
	}

	if err := a.deleteRow(ctx, target, doc); err != nil {
		if errors.Is(err, domain.ErrNotFound) && outcome.Strategy == "" {
			return nil, domain.ErrNotFound
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrRowWrite, err)
		}
	}

	label := string(outcome.Strategy)
	switch {
	case outcome.Orphaned:
		label = "orphaned"
		log.Printf("documentAdapter.Delete: WARNING: object for document %s of user %s may remain in storage", target.DocID, target.OwnerID)
	case outcome.ObjectMissing:
		label = "object_missing"
	}
	metrics.RecordDelete(string(a.cfg.Domain), label)

	return outcome, nil
}

// Subscribe opens a status subscription for the owner. The caller must Close it.
func (a *DocumentAdapter) Subscribe(ctx context.Context, ownerID uuid.UUID) (port.Subscription, error) {
	return a.broker.Subscribe(ctx, ownerID)
}

type deleteStrategy struct {
	name DeleteStrategy
	run  func(ctx context.Context, target DeleteTarget, doc *domain.Document) error
}

func (a *DocumentAdapter) deleteStrategies() []deleteStrategy {
	return []deleteStrategy{
		{name: StrategyID, run: a.deleteByID},
		{name: StrategyPath, run: a.deleteByPath},
		{name: StrategyRecomputedPath, run: a.deleteByRecomputedPath},
		{name: StrategyStorageDirect, run: a.deleteByListing},
	}
}

func (a *DocumentAdapter) deleteByID(ctx context.Context, _ DeleteTarget, doc *domain.Document) error {
	if doc == nil {
		return errObjectNotFound
	}
	return a.removeIfExists(ctx, doc.FilePath)
}

func (a *DocumentAdapter) deleteByPath(ctx context.Context, target DeleteTarget, doc *domain.Document) error {
	if target.FilePath == "" || (doc != nil && target.FilePath == doc.FilePath) {
		return errObjectNotFound
	}
	if !a.ownsKey(target.OwnerID, target.FilePath) {
		return fmt.Errorf("%w: path %q is outside the owner prefix", errObjectNotFound, target.FilePath)
	}
	return a.removeIfExists(ctx, target.FilePath)
}

func (a *DocumentAdapter) deleteByRecomputedPath(ctx context.Context, target DeleteTarget, doc *domain.Document) error {
	if doc == nil {
		return errObjectNotFound
	}
	key := a.objectKey(target.OwnerID, doc, path.Base(doc.FilePath))
	if key == doc.FilePath || key == target.FilePath {
		return errObjectNotFound
	}
	return a.removeIfExists(ctx, key)
}

// deleteByListing searches the whole owner prefix for the object's name,
// which finds objects whose directory drifted from the stored path.
func (a *DocumentAdapter) deleteByListing(ctx context.Context, target DeleteTarget, doc *domain.Document) error {
	names := map[string]bool{}
	for _, p := range []string{target.FilePath, docFilePath(doc)} {
		if p != "" {
			names[path.Base(p)] = true
		}
	}
	if len(names) == 0 {
		return errObjectNotFound
	}

	objects, err := a.storage.List(ctx, a.cfg.Bucket, target.OwnerID.String()+"/")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageRead, err)
	}

	removed := 0
	for _, obj := range objects {
		if !names[path.Base(obj.Key)] {
			continue
		}
		if err := a.storage.Delete(ctx, a.cfg.Bucket, obj.Key); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrStorageWrite, obj.Key, err)
		}
		removed++
	}
	if removed == 0 {
		return errObjectNotFound
	}
	return nil
}

func (a *DocumentAdapter) removeIfExists(ctx context.Context, key string) error {
	exists, err := a.storage.Exists(ctx, a.cfg.Bucket, key)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrStorageRead, key, err)
	}
	if !exists {
		return errObjectNotFound
	}
	if err := a.storage.Delete(ctx, a.cfg.Bucket, key); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrStorageWrite, key, err)
	}
	return nil
}

func (a *DocumentAdapter) deleteRow(ctx context.Context, target DeleteTarget, doc *domain.Document) error {
	if doc != nil {
		return a.repo.Delete(ctx, target.OwnerID, doc.ID)
	}
	n, err := a.repo.DeleteByPath(ctx, target.OwnerID, target.FilePath)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (a *DocumentAdapter) validateInsert(doc *domain.Document) error {
	if doc.OwnerID == uuid.Nil {
		return domain.ErrAuthRequired
	}
	if strings.TrimSpace(doc.DocType) == "" {
		return domain.NewValidationError("doc_type", "Please enter a document type before uploading")
	}
	switch a.cfg.Domain {
	case domain.DomainKYC:
		if !a.catalog.IsKYCSlot(doc.DocType) {
			return domain.NewValidationError("doc_type", fmt.Sprintf("unknown KYC document %q", doc.DocType))
		}
		doc.Category = doc.DocType
	case domain.DomainFinancial:
		if !yearPattern.MatchString(doc.Year) {
			return domain.NewValidationError("year", "year must have four digits")
		}
		if doc.Category == "" || doc.Category == catalog.AllCategories || !a.catalog.HasCategory(doc.Category) {
			return domain.NewValidationError("category", "select a document category")
		}
	}
	return nil
}

// objectKey builds {owner}/{slot}/{name} for KYC and
// {owner}/{year}/{docType}/{name} for financial documents.
func (a *DocumentAdapter) objectKey(ownerID uuid.UUID, doc *domain.Document, objectName string) string {
	if a.cfg.Domain == domain.DomainKYC {
		return docname.BuildPath(ownerID, doc.DocType, objectName)
	}
	return docname.BuildPath(ownerID, doc.Year, docname.PathSegment(doc.DocType), objectName)
}

func (a *DocumentAdapter) ownsKey(ownerID uuid.UUID, key string) bool {
	return strings.HasPrefix(key, ownerID.String()+"/") && !strings.Contains(key, "..")
}

func (a *DocumentAdapter) currentSlotPath(ctx context.Context, ownerID uuid.UUID, slot string) string {
	docs, err := a.repo.List(ctx, ownerID, domain.DocumentFilter{DocType: slot})
	if err != nil || len(docs) == 0 {
		return ""
	}
	return docs[0].FilePath
}

// enrich fills the display fields derived from the catalog and the file name.
func (a *DocumentAdapter) enrich(doc *domain.Document) {
	doc.Domain = a.cfg.Domain
	if a.cfg.Domain == domain.DomainKYC {
		slot := a.catalog.Slot(doc.DocType)
		doc.Category = doc.DocType
		doc.DisplayName = docname.StripTimestamp(doc.FileName)
		doc.CategoryName = slot.Title
		return
	}

	res := a.parser.Parse(doc.FileName, docname.Metadata{DocumentType: doc.DocType, Category: doc.Category})
	doc.DocType = res.DocType
	doc.Category = res.Category
	doc.DisplayName = res.DisplayName
	info := a.catalog.Category(doc.Category)
	doc.CategoryName = info.DisplayName
	doc.CategoryIcon = info.Icon
}

// sign sets doc.SignedURL when the object exists and can be signed.
func (a *DocumentAdapter) sign(ctx context.Context, doc *domain.Document) {
	doc.SignedURL = nil
	if doc.FilePath == "" {
		return
	}

	exists, err := a.storage.Exists(ctx, a.cfg.Bucket, doc.FilePath)
	if err != nil {
		log.Printf("documentAdapter.sign: WARNING: checking %s: %v", doc.FilePath, err)
		metrics.RecordSignedURLFailure(string(a.cfg.Domain), "head_error")
		return
	}
	if !exists {
		log.Printf("documentAdapter.sign: WARNING: file not found in storage: %s", doc.FilePath)
		metrics.RecordSignedURLFailure(string(a.cfg.Domain), "missing")
		return
	}

	url, err := a.storage.GetPresignedURL(ctx, a.cfg.Bucket, doc.FilePath, a.cfg.PresignExpiry)
	if err != nil {
		log.Printf("documentAdapter.sign: WARNING: signing %s: %v", doc.FilePath, err)
		metrics.RecordSignedURLFailure(string(a.cfg.Domain), "sign_error")
		return
	}
	doc.SignedURL = &url
}

func docFilePath(doc *domain.Document) string {
	if doc == nil {
		return ""
	}
	return doc.FilePath
}
