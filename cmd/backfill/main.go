// Command backfill creates document rows for objects that exist in the KYC and
// financial buckets but have no row, e.g. files uploaded before the tables
// existed. Rows are created as pending; existing rows are never touched.
// Usage: go run ./cmd/backfill [-dry-run]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"

	"clientportal/internal/catalog"
	"clientportal/internal/config"
	"clientportal/internal/docname"
	"clientportal/internal/domain"
	"clientportal/internal/port"
	"clientportal/internal/repository/postgres"
	s3storage "clientportal/internal/storage/s3"
)

// placeholderName marks an empty folder in the bucket; it is not a document.
const placeholderName = ".emptyFolderPlaceholder"

type backfiller struct {
	storage   port.ObjectStorage
	parser    *docname.Parser
	catalog   *catalog.Catalog
	kyc       port.KYCDocumentRepository
	financial port.DocumentRepository
	dryRun    bool
}

type counts struct {
	scanned, created, skipped int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dryRun := flag.Bool("dry-run", false, "report what would be created without writing rows")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	storage, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("initializing S3 client: %w", err)
	}

	cat := catalog.Default()
	b := &backfiller{
		storage:   storage,
		parser:    docname.NewParser(cat, docname.DefaultRules),
		catalog:   cat,
		kyc:       postgres.NewKYCDocumentRepo(db),
		financial: postgres.NewFinancialDocumentRepo(db),
		dryRun:    *dryRun,
	}

	ctx := context.Background()

	kycCounts, err := b.backfillKYC(ctx, cfg.S3.KYCBucket)
	if err != nil {
		return err
	}
	log.Printf("KYC: scanned=%d created=%d skipped=%d", kycCounts.scanned, kycCounts.created, kycCounts.skipped)

	finCounts, err := b.backfillFinancial(ctx, cfg.S3.FinancialBucket)
	if err != nil {
		return err
	}
	log.Printf("Financial: scanned=%d created=%d skipped=%d", finCounts.scanned, finCounts.created, finCounts.skipped)

	if b.dryRun {
		log.Println("Dry run: no rows were written")
	}
	return nil
}

// backfillKYC handles keys of the form {owner}/{slot}/{objectName}. Only the
// newest object of a slot is considered, and a slot that already has a row
// is left alone whatever file it points at.
func (b *backfiller) backfillKYC(ctx context.Context, bucket string) (counts, error) {
	var n counts
	objects, err := b.storage.List(ctx, bucket, "")
	if err != nil {
		return n, fmt.Errorf("listing %s: %w", bucket, err)
	}

	type slotKey struct {
		owner uuid.UUID
		slot  string
	}
	newest := make(map[slotKey]port.ObjectInfo)
	var order []slotKey
	for _, obj := range objects {
		n.scanned++
		if isPlaceholder(obj.Key) {
			n.skipped++
			continue
		}
		parts := strings.Split(obj.Key, "/")
		if len(parts) != 3 {
			n.skipped++
			continue
		}
		ownerID, err := uuid.Parse(parts[0])
		if err != nil || !b.catalog.IsKYCSlot(parts[1]) {
			log.Printf("WARNING: skipping unrecognized KYC key %q", obj.Key)
			n.skipped++
			continue
		}
		k := slotKey{owner: ownerID, slot: parts[1]}
		cur, seen := newest[k]
		switch {
		case !seen:
			order = append(order, k)
			newest[k] = obj
		case obj.LastModified.After(cur.LastModified):
			newest[k] = obj
			n.skipped++
		default:
			n.skipped++
		}
	}

	for _, k := range order {
		_, err := b.kyc.GetBySlot(ctx, k.owner, k.slot)
		if err == nil {
			n.skipped++
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return n, fmt.Errorf("looking up slot %s for %s: %w", k.slot, k.owner, err)
		}

		obj := newest[k]
		_, objectName := docname.SplitPath(obj.Key)
		doc := &domain.Document{
			OwnerID:     k.owner,
			DocType:     k.slot,
			FilePath:    obj.Key,
			FileName:    docname.StripTimestamp(objectName),
			FileSize:    obj.Size,
			ContentType: contentTypeFor(objectName),
			UploadDate:  obj.LastModified,
		}
		if err := b.save(ctx, b.kyc, doc); err != nil {
			return n, err
		}
		n.created++
	}
	return n, nil
}

// backfillFinancial handles keys of the form {owner}/{year}/{type}/{objectName}.
// The type is taken from object metadata when present, then from the type
// folder, and only then inferred from the name.
func (b *backfiller) backfillFinancial(ctx context.Context, bucket string) (counts, error) {
	var n counts
	objects, err := b.storage.List(ctx, bucket, "")
	if err != nil {
		return n, fmt.Errorf("listing %s: %w", bucket, err)
	}

	known := make(map[uuid.UUID]map[string]bool)
	for _, obj := range objects {
		n.scanned++
		if isPlaceholder(obj.Key) {
			n.skipped++
			continue
		}
		parts := strings.Split(obj.Key, "/")
		if len(parts) < 3 {
			n.skipped++
			continue
		}
		ownerID, err := uuid.Parse(parts[0])
		if err != nil {
			log.Printf("WARNING: skipping unrecognized financial key %q", obj.Key)
			n.skipped++
			continue
		}

		paths, ok := known[ownerID]
		if !ok {
			paths, err = b.ownerPaths(ctx, ownerID)
			if err != nil {
				return n, err
			}
			known[ownerID] = paths
		}
		if paths[obj.Key] {
			n.skipped++
			continue
		}

		meta := docname.Metadata{}
		if info, err := b.storage.Head(ctx, bucket, obj.Key); err == nil {
			meta = docname.MetadataFromMap(info.Metadata)
		} else {
			log.Printf("WARNING: head %s failed, classifying by name: %v", obj.Key, err)
		}
		res := b.parser.Parse(obj.Key, meta)
		if meta.DocumentType == "" {
			if docType, ok := b.folderType(parts[len(parts)-2]); ok {
				res.DocType = docType
				res.Category = b.catalog.CategoryForType(docType)
			}
		}

		_, objectName := docname.SplitPath(obj.Key)
		doc := &domain.Document{
			OwnerID:     ownerID,
			DocType:     res.DocType,
			Category:    res.Category,
			Year:        yearOf(parts),
			FilePath:    obj.Key,
			FileName:    res.DisplayName,
			FileSize:    obj.Size,
			ContentType: contentTypeFor(objectName),
			UploadDate:  obj.LastModified,
		}
		if err := b.save(ctx, b.financial, doc); err != nil {
			return n, err
		}
		paths[obj.Key] = true
		n.created++
	}
	return n, nil
}

func (b *backfiller) ownerPaths(ctx context.Context, ownerID uuid.UUID) (map[string]bool, error) {
	docs, err := b.financial.List(ctx, ownerID, domain.DocumentFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing financial rows for %s: %w", ownerID, err)
	}
	paths := make(map[string]bool, len(docs))
	for i := range docs {
		paths[docs[i].FilePath] = true
	}
	return paths, nil
}

func (b *backfiller) save(ctx context.Context, repo port.DocumentRepository, doc *domain.Document) error {
	if b.dryRun {
		log.Printf("would create %s row for %s (%s)", doc.DocType, doc.OwnerID, doc.FilePath)
		return nil
	}
	if err := repo.Save(ctx, doc); err != nil {
		return fmt.Errorf("saving row for %s: %w", doc.FilePath, err)
	}
	return nil
}

// folderType resolves a type folder such as "Balance_Sheet" or
// "GST-VAT_Return" to its catalog label.
func (b *backfiller) folderType(segment string) (string, bool) {
	if docType, ok := b.catalog.CanonicalType(segment); ok {
		return docType, true
	}
	for _, t := range b.catalog.AllTypes() {
		if strings.EqualFold(docname.PathSegment(t), docname.PathSegment(segment)) {
			return t, true
		}
	}
	return "", false
}

func isPlaceholder(key string) bool {
	return path.Base(key) == placeholderName
}

// yearOf returns the year segment of a financial key, or "" for keys
// written without one.
func yearOf(parts []string) string {
	if len(parts) >= 4 && len(parts[1]) == 4 {
		return parts[1]
	}
	return ""
}

func contentTypeFor(name string) string {
	return domain.ContentTypeFor(strings.TrimPrefix(path.Ext(name), "."))
}
