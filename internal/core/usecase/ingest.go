package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

type IngestDocumentUseCase struct {
	docs    ports.DocumentStore
	storage ports.FileStorage
	ai      ports.AIInvoker
	cache   ports.QueryCache
	policy  domain.UploadFailurePolicy
	now     func() time.Time
}

func NewIngestDocumentUseCase(
	docs ports.DocumentStore,
	storage ports.FileStorage,
	ai ports.AIInvoker,
	cache ports.QueryCache,
	policy domain.UploadFailurePolicy,
) *IngestDocumentUseCase {
	if policy == "" {
		policy = domain.UploadFailureAbort
	}
	return &IngestDocumentUseCase{
		docs:    docs,
		storage: storage,
		ai:      ai,
		cache:   cache,
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// UploadBatch runs every file through upload and analysis, one file at a time.
// Analysis failures degrade to a Needs Review record; upload failures abort the
// rest of the batch unless the isolate policy is configured.
func (uc *IngestDocumentUseCase) UploadBatch(
	ctx context.Context,
	user domain.User,
	files []domain.UploadFile,
) (*domain.BatchResult, error) {
	result := &domain.BatchResult{
		Documents: []domain.Document{},
		Files:     make([]domain.FileResult, 0, len(files)),
	}
	if len(files) == 0 {
		result.OK = true
		return result, nil
	}
	defer invalidate(ctx, uc.cache, user.ID, domain.QueryRecentDocuments, domain.QueryAllDocuments)

	var batchErr error
	for idx, file := range files {
		doc, err := uc.ingestFile(ctx, user, file)
		if err != nil {
			uploadFailed := domain.IsKind(err, domain.ErrUploadFailed)
			outcome := domain.OutcomeFailed
			if uploadFailed {
				outcome = domain.OutcomeUploadFailed
			}
			result.Files = append(result.Files, domain.FileResult{Name: file.Name, Outcome: outcome, Error: err.Error()})
			batchErr = errors.Join(batchErr, err)
			slog.Error("ingest_file_failed", "owner_id", user.ID, "file", file.Name, "error", err)
			if uc.policy == domain.UploadFailureAbort || !uploadFailed {
				for _, skipped := range files[idx+1:] {
					result.Files = append(result.Files, domain.FileResult{Name: skipped.Name, Outcome: domain.OutcomeSkipped})
				}
				return result, batchErr
			}
			continue
		}

		outcome := domain.OutcomeReady
		if doc.Status == domain.DocumentStatusNeedsReview {
			outcome = domain.OutcomeNeedsReview
		}
		result.Documents = append(result.Documents, *doc)
		result.Files = append(result.Files, domain.FileResult{Name: file.Name, Outcome: outcome, DocumentID: doc.ID})
	}

	result.OK = batchErr == nil
	return result, batchErr
}

func (uc *IngestDocumentUseCase) ingestFile(ctx context.Context, user domain.User, file domain.UploadFile) (*domain.Document, error) {
	stored, err := uc.upload(ctx, file)
	if err != nil {
		return nil, err
	}

	analysis, err := uc.analyze(ctx, stored.URL, file.Name)
	if err != nil {
		slog.Warn("ingest_file_degraded",
			"owner_id", user.ID,
			"file", file.Name,
			"error", err,
		)
		return uc.persist(ctx, uc.degradedDocument(user, file.Name, stored.URL))
	}
	return uc.persist(ctx, uc.readyDocument(user, file.Name, stored.URL, analysis.Resolve()))
}

func (uc *IngestDocumentUseCase) upload(ctx context.Context, file domain.UploadFile) (domain.StoredFile, error) {
	if file.Body == nil {
		return domain.StoredFile{}, domain.WrapError(domain.ErrUploadFailed, "upload "+file.Name, errors.New("empty file body"))
	}
	stored, err := uc.storage.Upload(ctx, file.Name, file.ContentType, file.Body)
	if err != nil {
		return domain.StoredFile{}, domain.WrapError(domain.ErrUploadFailed, "upload "+file.Name, err)
	}
	if strings.TrimSpace(stored.URL) == "" {
		return domain.StoredFile{}, domain.WrapError(domain.ErrUploadFailed, "upload "+file.Name, errors.New("storage returned no file url"))
	}
	return stored, nil
}

func (uc *IngestDocumentUseCase) analyze(ctx context.Context, fileURL, fileName string) (domain.DocumentAnalysis, error) {
	raw, err := uc.ai.InvokeStructured(ctx, domain.AIRequest{
		Prompt:         buildAnalysisPrompt(fileName),
		FileURLs:       []string{fileURL},
		ResponseSchema: domain.DocumentAnalysisSchema(),
	})
	if err != nil {
		return domain.DocumentAnalysis{}, domain.WrapError(domain.ErrAnalysisFailed, "invoke analysis", err)
	}
	return domain.ParseDocumentAnalysis(raw)
}

func (uc *IngestDocumentUseCase) readyDocument(user domain.User, name, fileURL string, a domain.ResolvedAnalysis) *domain.Document {
	status := a.ComplianceStatus
	return &domain.Document{
		ID:               uuid.NewString(),
		OwnerID:          user.ID,
		Name:             name,
		Type:             a.DocumentType,
		Category:         a.Category,
		FileURL:          fileURL,
		ExtractedFields:  domain.StringPtr(a.ExtractedFields),
		ComplianceStatus: &status,
		ExpiryDate:       domain.StringPtr(a.ExpiryDate),
		AINotes:          domain.StringPtr(a.AINotes),
		Status:           domain.DocumentStatusReady,
		CreatedAt:        uc.now(),
	}
}

func (uc *IngestDocumentUseCase) degradedDocument(user domain.User, name, fileURL string) *domain.Document {
	return &domain.Document{
		ID:        uuid.NewString(),
		OwnerID:   user.ID,
		Name:      name,
		Type:      domain.UnknownDocumentType,
		Category:  domain.Uncategorized,
		FileURL:   fileURL,
		Status:    domain.DocumentStatusNeedsReview,
		CreatedAt: uc.now(),
	}
}

func (uc *IngestDocumentUseCase) persist(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document %s: %w", doc.Name, err)
	}
	return doc, nil
}
