package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/index"
	"github.com/recruvia/cv-insight/internal/model"
	"github.com/recruvia/cv-insight/internal/rag"
	"github.com/recruvia/cv-insight/internal/util"
	"go.uber.org/zap"
)

// CVStore is the slice of the CV repository the orchestrator needs.
type CVStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.CV, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, processingError string) error
	UpsertSummary(ctx context.Context, summary *model.CVSummary) error
}

// CVSummarizer turns full CV text into a structured summary.
type CVSummarizer interface {
	Summarize(ctx context.Context, cvText string) (*rag.CVSummary, error)
}

// ExtractFunc extracts (full text, ordered page texts) from a stored file.
type ExtractFunc func(path string) (string, []string, error)

// IngestionUsecase owns the CV processing lifecycle:
// unprocessed → processing → processed | failed. It is the only writer of a
// CV's status, and each failure is recorded on the CV rather than leaving it
// stuck in processing.
type IngestionUsecase struct {
	cvs        CVStore
	store      index.Store
	summarizer CVSummarizer
	extract    ExtractFunc
	logger     *zap.Logger

	ChunkSize    int
	ChunkOverlap int

	// Advisory guard against concurrent ingestion of the same CV id.
	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

func NewIngestionUsecase(cvs CVStore, store index.Store, summarizer CVSummarizer, logger *zap.Logger) *IngestionUsecase {
	return &IngestionUsecase{
		cvs:          cvs,
		store:        store,
		summarizer:   summarizer,
		extract:      util.ExtractPDFText,
		logger:       logger,
		ChunkSize:    rag.DefaultChunkSize,
		ChunkOverlap: rag.DefaultChunkOverlap,
		inflight:     make(map[uuid.UUID]struct{}),
	}
}

// SetExtractor overrides the extraction function. Used by tests and callers
// with alternative document sources.
func (uc *IngestionUsecase) SetExtractor(extract ExtractFunc) {
	uc.extract = extract
}

// Ingest extracts, chunks and indexes a CV's raw text without generating a
// summary. Existing index entries for the id are purged first, so re-running
// is idempotent.
func (uc *IngestionUsecase) Ingest(ctx context.Context, cvID uuid.UUID) error {
	return uc.run(ctx, cvID, false)
}

// IngestAndSummarize runs the full pipeline: extract, chunk, index, generate
// the structured summary, persist it, and index its human-readable rendering
// as the CV's single summary document.
func (uc *IngestionUsecase) IngestAndSummarize(ctx context.Context, cvID uuid.UUID) error {
	return uc.run(ctx, cvID, true)
}

// PurgeIndex removes every indexed document for a CV. It must complete before
// the CV row itself is deleted; index entries never outlive the CV record.
func (uc *IngestionUsecase) PurgeIndex(ctx context.Context, cvID uuid.UUID) error {
	if err := uc.store.DeleteByCV(ctx, cvID.String()); err != nil {
		return fmt.Errorf("purge index for CV %s: %w", cvID, err)
	}
	uc.logger.Info("purged index entries", zap.String("cv_id", cvID.String()))
	return nil
}

func (uc *IngestionUsecase) run(ctx context.Context, cvID uuid.UUID, summarize bool) error {
	if !uc.acquire(cvID) {
		return fmt.Errorf("CV %s is already being ingested", cvID)
	}
	defer uc.release(cvID)

	cv, err := uc.cvs.FindByID(ctx, cvID)
	if err != nil {
		return fmt.Errorf("CV %s not found: %w", cvID, err)
	}

	uc.logger.Info("starting ingestion",
		zap.String("cv_id", cvID.String()), zap.String("filename", cv.Filename))

	if err := uc.cvs.UpdateStatus(ctx, cvID, model.CVStatusProcessing, ""); err != nil {
		return fmt.Errorf("mark CV %s processing: %w", cvID, err)
	}

	// Purge-then-rebuild keeps re-ingestion free of stale or duplicate
	// entries.
	if err := uc.store.DeleteByCV(ctx, cvID.String()); err != nil {
		return uc.fail(ctx, cvID, err)
	}

	fullText, pages, err := uc.extract(cv.StoredPath)
	if err != nil {
		return uc.fail(ctx, cvID, err)
	}

	chunks, err := rag.ChunkPages(pages, uc.ChunkSize, uc.ChunkOverlap)
	if err != nil {
		return uc.fail(ctx, cvID, err)
	}
	if len(chunks) == 0 {
		return uc.fail(ctx, cvID, fmt.Errorf("no extractable text"))
	}

	docs := make([]index.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = index.Document{
			ID:      uuid.NewString(),
			Content: chunk.Text,
			Meta: index.Metadata{
				CVID:        cvID.String(),
				Type:        index.TypeChunk,
				Filename:    cv.Filename,
				Page:        chunk.Page,
				StartOffset: chunk.StartOffset,
			},
		}
	}
	if err := uc.store.Add(ctx, docs); err != nil {
		return uc.fail(ctx, cvID, err)
	}
	uc.logger.Info("indexed chunks",
		zap.String("cv_id", cvID.String()), zap.Int("chunks", len(chunks)))

	if summarize {
		if err := uc.summarizeAndIndex(ctx, cv, fullText); err != nil {
			// Chunks are already indexed and stay searchable; the CV
			// itself is failed.
			return uc.fail(ctx, cvID, err)
		}
	}

	if err := uc.cvs.UpdateStatus(ctx, cvID, model.CVStatusProcessed, ""); err != nil {
		return fmt.Errorf("mark CV %s processed: %w", cvID, err)
	}
	uc.logger.Info("ingestion complete", zap.String("cv_id", cvID.String()))
	return nil
}

func (uc *IngestionUsecase) summarizeAndIndex(ctx context.Context, cv *model.CV, fullText string) error {
	summary, err := uc.summarizer.Summarize(ctx, fullText)
	if err != nil {
		return err
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	record := &model.CVSummary{
		CVID:            cv.ID,
		CandidateName:   summary.Name,
		CurrentTitle:    summary.CurrentTitle,
		YearsExperience: summary.YearsExperience,
		SummaryJSON:     string(summaryJSON),
	}
	if err := uc.cvs.UpsertSummary(ctx, record); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}

	years := 0.0
	if summary.YearsExperience != nil {
		years = *summary.YearsExperience
	}
	candidateName := summary.Name
	if candidateName == "" {
		candidateName = "Unknown"
	}

	summaryDoc := index.Document{
		ID:      uuid.NewString(),
		Content: rag.FormatSummaryText(summary, cv.Filename),
		Meta: index.Metadata{
			CVID:            cv.ID.String(),
			Type:            index.TypeSummary,
			Filename:        cv.Filename,
			CandidateName:   candidateName,
			YearsExperience: years,
		},
	}
	if err := uc.store.Add(ctx, []index.Document{summaryDoc}); err != nil {
		return err
	}

	uc.logger.Info("indexed summary document",
		zap.String("cv_id", cv.ID.String()), zap.String("candidate", candidateName))
	return nil
}

// fail records the error on the CV and marks it failed. Failures never leave
// a CV stuck in processing and never abort other CVs' ingestion.
func (uc *IngestionUsecase) fail(ctx context.Context, cvID uuid.UUID, cause error) error {
	uc.logger.Error("ingestion failed",
		zap.String("cv_id", cvID.String()), zap.Error(cause))
	if err := uc.cvs.UpdateStatus(ctx, cvID, model.CVStatusFailed, cause.Error()); err != nil {
		uc.logger.Error("failed to record ingestion error",
			zap.String("cv_id", cvID.String()), zap.Error(err))
	}
	return cause
}

func (uc *IngestionUsecase) acquire(cvID uuid.UUID) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, busy := uc.inflight[cvID]; busy {
		return false
	}
	uc.inflight[cvID] = struct{}{}
	return true
}

func (uc *IngestionUsecase) release(cvID uuid.UUID) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inflight, cvID)
}
