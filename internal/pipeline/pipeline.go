package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"rfpdesk/internal/analysis"
	"rfpdesk/internal/extract"
	"rfpdesk/internal/storage"
	"rfpdesk/internal/utils"
	"rfpdesk/pkg/types"

	"github.com/sirupsen/logrus"
)

// allowedFileTypes is the upload allow-list: the PDF document format plus
// the common image formats the OCR endpoint accepts.
var allowedFileTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/jpg":       true,
}

// Extractor produces text for a file; it reports soft failures in the
// Result, never as an error.
type Extractor interface {
	Extract(ctx context.Context, in extract.Input) extract.Result
}

// Analyzer turns text into a structured record, degrading to an empty
// record on failure.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (analysis.Record, error)
}

// DocumentStore is the slice of the document repository the pipeline needs.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *types.Document) error
}

// AnalysisStore persists analysis rows; the pipeline writes twice (interim
// raw text, then structured fields) and the last write wins.
type AnalysisStore interface {
	CreateAnalysis(ctx context.Context, analysis *types.DocumentAnalysis) error
	UpdateAnalysis(ctx context.Context, analysis *types.DocumentAnalysis) error
}

type Config struct {
	MaxUploadBytes int64
}

// Upload is one file handed to Run, bytes already read from the request.
type Upload struct {
	UserID   string
	FileName string
	FileType string
	Size     int64
	Data     []byte
}

// Pipeline sequences one document through storage, extraction, analysis,
// and persistence. One run owns a fresh document ID, so no mutual exclusion
// is needed across runs.
type Pipeline struct {
	cfg       Config
	objects   storage.ObjectStore
	documents DocumentStore
	analyses  AnalysisStore
	extractor Extractor
	analyzer  Analyzer
	logger    *logrus.Logger
}

func New(
	cfg Config,
	objects storage.ObjectStore,
	documents DocumentStore,
	analyses AnalysisStore,
	extractor Extractor,
	analyzer Analyzer,
	logger *logrus.Logger,
) *Pipeline {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 100 * 1024 * 1024
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{
		cfg:       cfg,
		objects:   objects,
		documents: documents,
		analyses:  analyses,
		extractor: extractor,
		analyzer:  analyzer,
		logger:    logger,
	}
}

// Validate applies the allow-list and size ceiling. It touches no network
// and is safe to call from a request handler before a run starts.
func (p *Pipeline) Validate(up Upload) error {
	if !allowedFileTypes[up.FileType] {
		return &ValidationError{Message: "Please upload a PDF or image file (PNG, JPG, JPEG)"}
	}
	if up.Size > p.cfg.MaxUploadBytes {
		return &ValidationError{Message: fmt.Sprintf("File size must be less than %dMB", p.cfg.MaxUploadBytes/(1024*1024))}
	}
	if up.Size <= 0 || len(up.Data) == 0 {
		return &ValidationError{Message: "The uploaded file is empty"}
	}
	return nil
}

// Run processes one upload to completion and returns the new document ID.
// Extraction and analysis failures degrade the stored record instead of
// failing the run; validation, storage, and persistence failures are
// terminal. Progress lands on exactly 100 only when the run completes.
func (p *Pipeline) Run(ctx context.Context, up Upload, progress func(int)) (string, error) {
	report := newReporter(progress)
	report(0)

	if err := p.Validate(up); err != nil {
		return "", err
	}

	// Upload stage: object storage first, then the document row. The run
	// never proceeds to extraction before the storage write succeeds.
	key := storageKey(up.UserID, up.FileName)
	report(10)

	if _, err := p.objects.Upload(ctx, key, bytes.NewReader(up.Data), up.FileType); err != nil {
		return "", &StorageError{Err: err}
	}
	report(25)

	doc := &types.Document{
		ID:       utils.NanoID(),
		UserID:   up.UserID,
		FileName: up.FileName,
		FilePath: key,
		FileSize: up.Size,
		FileType: up.FileType,
	}
	if err := p.documents.CreateDocument(ctx, doc); err != nil {
		return "", &PersistenceError{Err: err}
	}
	report(35)

	// Extraction stage: the selector always yields some text, possibly a
	// failure placeholder; the run continues regardless.
	res := p.extractor.Extract(ctx, extract.Input{
		FileName:   up.FileName,
		FileType:   up.FileType,
		Data:       up.Data,
		StorageURL: p.objects.PublicURL(key),
	})
	p.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"source":      res.Source,
		"chars":       len(res.Text),
		"pages":       res.Pages,
	}).Info("extraction finished")
	report(70)

	// Analysis stage, interim write first: raw text as the summary with
	// status pending so readers never have to infer state from nulls.
	record := &types.DocumentAnalysis{
		ID:         utils.NanoID(),
		DocumentID: doc.ID,
		UserID:     up.UserID,
		Summary:    utils.StringPtr(res.Text),
		Status:     types.AnalysisStatusPending,
	}
	if err := p.analyses.CreateAnalysis(ctx, record); err != nil {
		return "", &PersistenceError{Err: err}
	}
	report(75)

	rec, err := p.analyzer.Analyze(ctx, res.Text)
	if err != nil {
		p.logger.WithError(err).WithField("document_id", doc.ID).Warn("analysis degraded")
	}
	report(90)

	applyFields(record, rec, res)
	if err := p.analyses.UpdateAnalysis(ctx, record); err != nil {
		return "", &PersistenceError{Err: err}
	}

	report(100)
	return doc.ID, nil
}

// applyFields merges the analysis outcome into the interim record and
// settles its status.
func applyFields(record *types.DocumentAnalysis, rec analysis.Record, res extract.Result) {
	f := rec.Fields

	record.ProjectName = optional(f.ProjectName)
	record.Deadline = optional(f.Deadline)
	record.Budget = optional(f.Budget)
	record.Requirements = f.Requirements
	record.Stakeholders = f.Stakeholders
	record.EvaluationCriteria = f.EvaluationCriteria
	record.SubmissionInstructions = optional(f.SubmissionInstructions)
	record.ContactInformation = optional(f.ContactInformation)

	// Keep the model's summary when it wrote one; otherwise the raw
	// extracted text stays in place for audit.
	if f.Summary != "" {
		record.Summary = utils.StringPtr(f.Summary)
	}

	switch {
	case rec.Failed() || f.Empty():
		record.Status = types.AnalysisStatusFailed
	case res.Failed(), f.ProjectName == "", len(f.Requirements) == 0:
		record.Status = types.AnalysisStatusPartial
	default:
		record.Status = types.AnalysisStatusComplete
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return utils.StringPtr(s)
}

// storageKey namespaces objects by owner with a collision-resistant suffix.
func storageKey(userID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("%s/%d_%s%s", userID, time.Now().UnixNano(), utils.NanoIDSize(12), ext)
}

// newReporter wraps the caller's progress callback with a monotonic guard:
// within one run, reported values never decrease.
func newReporter(progress func(int)) func(int) {
	last := -1
	return func(p int) {
		if progress == nil {
			return
		}
		if p <= last {
			return
		}
		last = p
		progress(p)
	}
}
