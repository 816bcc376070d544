package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rfpdesk/internal/utils"
	"rfpdesk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const analysisTableName = "rfpdesk.document_analyses"

var analysisColumns = utils.StructTagValues(types.DocumentAnalysis{})

type AnalysisRepository struct {
	pool *pgxpool.Pool
}

func NewAnalysisRepository(pool *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{pool: pool}
}

// AnalysisByDocumentID returns the first analysis for a document. The schema
// allows more than one row per document; callers take the oldest.
func (r *AnalysisRepository) AnalysisByDocumentID(ctx context.Context, documentID string) (*types.DocumentAnalysis, error) {

	query, args, err := psql().Select(analysisColumns...).From(analysisTableName).
		Where(sq.Eq{"document_id": documentID}).
		OrderBy("created_at asc").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate analysis query: %w", err)
	}

	var analysis = new(types.DocumentAnalysis)
	err = pgxscan.Get(ctx, r.pool, analysis, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrAnalysisNotFound
	}

	return analysis, nil
}

func (r *AnalysisRepository) CreateAnalysis(ctx context.Context, analysis *types.DocumentAnalysis) error {

	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now()
	}
	if analysis.Status == "" {
		analysis.Status = types.AnalysisStatusPending
	}

	query, args, err := psql().
		Insert(analysisTableName).
		Columns(analysisColumns...).
		Values(
			analysis.ID,
			analysis.DocumentID,
			analysis.UserID,
			analysis.ProjectName,
			analysis.Deadline,
			analysis.Budget,
			analysis.Summary,
			jsonbList(analysis.Requirements),
			jsonbList(analysis.Stakeholders),
			jsonbList(analysis.EvaluationCriteria),
			analysis.SubmissionInstructions,
			analysis.ContactInformation,
			analysis.Status,
			analysis.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate analysis insert: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

// UpdateAnalysis overwrites the structured fields of an existing row. This
// is the second half of the two-phase write; the last write wins.
func (r *AnalysisRepository) UpdateAnalysis(ctx context.Context, analysis *types.DocumentAnalysis) error {

	query, args, err := psql().
		Update(analysisTableName).
		SetMap(map[string]any{
			"project_name":            analysis.ProjectName,
			"deadline":                analysis.Deadline,
			"budget":                  analysis.Budget,
			"summary":                 analysis.Summary,
			"requirements":            jsonbList(analysis.Requirements),
			"stakeholders":            jsonbList(analysis.Stakeholders),
			"evaluation_criteria":     jsonbList(analysis.EvaluationCriteria),
			"submission_instructions": analysis.SubmissionInstructions,
			"contact_information":     analysis.ContactInformation,
			"status":                  analysis.Status,
		}).
		Where(sq.Eq{"id": analysis.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate analysis update: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

func (r *AnalysisRepository) DeleteAnalysesByDocumentID(ctx context.Context, documentID string) error {

	query, args, err := psql().
		Delete(analysisTableName).
		Where(sq.Eq{"document_id": documentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate analysis delete: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

// jsonbList encodes a string list for a jsonb column. A nil slice is stored
// as an empty json array so reads never have to deal with SQL NULL.
func jsonbList(values []string) []byte {
	if values == nil {
		return []byte("[]")
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return []byte("[]")
	}
	return raw
}
