package store

import (
	"context"
	"fmt"
	"time"

	"rfpdesk/internal/utils"
	"rfpdesk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentTableName = "rfpdesk.documents"

var documentColumns = utils.StructTagValues(types.Document{})

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) Document(ctx context.Context, id string) (*types.Document, error) {

	query, args, err := psql().Select(documentColumns...).From(documentTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var doc = new(types.Document)
	err = pgxscan.Get(ctx, r.pool, doc, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrDocumentNotFound
	}

	return doc, nil
}

// DocumentForUser scopes the lookup to the owning user so one user can never
// open another user's document by guessing an ID.
func (r *DocumentRepository) DocumentForUser(ctx context.Context, id, userID string) (*types.Document, error) {

	query, args, err := psql().Select(documentColumns...).From(documentTableName).
		Where(sq.Eq{"id": id, "user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var doc = new(types.Document)
	err = pgxscan.Get(ctx, r.pool, doc, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrDocumentNotFound
	}

	return doc, nil
}

func (r *DocumentRepository) DocumentsByUser(ctx context.Context, userID string) ([]*types.Document, error) {

	query, args, err := psql().Select(documentColumns...).From(documentTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate documents query: %w", err)
	}

	var docs = make([]*types.Document, 0)
	err = pgxscan.Select(ctx, r.pool, &docs, query, args...)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *types.Document) error {

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	query, args, err := psql().
		Insert(documentTableName).
		Columns(documentColumns...).
		Values(
			doc.ID,
			doc.UserID,
			doc.FileName,
			doc.FilePath,
			doc.FileSize,
			doc.FileType,
			doc.CreatedAt,
			doc.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate document insert: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

func (r *DocumentRepository) UpdateDocument(ctx context.Context, doc *types.Document) error {

	doc.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(documentTableName).
		SetMap(utils.StructToMap(doc)).
		Where(sq.Eq{"id": doc.ID, "user_id": doc.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate document update: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

func (r *DocumentRepository) DeleteDocument(ctx context.Context, id, userID string) error {

	query, args, err := psql().
		Delete(documentTableName).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate document delete: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}
