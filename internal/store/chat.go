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

const chatTableName = "rfpdesk.document_chats"

var chatColumns = utils.StructTagValues(types.ChatMessage{})

type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

func (r *ChatRepository) MessagesByDocumentID(ctx context.Context, documentID string) ([]*types.ChatMessage, error) {

	query, args, err := psql().Select(chatColumns...).From(chatTableName).
		Where(sq.Eq{"document_id": documentID}).
		OrderBy("created_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chat query: %w", err)
	}

	var messages = make([]*types.ChatMessage, 0)
	err = pgxscan.Select(ctx, r.pool, &messages, query, args...)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *ChatRepository) CreateMessage(ctx context.Context, message *types.ChatMessage) error {

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	query, args, err := psql().
		Insert(chatTableName).
		Columns(chatColumns...).
		Values(
			message.ID,
			message.DocumentID,
			message.UserID,
			message.Message,
			message.IsUser,
			message.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate chat insert: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

func (r *ChatRepository) DeleteMessagesByDocumentID(ctx context.Context, documentID string) error {

	query, args, err := psql().
		Delete(chatTableName).
		Where(sq.Eq{"document_id": documentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate chat delete: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}
