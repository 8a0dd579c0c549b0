package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"

	"trading-relay/internal/domain"
)

// ExchangeRepository persiste el log de auditoría; no se lee para armar contexto.
type ExchangeRepository interface {
	Create(ctx context.Context, exchange domain.Exchange) error
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PgExchangeRepository struct {
	db execer
}

// NewPgExchangeRepository acepta un *pgxpool.Pool o cualquier cosa con Exec.
func NewPgExchangeRepository(db execer) *PgExchangeRepository {
	return &PgExchangeRepository{db: db}
}

func (r *PgExchangeRepository) Create(ctx context.Context, exchange domain.Exchange) error {
	const query = `
		INSERT INTO exchanges (id, connection_id, conversation_id, model, input_tokens, output_tokens, finish_reason, status, error, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var conversationID interface{}
	if exchange.ConversationID != "" {
		conversationID = exchange.ConversationID
	}
	var errText interface{}
	if exchange.Error != "" {
		errText = exchange.Error
	}

	_, err := r.db.Exec(ctx, query,
		exchange.ID,
		exchange.ConnectionID,
		conversationID,
		exchange.Model,
		exchange.InputTokens,
		exchange.OutputTokens,
		exchange.FinishReason,
		exchange.Status,
		errText,
		exchange.LatencyMS,
		exchange.CreatedAt,
	)
	return err
}
