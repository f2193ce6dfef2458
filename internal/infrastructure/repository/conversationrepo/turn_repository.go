package conversationrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/janhq/support-api/internal/domain/conversation"
	"github.com/janhq/support-api/internal/infrastructure/database/entities"
	"github.com/janhq/support-api/internal/utils/platformerrors"
)

// Repository stores turns in the chat_history table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts a single turn in its own implicit transaction.
func (r *Repository) Append(ctx context.Context, turn *conversation.Turn) error {
	entity := entities.NewSchemaChatHistory(turn)
	entity.ID = 0
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to store turn", err, "")
	}
	turn.ID = entity.ID
	turn.CreatedAt = entity.CreatedAt
	return nil
}

func (r *Repository) ListTurns(ctx context.Context, userID, conversationID string) ([]conversation.Turn, error) {
	var rows []entities.ChatHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to load conversation turns", err, "")
	}
	return toDomain(rows), nil
}

// latestIDsQuery picks the newest turn id per conversation for one user.
const latestIDsQuery = `
SELECT id FROM (
    SELECT id, created_at, ROW_NUMBER() OVER (
        PARTITION BY conversation_id ORDER BY created_at DESC, id DESC
    ) AS rn
    FROM chat_history
    WHERE user_id = ?
) ranked
WHERE rn = 1`

func (r *Repository) LatestTurns(ctx context.Context, userID string) ([]conversation.Turn, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Raw(latestIDsQuery, userID).Scan(&ids).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list conversations", err, "")
	}
	if len(ids) == 0 {
		return []conversation.Turn{}, nil
	}

	var rows []entities.ChatHistory
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list conversations", err, "")
	}
	return toDomain(rows), nil
}

func (r *Repository) ConversationOwner(ctx context.Context, conversationID string) (string, bool, error) {
	var row entities.ChatHistory
	err := r.db.WithContext(ctx).
		Select("user_id").
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to look up conversation owner", err, "")
	}
	return row.UserID, true, nil
}

func toDomain(rows []entities.ChatHistory) []conversation.Turn {
	turns := make([]conversation.Turn, 0, len(rows))
	for i := range rows {
		turns = append(turns, rows[i].EtoD())
	}
	return turns
}

var _ conversation.Repository = (*Repository)(nil)
