package postgres

import (
	"chat-aggregator/contract"
	"chat-aggregator/domain"
	chaterrors "chat-aggregator/errors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway implements every gateway on a relational schema.
// Conflicts are reported as nil entities, other failures are logged and returned unchanged.
type Gateway struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewGateway(db *gorm.DB, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (g *Gateway) CreateUser(ctx context.Context, props domain.UserProps) (*domain.User, error) {
	row := userModel{
		ID:          props.ID,
		Username:    props.Username,
		DisplayName: props.DisplayName,
		FirstName:   props.FirstName,
		LastName:    props.LastName,
		CreatedAt:   g.now(),
	}
	created, err := g.insert(ctx, &row)
	if err != nil {
		return nil, g.logError("create_user_failed", err, "user_id", props.ID, "username", props.Username)
	}
	if !created {
		return nil, nil
	}
	return row.toEntity(), nil
}

func (g *Gateway) CreateChannel(ctx context.Context, id, name string) (*domain.Channel, error) {
	now := g.now()
	row := channelModel{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	created, err := g.insert(ctx, &row)
	if err != nil {
		return nil, g.logError("create_channel_failed", err, "channel_id", id)
	}
	if !created {
		return nil, nil
	}
	return row.toEntity(), nil
}

func (g *Gateway) UpdateChannelByID(ctx context.Context, id, newName string) (*domain.Channel, error) {
	var row channelModel
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&channelModel{}).
			Where("id = ?", id).
			Updates(map[string]any{"name": newName, "updated_at": g.now()})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		return tx.Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		return nil, g.logError("update_channel_failed", err, "channel_id", id)
	}
	if row.ID == "" {
		return nil, nil
	}
	return row.toEntity(), nil
}

// DeleteChannelByID relies on ON DELETE CASCADE to drop the roster and the messages.
func (g *Gateway) DeleteChannelByID(ctx context.Context, id string) (int64, error) {
	res := g.db.WithContext(ctx).Where("id = ?", id).Delete(&channelModel{})
	if res.Error != nil {
		return 0, g.logError("delete_channel_failed", res.Error, "channel_id", id)
	}
	return res.RowsAffected, nil
}

func (g *Gateway) CreateMessage(ctx context.Context, id, channelID, senderID, content string) (*domain.Message, error) {
	now := g.now()
	row := messageModel{
		ID:        id,
		ChannelID: channelID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := g.insert(ctx, &row)
	if err != nil {
		return nil, g.logError("create_message_failed", err, "message_id", id, "channel_id", channelID)
	}
	if !created {
		return nil, nil
	}
	return row.toEntity(), nil
}

func (g *Gateway) EditMessage(ctx context.Context, id, channelID, content string) (*domain.Message, error) {
	var row messageModel
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&messageModel{}).
			Where("id = ? AND channel_id = ?", id, channelID).
			Updates(map[string]any{"content": content, "updated_at": g.now()})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		return tx.Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		return nil, g.logError("edit_message_failed", err, "message_id", id, "channel_id", channelID)
	}
	if row.ID == "" {
		return nil, nil
	}
	return row.toEntity(), nil
}

// DeleteMessage soft deletes the message.
func (g *Gateway) DeleteMessage(ctx context.Context, id string) (int64, error) {
	res := g.db.WithContext(ctx).Where("id = ?", id).Delete(&messageModel{})
	if res.Error != nil {
		return 0, g.logError("delete_message_failed", res.Error, "message_id", id)
	}
	return res.RowsAffected, nil
}

func (g *Gateway) AddUserToChannel(ctx context.Context, channelID, userID string) (*domain.Roster, error) {
	row := rosterModel{ChannelID: channelID, UserID: userID, JoinedAt: g.now()}
	created, err := g.insert(ctx, &row)
	if err != nil {
		return nil, g.logError("add_user_to_channel_failed", err, "channel_id", channelID, "user_id", userID)
	}
	if !created {
		return nil, nil
	}
	return row.toEntity(), nil
}

func (g *Gateway) DeleteUserFromChannel(ctx context.Context, channelID, userID string) (int64, error) {
	res := g.db.WithContext(ctx).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Delete(&rosterModel{})
	if res.Error != nil {
		return 0, g.logError("delete_user_from_channel_failed", res.Error, "channel_id", channelID, "user_id", userID)
	}
	return res.RowsAffected, nil
}

// insert reports false when a row with the same key already exists.
func (g *Gateway) insert(ctx context.Context, row any) (bool, error) {
	res := g.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// translate turns the constraint violations the gateways care about into their meaning.
func translate(err error) error {
	switch {
	case isUniqueViolation(err):
		return nil
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", chaterrors.ErrChannelNotFound, err)
	default:
		return err
	}
}

func (g *Gateway) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+6)
	fields = append(fields,
		"event", event,
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	g.logger.Error("postgres gateway operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

var (
	_ contract.MessageGateway = (*Gateway)(nil)
	_ contract.ChannelGateway = (*Gateway)(nil)
	_ contract.RosterGateway  = (*Gateway)(nil)
	_ contract.UserGateway    = (*Gateway)(nil)
)
