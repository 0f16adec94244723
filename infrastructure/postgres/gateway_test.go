package postgres

import (
	chaterrors "chat-aggregator/errors"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	timeout := errors.New("i/o timeout")
	tests := []struct {
		name    string
		err     error
		wantNil bool
		wantIs  error
	}{
		{
			name:    "unique violation means already there",
			err:     fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"}),
			wantNil: true,
		},
		{
			name:   "foreign key violation means missing channel",
			err:    &pgconn.PgError{Code: "23503", ConstraintName: "fk_messages_channel"},
			wantIs: chaterrors.ErrChannelNotFound,
		},
		{
			name:   "anything else is passed through",
			err:    timeout,
			wantIs: timeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			err := translate(tt.err)

			if tt.wantNil {
				req.NoError(err)
				return
			}
			req.ErrorIs(err, tt.wantIs)
		})
	}
}

func TestModelsToEntities(t *testing.T) {
	req := require.New(t)
	paris := time.FixedZone("CET", 3600)
	at := time.Date(2026, 3, 14, 16, 9, 26, 0, paris)

	user := userModel{ID: "u1", Username: "alice", DisplayName: "Alice", LastName: lo.ToPtr("Liddell"), CreatedAt: at}.toEntity()
	req.Equal("alice", user.Username)
	req.Equal(lo.ToPtr("Liddell"), user.LastName)
	req.Nil(user.FirstName)
	req.Equal(time.UTC, user.CreatedAt.Location())
	req.True(at.Equal(user.CreatedAt))

	message := messageModel{ID: "m1", ChannelID: "c1", SenderID: "u1", Content: "hi", DeletedAt: gorm.DeletedAt{}}.toEntity()
	req.Equal("c1", message.ChannelID)

	roster := rosterModel{ChannelID: "c1", UserID: "u1", JoinedAt: at}.toEntity()
	req.Equal("u1", roster.UserID)
}

func TestConnect_RequiresDSN(t *testing.T) {
	req := require.New(t)

	_, err := Connect("")

	req.EqualError(err, "postgres dsn is required")
}

func TestTableNames(t *testing.T) {
	req := require.New(t)

	req.Equal("users", userModel{}.TableName())
	req.Equal("channels", channelModel{}.TableName())
	req.Equal("messages", messageModel{}.TableName())
	req.Equal("rosters", rosterModel{}.TableName())
}
