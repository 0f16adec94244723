package postgres

import (
	"chat-aggregator/domain"
	"time"

	"gorm.io/gorm"
)

type userModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Username    string    `gorm:"column:username;uniqueIndex;not null"`
	DisplayName string    `gorm:"column:display_name;not null"`
	FirstName   *string   `gorm:"column:first_name"`
	LastName    *string   `gorm:"column:last_name"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (userModel) TableName() string {
	return "users"
}

type channelModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (channelModel) TableName() string {
	return "channels"
}

// messageModel is soft deleted, so a deleted id stays taken.
type messageModel struct {
	ID        string         `gorm:"column:id;primaryKey"`
	ChannelID string         `gorm:"column:channel_id;index;not null"`
	SenderID  string         `gorm:"column:sender_id;not null"`
	Content   string         `gorm:"column:content;not null"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
	Channel   *channelModel  `gorm:"foreignKey:ChannelID;references:ID;constraint:OnDelete:CASCADE"`
}

func (messageModel) TableName() string {
	return "messages"
}

type rosterModel struct {
	ChannelID string        `gorm:"column:channel_id;primaryKey"`
	UserID    string        `gorm:"column:user_id;primaryKey"`
	JoinedAt  time.Time     `gorm:"column:joined_at"`
	Channel   *channelModel `gorm:"foreignKey:ChannelID;references:ID;constraint:OnDelete:CASCADE"`
}

func (rosterModel) TableName() string {
	return "rosters"
}

func (m userModel) toEntity() *domain.User {
	return &domain.User{
		ID:          m.ID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func (m channelModel) toEntity() *domain.Channel {
	return &domain.Channel{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func (m messageModel) toEntity() *domain.Message {
	return &domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func (m rosterModel) toEntity() *domain.Roster {
	return &domain.Roster{
		ChannelID: m.ChannelID,
		UserID:    m.UserID,
		JoinedAt:  m.JoinedAt.UTC(),
	}
}
