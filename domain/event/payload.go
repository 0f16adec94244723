package event

// Sender identifies the user who triggered an event.
type Sender struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name,omitempty"`
}

type MessageCreatedPayload struct {
	MessageID string `json:"messageId" validate:"required"`
	ChannelID string `json:"channelId" validate:"required"`
	Sender    Sender `json:"sender"`
	Content   string `json:"content" validate:"required"`
}

type MessageDeletedPayload struct {
	MessageID string `json:"messageId" validate:"required"`
	ChannelID string `json:"channelId" validate:"required"`
	Sender    Sender `json:"sender"`
}

type MessageUpdatedPayload struct {
	MessageID string `json:"messageId" validate:"required"`
	ChannelID string `json:"channelId" validate:"required"`
	Sender    Sender `json:"sender"`
	Content   string `json:"content" validate:"required"`
}

// ChannelCreatedPayload may carry an empty MemberIDs list, the sender always joins.
type ChannelCreatedPayload struct {
	ChannelID   string   `json:"channelId" validate:"required"`
	ChannelName string   `json:"channelName" validate:"required"`
	Sender      Sender   `json:"sender"`
	MemberIDs   []string `json:"memberIds" validate:"dive,required"`
}

type ChannelUpdatedPayload struct {
	ChannelID      string `json:"channelId" validate:"required"`
	NewChannelName string `json:"newChannelName" validate:"required"`
	Sender         Sender `json:"sender"`
}

type ChannelDeletedPayload struct {
	ChannelID string `json:"channelId" validate:"required"`
	Sender    Sender `json:"sender"`
}

// MembersPayload is shared by UsersJoined and UsersRemoved.
type MembersPayload struct {
	ChannelID string   `json:"channelId" validate:"required"`
	Sender    Sender   `json:"sender"`
	MemberIDs []string `json:"memberIds" validate:"required,dive,required"`
}

type UserRegisteredPayload struct {
	ID          string  `json:"id" validate:"required"`
	Username    string  `json:"username" validate:"required"`
	DisplayName string  `json:"displayName" validate:"required"`
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
}
