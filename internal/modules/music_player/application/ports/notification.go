package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// NotificationSender defines the interface for sending notices to Discord channels.
type NotificationSender interface {
	// SendNotice sends a plain text notice to the channel.
	SendNotice(channelID snowflake.ID, message string) error

	// SendError sends an error message embed to the channel.
	SendError(channelID snowflake.ID, message string) error
}
