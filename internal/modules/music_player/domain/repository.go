package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// QueueRepository is the table of guild queues. It holds at most one queue per guild.
type QueueRepository interface {
	// Get returns the GuildQueue for the given guild, or nil if not exists.
	Get(guildID snowflake.ID) *GuildQueue

	// Create stores the queue unless one already exists for its guild.
	// Returns the stored queue and true if the given queue was stored.
	Create(queue *GuildQueue) (*GuildQueue, bool)

	// Delete removes the queue for the given guild if it is still the given queue.
	// Returns true if a queue was removed.
	Delete(queue *GuildQueue) bool
}
