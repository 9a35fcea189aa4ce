package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

// MemoryRepository is an in-memory implementation of QueueRepository.
type MemoryRepository struct {
	mu     sync.RWMutex
	queues map[snowflake.ID]*domain.GuildQueue
}

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		queues: make(map[snowflake.ID]*domain.GuildQueue),
	}
}

// Get returns the GuildQueue for the given guild, or nil if not exists.
func (r *MemoryRepository) Get(guildID snowflake.ID) *domain.GuildQueue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.queues[guildID]
}

// Create stores the queue unless one already exists for its guild.
func (r *MemoryRepository) Create(queue *domain.GuildQueue) (*domain.GuildQueue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.queues[queue.GuildID()]; ok {
		return existing, false
	}
	r.queues[queue.GuildID()] = queue
	return queue, true
}

// Delete removes the queue for its guild if it is still the stored one.
func (r *MemoryRepository) Delete(queue *domain.GuildQueue) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if queue == nil || r.queues[queue.GuildID()] != queue {
		return false
	}
	delete(r.queues, queue.GuildID())
	return true
}

// Count returns the number of guild queues (for testing/monitoring).
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.queues)
}

// Ensure MemoryRepository implements QueueRepository.
var _ domain.QueueRepository = (*MemoryRepository)(nil)
