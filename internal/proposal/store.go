package proposal

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

// Store keeps the ranked tag suggestions for live draft messages so a
// later button press can rebuild the same keyboard. Entries are keyed
// by chat and message id and evicted by size and age, so an abandoned
// draft cannot pin memory forever; a missing entry only degrades the
// keyboard to database-backed tags.
type Store struct {
	cache *expirable.LRU[string, []appmodels.Tag]
}

// NewStore creates a store bounded to size entries with the given TTL.
func NewStore(size int, ttl time.Duration) *Store {
	return &Store{
		cache: expirable.NewLRU[string, []appmodels.Tag](size, nil, ttl),
	}
}

// Put remembers the suggested tags for a draft message.
func (s *Store) Put(chatID int64, messageID int, tags []appmodels.Tag) {
	s.cache.Add(storeKey(chatID, messageID), tags)
}

// Get returns the remembered tags, or nil when the entry expired or
// was never stored.
func (s *Store) Get(chatID int64, messageID int) []appmodels.Tag {
	tags, ok := s.cache.Get(storeKey(chatID, messageID))
	if !ok {
		return nil
	}
	return tags
}

// Delete drops the entry for a finished draft.
func (s *Store) Delete(chatID int64, messageID int) {
	s.cache.Remove(storeKey(chatID, messageID))
}

func storeKey(chatID int64, messageID int) string {
	return fmt.Sprintf("%d_%d", chatID, messageID)
}
