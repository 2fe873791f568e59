package state

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheStorage keeps chat state in process memory, idle chats expire after ttl
type CacheStorage struct {
	cache *cache.Cache
}

func NewCacheStorage(ttl time.Duration) *CacheStorage {
	return &CacheStorage{
		cache: cache.New(ttl, ttl/2),
	}
}

func (s *CacheStorage) Get(_ context.Context, userID int64) (*ChatState, error) {
	v, ok := s.cache.Get(key(userID))
	if !ok {
		return nil, ErrChatStateNotFound
	}
	return clone(v.(*ChatState)), nil
}

// Set stores a copy of state and restarts its expiry
func (s *CacheStorage) Set(_ context.Context, state *ChatState) error {
	s.cache.SetDefault(key(state.UserID), clone(state))
	return nil
}

func (s *CacheStorage) Delete(_ context.Context, userID int64) error {
	s.cache.Delete(key(userID))
	return nil
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func clone(s *ChatState) *ChatState {
	out := *s
	out.OptionValues = append([]string(nil), s.OptionValues...)
	return &out
}
