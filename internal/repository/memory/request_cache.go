package memory

import (
	"time"

	"prospec-live/internal/entity"

	"github.com/patrickmn/go-cache"
)

// RequestCache keeps recently resolved invitation requests in memory so the
// 2-second poll loop does not hit the database for requests that already
// reached a terminal state.
type RequestCache struct {
	cache *cache.Cache
}

func NewRequestCache() *RequestCache {
	// Resolved requests stay visible to late polls for 10 minutes
	c := cache.New(10*time.Minute, 5*time.Minute)
	return &RequestCache{
		cache: c,
	}
}

func (r *RequestCache) Save(request *entity.InvitationRequest) {
	r.cache.Set(request.Id.String(), request, cache.DefaultExpiration)
}

func (r *RequestCache) Get(requestId string) (*entity.InvitationRequest, bool) {
	if x, found := r.cache.Get(requestId); found {
		return x.(*entity.InvitationRequest), true
	}
	return nil, false
}

func (r *RequestCache) Delete(requestId string) {
	r.cache.Delete(requestId)
}
