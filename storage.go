package coapcodec

import (
	"time"

	log "github.com/ndmsystems/logger"
	cache "github.com/patrickmn/go-cache"
)

const responseStorageCleanupInterval = time.Second

// ResponseStorage keeps successful responses keyed by the request
// fingerprint, so equal requests are answered from cache until the
// response's Max-Age passes. A Max-Age of 0 marks the response stale on
// arrival and it is not stored.
type ResponseStorage struct {
	storage *cache.Cache
}

func NewResponseStorage() *ResponseStorage {
	s := new(ResponseStorage)
	s.storage = cache.New(cache.NoExpiration, responseStorageCleanupInterval)

	return s
}

// Set stores resp under req's cache key. Only success-class responses to
// requests are cacheable.
func (s *ResponseStorage) Set(req, resp *CoAPMessage) {
	if req == nil || resp == nil {
		return
	}
	if req.Code.Kind() != KindRequest || resp.Code.Kind() != KindSuccess {
		log.Debug("response storage: skipping non-cacheable exchange")
		return
	}

	maxAge := resp.GetMaxAge()
	if maxAge == 0 {
		return
	}

	s.storage.Set(string(req.CacheKey()), resp, time.Duration(maxAge)*time.Second)
}

func (s *ResponseStorage) Get(req *CoAPMessage) *CoAPMessage {
	if req == nil {
		return nil
	}
	v, ok := s.storage.Get(string(req.CacheKey()))
	if ok {
		return v.(*CoAPMessage)
	}
	return nil
}

func (s *ResponseStorage) Delete(req *CoAPMessage) {
	if req == nil {
		return
	}
	s.storage.Delete(string(req.CacheKey()))
}

func (s *ResponseStorage) ItemCount() int {
	return s.storage.ItemCount()
}
