package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "job:status:job-123", JobStatusCacheKey("job-123"))
	assert.Equal(t, "job:cancel:job-123", JobCancelCacheKey("job-123"))
	assert.Equal(t, "job:track:job-123", TrackCacheKey("job-123"))
}

func TestCacheKey_String(t *testing.T) {
	key := CacheKey{Prefix: "job:status", ID: "abc"}
	assert.Equal(t, "job:status:abc", key.String())
}
