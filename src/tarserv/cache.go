package tarserv

import (
	"hash/maphash"
	"sync"
	"time"

	"github.com/dgryski/go-tinylfu"

	"github.com/aurora-is-near/ustar/src/blob"
)

var seed = maphash.MakeSeed()

type cacheKey struct {
	dir     string
	modTime int64
}

func keyHash(k cacheKey) uint64 { return maphash.Comparable(seed, k) }

// archiveCache holds serialized archives of directories. A directory is
// rebuilt once its own modification time changes. Its subdirectories are not
// consulted.
type archiveCache struct {
	mu  sync.Mutex
	lfu *tinylfu.T[cacheKey, *blob.Multi]
}

// newArchiveCache returns a cache of up to size archives, or nil when size
// is not positive. A nil cache holds nothing.
func newArchiveCache(size int) *archiveCache {
	if size <= 0 {
		return nil
	}
	return &archiveCache{lfu: tinylfu.New[cacheKey, *blob.Multi](size, size*10, keyHash)}
}

func (c *archiveCache) get(dir string, modTime time.Time) (*blob.Multi, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lfu.Get(cacheKey{dir, modTime.UnixNano()})
}

func (c *archiveCache) add(dir string, modTime time.Time, m *blob.Multi) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lfu.Add(cacheKey{dir, modTime.UnixNano()}, m)
}
