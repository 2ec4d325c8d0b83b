package main

import "sync"

type EvalCacheEntry struct {
	Key   uint64
	Value int
	Gen   uint32
	Valid bool
}

// EvalCache is a set-associative leaf-value cache keyed by zobrist hash.
// Entries from older generations are evicted first.
type EvalCache struct {
	mu      sync.Mutex
	mask    uint64
	buckets int
	entries []EvalCacheEntry
	gen     uint32
}

type EvalCacheStatus struct {
	Slots      int    `json:"slots"`
	Buckets    int    `json:"buckets"`
	Used       int    `json:"used"`
	Generation uint32 `json:"generation"`
}

func NewEvalCache(size uint64, buckets int) *EvalCache {
	if buckets <= 0 {
		buckets = 2
	}
	if size < 1 {
		size = 1
	}
	if (size & (size - 1)) != 0 {
		size = nextPowerOfTwo(size)
	}
	return &EvalCache{
		mask:    size - 1,
		buckets: buckets,
		entries: make([]EvalCacheEntry, int(size)*buckets),
		gen:     1,
	}
}

func nextPowerOfTwo(v uint64) uint64 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	return v + 1
}

// NextGeneration ages every stored entry by one turn.
func (ec *EvalCache) NextGeneration() {
	if ec == nil {
		return
	}
	ec.mu.Lock()
	ec.gen++
	if ec.gen == 0 {
		ec.gen = 1
	}
	ec.mu.Unlock()
}

func (ec *EvalCache) bucketIndex(key uint64) int {
	return int(key&ec.mask) * ec.buckets
}

func (ec *EvalCache) Get(key uint64) (int, bool) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	start := ec.bucketIndex(key)
	for i := 0; i < ec.buckets; i++ {
		entry := ec.entries[start+i]
		if entry.Valid && entry.Key == key {
			return entry.Value, true
		}
	}
	return 0, false
}

func (ec *EvalCache) Put(key uint64, value int) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	start := ec.bucketIndex(key)
	victim := -1
	oldest := uint32(0)
	for i := 0; i < ec.buckets; i++ {
		idx := start + i
		entry := ec.entries[idx]
		if entry.Valid && entry.Key == key {
			ec.entries[idx] = EvalCacheEntry{Key: key, Value: value, Gen: ec.gen, Valid: true}
			return
		}
		if !entry.Valid {
			victim = idx
			break
		}
		age := ec.gen - entry.Gen
		if victim == -1 || age > oldest {
			victim = idx
			oldest = age
		}
	}
	if victim >= 0 {
		ec.entries[victim] = EvalCacheEntry{Key: key, Value: value, Gen: ec.gen, Valid: true}
	}
}

func (ec *EvalCache) Flush() {
	ec.mu.Lock()
	for i := range ec.entries {
		ec.entries[i] = EvalCacheEntry{}
	}
	ec.gen = 1
	ec.mu.Unlock()
}

func (ec *EvalCache) Status() EvalCacheStatus {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	used := 0
	for _, entry := range ec.entries {
		if entry.Valid {
			used++
		}
	}
	return EvalCacheStatus{
		Slots:      int(ec.mask + 1),
		Buckets:    ec.buckets,
		Used:       used,
		Generation: ec.gen,
	}
}

type evalCacheHolder struct {
	mu      sync.Mutex
	cache   *EvalCache
	size    int
	buckets int
}

var sharedEvalCache = &evalCacheHolder{}

// ensureEvalCache returns the shared cache sized for cfg, or nil when the
// cache is disabled.
func ensureEvalCache(cfg Config) *EvalCache {
	if !cfg.EnableEvalCache {
		return nil
	}
	size := cfg.EvalCacheSize
	if size <= 0 {
		size = 1 << 16
	}
	h := sharedEvalCache
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cache == nil || h.size != size || h.buckets != cfg.EvalCacheBuckets {
		h.cache = NewEvalCache(uint64(size), cfg.EvalCacheBuckets)
		h.size = size
		h.buckets = cfg.EvalCacheBuckets
	}
	return h.cache
}
