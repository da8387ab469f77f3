// Package partition hashes a record's identity key onto one of a fixed
// number of buckets so every pipeline service can fan work out across
// goroutines while preserving per-key FIFO ordering — each bucket is
// drained by exactly one worker (spec §5: "anomalies for the same ship
// must never be reordered relative to each other").
package partition

import "hash/fnv"

// Index hashes key onto [0, n). An empty key always lands on bucket 0
// rather than a random one, keeping behavior deterministic for records
// that carry no identity hint at all.
func Index(key string, n int) int {
	if key == "" || n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
