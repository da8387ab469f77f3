package vectorstore

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// Dimensions is the fixed vector width this store's "incidents"
// collection is configured with (spec §6.3: "384-dim cosine").
const Dimensions = 384

// Fingerprint builds the text representation an incident's embedding is
// derived from. Kept separate from Embed so callers can log/cache on
// the fingerprint without recomputing the hash loop.
func Fingerprint(domain, severity, service, metricName string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{domain, severity, service, metricName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Embed deterministically derives a 384-dim vector from text using the
// same MD5-seeded approach as the original Python RAG client
// (qdrant_rag.py's _generate_simple_embedding): a placeholder until a
// real embedding model is introduced, kept bit-for-bit compatible so
// historical vectors written by the Python service remain comparable.
func Embed(text string) []float32 {
	vec := make([]float32, Dimensions)
	for i := 0; i < Dimensions; i++ {
		sum := md5.Sum([]byte(fmt.Sprintf("%s_%d", text, i)))
		hexPrefix := fmt.Sprintf("%x", sum)[:8]
		var n uint64
		fmt.Sscanf(hexPrefix, "%x", &n)
		value := float64(n)/float64(1<<32)*2 - 1
		vec[i] = float32(value)
	}
	return vec
}
