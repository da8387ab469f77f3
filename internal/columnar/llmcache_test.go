package columnar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey_IsDeterministic(t *testing.T) {
	a := cacheKey("root_cause", "engine", "critical", "generator-1", "rpm")
	b := cacheKey("root_cause", "engine", "critical", "generator-1", "rpm")
	assert.Equal(t, a, b)
}

func TestCacheKey_PrefixedByResponseType(t *testing.T) {
	k := cacheKey("remediation", "network", "high", "router-1", "")
	assert.Contains(t, k, "remediation_")
}

func TestCacheKey_DiffersOnSeverity(t *testing.T) {
	a := cacheKey("root_cause", "engine", "critical", "generator-1", "rpm")
	b := cacheKey("root_cause", "engine", "low", "generator-1", "rpm")
	assert.NotEqual(t, a, b)
}
