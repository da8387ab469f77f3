package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbed_IsDeterministic(t *testing.T) {
	a := Embed("engine critical generator")
	b := Embed("engine critical generator")
	assert.Equal(t, a, b)
	assert.Len(t, a, Dimensions)
}

func TestEmbed_DiffersByInput(t *testing.T) {
	a := Embed("engine critical generator")
	b := Embed("network warning router")
	assert.NotEqual(t, a, b)
}

func TestEmbed_ValuesAreBounded(t *testing.T) {
	vec := Embed("bilge high water-level")
	for _, v := range vec {
		assert.GreaterOrEqual(t, v, float32(-1))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestFingerprint_SkipsEmptyParts(t *testing.T) {
	fp := Fingerprint("engine", "", "generator-1", "")
	assert.Equal(t, "engine generator-1", fp)
}
