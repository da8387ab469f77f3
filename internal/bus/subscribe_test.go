package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurableName_IsStablePerServiceAndSubject(t *testing.T) {
	a := durableName("detector", "logs.raw")
	b := durableName("detector", "logs.raw")
	assert.Equal(t, a, b)
}

func TestDurableName_DiffersAcrossServices(t *testing.T) {
	a := durableName("detector", "logs.raw")
	b := durableName("enricher", "logs.raw")
	assert.NotEqual(t, a, b)
}
