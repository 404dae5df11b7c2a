package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferPoolKeepsSize(t *testing.T) {
	bp := NewBufferPool(16)
	buf := bp.Get()
	assert.Len(t, *buf, 16)

	*buf = (*buf)[:3]
	bp.Put(buf)

	again := bp.Get()
	assert.Len(t, *again, 16)
	assert.Equal(t, 16, bp.Size())
}

func TestStringBuilderPoolResets(t *testing.T) {
	sbp := NewStringBuilderPool()
	sb := sbp.Get()
	sb.WriteString("GW\t1")
	assert.Equal(t, "GW\t1", sb.String())
	sbp.Put(sb)

	assert.Equal(t, "", sbp.Get().String())
}
