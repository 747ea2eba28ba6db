package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	tr := NewTracker("apiculture")

	assert.True(t, tr.Has(""), "empty id means no research required")
	assert.True(t, tr.Has("apiculture"))
	assert.False(t, tr.Has("masonry"))

	tr.Complete("masonry")
	tr.Complete("")
	assert.True(t, tr.Has("masonry"))
	assert.Equal(t, []string{"apiculture", "masonry"}, tr.Completed())
}
