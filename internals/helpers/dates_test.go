package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateLenient(t *testing.T) {
	parsed, ok := ParseDateLenient("2026-02-14")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), *parsed)

	// Malformed values are dropped silently.
	for _, raw := range []string{"", "   ", "14/02/2026", "2026-2-14", "2026-02-14T00:00:00Z", "soon"} {
		parsed, ok = ParseDateLenient(raw)
		assert.False(t, ok, "%q should not parse", raw)
		assert.Nil(t, parsed)
	}
}

func TestParseDateStrict(t *testing.T) {
	parsed, err := ParseDateStrict(" 2026-02-14 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), parsed)

	_, err = ParseDateStrict("14/02/2026")
	assert.Error(t, err, "export flows must see the parse failure")
}

func TestBuildMeta(t *testing.T) {
	p := Paging{Page: 2, PerPage: 20, Offset: 20, Limit: 20}
	meta := BuildMeta(45, p)

	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = BuildMeta(0, Paging{Page: 1, PerPage: 20})
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}
