package documents

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reassemble concatenates the non-overlapping leading part of every chunk
func reassemble(chunks []string, size, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i == len(chunks)-1 {
			b.WriteString(c)
			break
		}
		b.WriteString(string([]rune(c)[:size-overlap]))
	}
	return b.String()
}

func TestSplit_Properties(t *testing.T) {
	texts := []string{
		"E1: cuff too loose. E2: arm moved during measurement.",
		strings.Repeat("abcdefghij", 57),
		"血壓計說明書：錯誤代碼 E1 表示袖帶過鬆，請重新綁緊後再量測。",
		"short",
	}
	params := []struct{ size, overlap int }{
		{500, 50},
		{10, 3},
		{7, 1},
		{2, 1},
	}

	for _, text := range texts {
		for _, p := range params {
			chunks, err := Split(text, p.size, p.overlap)
			require.NoError(t, err)
			require.NotEmpty(t, chunks)

			assert.Equal(t, text, reassemble(chunks, p.size, p.overlap))
			for i, c := range chunks {
				assert.NotEmpty(t, c)
				assert.LessOrEqual(t, utf8.RuneCountInString(c), p.size)
				if i > 0 {
					prev := []rune(chunks[i-1])
					cur := []rune(c)
					assert.Equal(t, string(prev[len(prev)-p.overlap:]), string(cur[:p.overlap]),
						"chunks %d and %d should share %d characters", i-1, i, p.overlap)
				}
			}
		}
	}
}

func TestSplit_BoundaryKeptInBothChunks(t *testing.T) {
	text := strings.Repeat("x", 95) + "E1: cuff too loose" + strings.Repeat("y", 80)

	chunks, err := Split(text, 100, 30)
	require.NoError(t, err)

	found := false
	for _, c := range chunks {
		if strings.Contains(c, "E1: cuff too loose") {
			found = true
		}
	}
	assert.True(t, found, "overlap should keep a definition spanning a boundary intact in some chunk")
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("measure your pressure daily. ", 40)

	a, err := Split(text, 120, 20)
	require.NoError(t, err)
	b, err := Split(text, 120, 20)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSplit_ExactMultiple(t *testing.T) {
	chunks, err := Split("0123456789", 5, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"01234", "34567", "6789"}, chunks)
}

func TestSplit_Empty(t *testing.T) {
	chunks, err := Split("", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_InvalidConfig(t *testing.T) {
	for _, p := range []struct{ size, overlap int }{{0, 0}, {-1, 0}, {10, 10}, {10, 11}, {10, -1}} {
		_, err := Split("text", p.size, p.overlap)
		assert.ErrorIs(t, err, ErrInvalidChunkConfig, "size=%d overlap=%d", p.size, p.overlap)
	}
}

func TestChecksum(t *testing.T) {
	a := Checksum("E1: cuff too loose")
	assert.Len(t, a, 16)
	assert.Equal(t, a, Checksum("E1: cuff too loose"))
	assert.NotEqual(t, a, Checksum("E2: cuff too tight"))
}
