package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/encoding"
)

func decodeAll(t *testing.T, input []byte) (string, string) {
	t.Helper()

	r, charset, err := encoding.Reader(bytes.NewReader(input))
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(out), charset
}

func TestReader_PlainUTF8(t *testing.T) {
	got, charset := decodeAll(t, []byte("Café,1,2.50"))
	assert.Equal(t, "Café,1,2.50", got)
	assert.Equal(t, "UTF-8", charset)
}

func TestReader_UTF8BOMStripped(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Milk,2,0.99")...)

	got, charset := decodeAll(t, input)
	assert.Equal(t, "Milk,2,0.99", got)
	assert.Equal(t, "UTF-8", charset)
}

func TestReader_UTF16LE(t *testing.T) {
	var input []byte
	input = append(input, 0xFF, 0xFE)
	for _, r := range "Tea,1,1.10" {
		input = append(input, byte(r), 0x00)
	}

	got, charset := decodeAll(t, input)
	assert.Equal(t, "Tea,1,1.10", got)
	assert.Equal(t, "UTF-16LE", charset)
}

func TestReader_Windows1252Fallback(t *testing.T) {
	// "Café" with the é as the single 0xE9 byte, invalid as UTF-8.
	input := []byte{'C', 'a', 'f', 0xE9}

	got, charset := decodeAll(t, input)
	assert.Equal(t, "Café", got)
	assert.Equal(t, "windows-1252", charset)
}
