package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUTF8Decoder_PassesCompleteText(t *testing.T) {
	var d utf8Decoder
	assert.Equal(t, "hello", d.Decode([]byte("hello")))
	assert.Equal(t, "héllo 世界", d.Decode([]byte("héllo 世界")))
	assert.Empty(t, d.Flush())
}

func TestUTF8Decoder_HoldsPartialRune(t *testing.T) {
	var d utf8Decoder

	full := []byte("ab界cd") // 界 is three bytes
	split := 3              // cuts 界 after its first byte

	first := d.Decode(full[:split])
	second := d.Decode(full[split:])
	assert.Equal(t, "ab", first)
	assert.Equal(t, "界cd", second)
	assert.Empty(t, d.Flush())
}

func TestUTF8Decoder_RuneSplitThreeWays(t *testing.T) {
	var d utf8Decoder
	raw := []byte("€") // three bytes

	out := d.Decode(raw[:1]) + d.Decode(raw[1:2]) + d.Decode(raw[2:])
	assert.Equal(t, "€", out)
}

func TestUTF8Decoder_InvalidBytesPassThrough(t *testing.T) {
	var d utf8Decoder
	// 0xFF can never start a rune; it must not be held back forever.
	out := d.Decode([]byte{'a', 0xFF, 'b'})
	assert.Equal(t, "a\xffb", out)
}

func TestUTF8Decoder_FlushReturnsTruncatedTail(t *testing.T) {
	var d utf8Decoder
	raw := []byte("界")
	assert.Empty(t, d.Decode(raw[:2]))
	assert.NotEmpty(t, d.Flush(), "stream cut mid-rune still surfaces its bytes")
	assert.Empty(t, d.Flush())
}
