package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionLevel_Allows(t *testing.T) {
	tests := []struct {
		level PermissionLevel
		read  bool
		write bool
	}{
		{PermissionRead, true, false},
		{PermissionWrite, false, true},
		{PermissionReadWrite, true, true},
		{PermissionLevel(""), false, false},
		{PermissionLevel("admin"), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.read, tt.level.Allows(OpRead))
			assert.Equal(t, tt.write, tt.level.Allows(OpWrite))
		})
	}
}

func TestParsePermissionLevel(t *testing.T) {
	p, err := ParsePermissionLevel(" Read-Write ")
	require.NoError(t, err)
	assert.Equal(t, PermissionReadWrite, p)

	_, err = ParsePermissionLevel("owner")
	require.Error(t, err)
}

func TestNewContent_TagsEncoding(t *testing.T) {
	text := NewContent([]byte("héllo"))
	assert.Equal(t, EncodingUTF8, text.Encoding)
	assert.Equal(t, "héllo", text.String())

	bin := NewContent([]byte{0xff, 0x00, 0xfe})
	assert.Equal(t, EncodingBase64, bin.Encoding)
	assert.Equal(t, "/wD+", bin.String())
}

func TestDecodeContent_RoundTrip(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}
	c := NewContent(raw)

	back, err := DecodeContent(c.Encoding, c.String())
	require.NoError(t, err)
	assert.Equal(t, raw, back.Data)
	assert.Equal(t, EncodingBase64, back.Encoding)

	_, err = DecodeContent(EncodingBase64, "%%%")
	require.Error(t, err)

	_, err = DecodeContent("gzip", "x")
	require.Error(t, err)
}

func TestParseEncoding(t *testing.T) {
	e, err := ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, e)

	e, err = ParseEncoding("base64")
	require.NoError(t, err)
	assert.Equal(t, EncodingBase64, e)

	_, err = ParseEncoding("hex")
	require.Error(t, err)
}
