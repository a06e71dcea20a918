package data_test

import (
	"errors"
	"testing"

	"github.com/mwantia/craftos/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		mode     string
		readable bool
		writable bool
		append   bool
		binary   bool
	}{
		{"r", true, false, false, false},
		{"rb", true, false, false, true},
		{"w", false, true, false, false},
		{"wb", false, true, false, true},
		{"a", false, true, true, false},
		{"r+", true, true, false, false},
		{"w+", true, true, false, false},
		{"a+", true, true, true, false},
		{"r+b", true, true, false, true},
		{"b+a", true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			flags, err := data.ParseMode(tt.mode)
			require.NoError(t, err)

			assert.Equal(t, tt.readable, flags.IsReadable())
			assert.Equal(t, tt.writable, flags.IsWritable())
			assert.Equal(t, tt.append, flags.IsAppend())
			assert.Equal(t, tt.binary, flags.IsBinary())
		})
	}
}

func TestParseMode_Invalid(t *testing.T) {
	for _, mode := range []string{"", "x", "rw", "wa", "+", "b", "r++", "rbb", "rr", "r x"} {
		t.Run(mode, func(t *testing.T) {
			_, err := data.ParseMode(mode)
			require.Error(t, err)
			assert.True(t, errors.Is(err, data.ErrInvalid))
			assert.Contains(t, err.Error(), "invalid mode")
		})
	}
}

func TestOpenFlags_Predicates(t *testing.T) {
	assert.True(t, data.OpenFlags(0).IsRead())
	assert.True(t, data.OpenWrite.IsWrite())
	assert.True(t, data.OpenAppend.IsAppend())
	assert.False(t, data.OpenAppend.IsWrite())
	assert.True(t, (data.OpenReadPlus | data.OpenWrite).IsReadWrite())
	assert.Equal(t, "a+b", (data.OpenAppend | data.OpenReadPlus | data.OpenBinary).String())
}

func TestMessage(t *testing.T) {
	err := data.WrapPath("open", "rom/x", data.ErrPermission)

	assert.True(t, errors.Is(err, data.ErrPermission))
	assert.Equal(t, "/rom/x: Permission denied", data.Message(err))
	assert.Equal(t, "No such file", data.Message(data.ErrNotExist))
	assert.Equal(t, "", data.Message(nil))
	assert.Same(t, err, data.WrapPath("read", "other", err))
}
