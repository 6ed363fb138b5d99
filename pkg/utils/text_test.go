package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hello...", Truncate("hello world", 5))
	assert.Equal(t, "x", Truncate("x", 0))
	assert.Equal(t, "éé...", Truncate("ééé", 2))
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 3, RuneLen("ééé"))
	assert.Zero(t, RuneLen(""))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "1023 B", FormatBytes(1023))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "1.0 MiB", FormatBytes(1<<20))
	assert.Equal(t, "2.0 GiB", FormatBytes(2<<30))
}
