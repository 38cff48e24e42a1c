package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFormats(t *testing.T) {
	assert.Equal(t, "session:abc123", FormatSessionKey("abc123"))
	assert.Equal(t, "sessions:active", FormatActiveSessionsKey())
	assert.Equal(t, "seq:user:42", FormatSequenceKey("user:42"))
}
