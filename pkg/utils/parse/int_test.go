package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntOrDefault(t *testing.T) {
	assert.Equal(t, 5, IntOrDefault("5", 1))
	assert.Equal(t, 1, IntOrDefault("", 1))
	assert.Equal(t, 1, IntOrDefault("five", 1))
}

func TestID(t *testing.T) {
	id, err := ID(" 42 ")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := ID(bad)
		assert.Error(t, err, bad)
	}
}
