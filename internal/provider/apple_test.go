package provider

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppleClientAvailability(t *testing.T) {
	client := NewAppleClient()
	assert.Equal(t, "apple", client.Tag())
	assert.Equal(t, runtime.GOOS == "darwin", client.Available())
}

func TestAppleClientFetchIsAlwaysNotFoundOffPlatform(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("apple client behavior on darwin is not exercised here")
	}
	client := NewAppleClient()
	_, err := client.Fetch(context.Background(), "word")
	assert.ErrorIs(t, err, ErrNotFound)
}
