package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifierQueueOrder(t *testing.T) {
	n := NewNotifier(10)

	n.Publish(LevelSuccess, "first")
	n.Publish(LevelError, "second")

	pending := n.Pending()
	assert.Len(t, pending, 2)
	assert.Equal(t, "first", pending[0].Message)
	assert.Equal(t, "second", pending[1].Message)

	head, ok := n.Dismiss()
	assert.True(t, ok)
	assert.Equal(t, "first", head.Message)
	assert.Len(t, n.Pending(), 1)

	_, ok = n.Dismiss()
	assert.True(t, ok)
	_, ok = n.Dismiss()
	assert.False(t, ok)
}

func TestNotifierBoundedQueueDropsOldest(t *testing.T) {
	n := NewNotifier(2)

	n.Publish(LevelSuccess, "one")
	n.Publish(LevelSuccess, "two")
	n.Publish(LevelSuccess, "three")

	pending := n.Pending()
	assert.Len(t, pending, 2)
	assert.Equal(t, "two", pending[0].Message)
	assert.Equal(t, "three", pending[1].Message)
}

func TestNotifierPendingIsACopy(t *testing.T) {
	n := NewNotifier(5)
	n.Publish(LevelSuccess, "original")

	pending := n.Pending()
	pending[0].Message = "mutated"

	assert.Equal(t, "original", n.Pending()[0].Message)
}
