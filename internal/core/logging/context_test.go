package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithOperation(t *testing.T) {
	ctx := WithOperation(context.Background(), "execute")
	assert.Equal(t, "execute", GetOperation(ctx))
}

func TestWithSequence(t *testing.T) {
	ctx := WithSequence(context.Background(), 7)
	assert.Equal(t, uint64(7), GetSequence(ctx))
}

func TestContextValues_NotPresent(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetOperation(ctx))
	assert.Zero(t, GetSequence(ctx))
}
