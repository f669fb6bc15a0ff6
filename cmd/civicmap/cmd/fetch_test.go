package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdatadog/civicmap/pkg/sources"
)

func TestNewSourcesRegistersAllIDs(t *testing.T) {
	srcs := newSources(nil)
	require.Equal(t, len(sources.IDs()), srcs.Len())

	for _, id := range sources.IDs() {
		src, found := srcs.Get(id)
		require.True(t, found, "source %s not registered", id)
		assert.Equal(t, id, src.ID())
	}

	_, found := srcs.Get(sources.ID("bogus"))
	assert.False(t, found)
}
