package runtimeservice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mailClient struct{ built int }

func TestInstanceMemoizesConstructor(t *testing.T) {
	table := NewTable()
	calls := 0
	table.Register("mail.client", func() (any, error) {
		calls++
		return &mailClient{built: calls}, nil
	})

	first, err := table.Instance("mail.client")
	require.NoError(t, err)
	second, err := table.Instance("mail.client")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestInstanceUnregisteredModuleErrors(t *testing.T) {
	table := NewTable()
	_, err := table.Instance("nope")
	require.Error(t, err)
}

func TestInstancePropagatesConstructorError(t *testing.T) {
	table := NewTable()
	table.Register("broken", func() (any, error) { return nil, errors.New("boom") })
	_, err := table.Instance("broken")
	require.Error(t, err)
}
