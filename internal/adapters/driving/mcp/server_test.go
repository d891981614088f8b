package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RequiresContextService(t *testing.T) {
	server, err := NewServer(&Ports{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingContextService)
	assert.Nil(t, server)
}

func TestNewServer_MinimalPorts(t *testing.T) {
	server, err := NewServer(&Ports{Context: &mockContextService{}})

	require.NoError(t, err)
	require.NotNil(t, server)
}

func TestNewServer_AllPorts(t *testing.T) {
	ports := &Ports{
		Context: &mockContextService{},
		Rank:    &mockRankService{},
		Compose: &mockComposeService{},
	}

	server, err := NewServer(ports)

	require.NoError(t, err)
	require.NotNil(t, server)
}

func TestPorts_Validate(t *testing.T) {
	t.Run("missing context service", func(t *testing.T) {
		p := &Ports{Rank: &mockRankService{}}
		assert.ErrorIs(t, p.Validate(), ErrMissingContextService)
	})

	t.Run("context service only is enough", func(t *testing.T) {
		p := &Ports{Context: &mockContextService{}}
		assert.NoError(t, p.Validate())
	})
}
