package publishers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubBuilder(built *[]*stubPublisher, failID string) Builder {
	return func(_ context.Context, cfg PublisherConfig, _ Logger) (Publisher, error) {
		if cfg.ID == failID {
			return nil, errors.New("unreachable sink")
		}
		p := &stubPublisher{id: cfg.ID, typ: cfg.Type}
		*built = append(*built, p)
		return p, nil
	}
}

func TestRegistryPublisherForUnknownType(t *testing.T) {
	reg := NewRegistry(nil)

	_, err := reg.PublisherFor(context.Background(), PublisherConfig{ID: "x", Type: "kafka"}, nil)
	require.Error(t, err)

	_, err = reg.PublisherFor(context.Background(), PublisherConfig{ID: "x"}, nil)
	require.Error(t, err)
}

func TestRegistryRegisterIsCaseInsensitive(t *testing.T) {
	var built []*stubPublisher
	reg := NewRegistry(nil)
	reg.Register(" HTTP ", stubBuilder(&built, ""))

	pub, err := reg.PublisherFor(context.Background(), PublisherConfig{ID: "hook", Type: "Http"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hook", pub.ID())
}

func TestDefaultRegistryKnowsEveryType(t *testing.T) {
	reg := DefaultRegistry().(*registry)
	for _, typ := range []string{TypeHTTP, TypeSQS, TypeSNS, TypePubSub} {
		assert.Contains(t, reg.builders, typ)
	}
}

func TestBuildAllClosesBuiltPublishersOnFailure(t *testing.T) {
	var built []*stubPublisher
	reg := NewRegistry(map[string]Builder{TypeHTTP: stubBuilder(&built, "bad")})

	cfgs := []PublisherConfig{
		{ID: "ok", Type: TypeHTTP},
		{ID: "bad", Type: TypeHTTP},
	}
	pubs, err := BuildAll(context.Background(), reg, cfgs, nil)
	require.Error(t, err)
	assert.Nil(t, pubs)
	require.Len(t, built, 1)
	assert.True(t, built[0].closed)
}

func TestBuildAllWithNoConfigs(t *testing.T) {
	pubs, err := BuildAll(context.Background(), DefaultRegistry(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, pubs)
}
