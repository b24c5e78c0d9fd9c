package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/core"
)

type appendNode struct {
	name string
	id   int64
	err  error
}

func (n *appendNode) Name() string { return n.name }
func (n *appendNode) Kind() Kind   { return KindRecall }
func (n *appendNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(n.id)), nil
}

func TestPipelineRun(t *testing.T) {
	p := &Pipeline{Name: "test", Nodes: []Node{&appendNode{name: "a", id: 1}, &appendNode{name: "b", id: 2}}}
	items, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(2), items[1].ID)
}

func TestPipelineRunError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Name: "test", Nodes: []Node{&appendNode{name: "a", err: boom}}}
	_, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestBuildPipeline(t *testing.T) {
	cfg, err := ParseYAML([]byte(`
pipeline:
  name: demo
  nodes:
    - type: append
      config:
        id: 5
`))
	require.NoError(t, err)
	factory := NewNodeFactory()
	factory.Register("append", func(m map[string]any) (Node, error) {
		return &appendNode{name: "append", id: int64(m["id"].(int))}, nil
	})
	p, err := cfg.BuildPipeline(factory)
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)
	node, ok := p.Find(KindRecall)
	require.True(t, ok)
	assert.Equal(t, "append", node.Name())

	cfg.Pipeline.Nodes[0].Type = "missing"
	_, err = cfg.BuildPipeline(factory)
	assert.Error(t, err)
}
