// Package node executes workspace operations on the node that owns the workspace.
package node

import (
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
)

// NewRegistry creates a new instance of the static nodes registry.
func NewRegistry(nodes map[string]app.NodeSvc) app.NodeRegistry {
	return Registry{nodes: nodes}
}

// Registry looks the nodes up by name.
type Registry struct {
	nodes map[string]app.NodeSvc
}

// Node returns the node by name; the empty name means the default node.
func (r Registry) Node(name string) (app.NodeSvc, error) {
	if name == "" {
		name = app.DefaultNode
	}
	n, ok := r.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: node %q is not registered", errtype.ErrNotFound, name)
	}
	return n, nil
}
