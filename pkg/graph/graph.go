package graph

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/loadsmith/cargoflow/pkg/models"
	"github.com/loadsmith/cargoflow/pkg/registry"
)

// Graph holds the mutable node/edge collections for one editing session.
// Nodes are indexed by id; edges keep insertion order and an outgoing
// adjacency index so cascade deletes and traversal avoid full scans.
type Graph struct {
	registry *registry.Registry
	module   models.ModuleContext

	nodes    map[string]*models.Node
	order    []string
	edges    []*models.Edge
	edgeByID map[string]*models.Edge
	outgoing map[string][]*models.Edge
}

// New creates an empty graph scoped to one module context. The registry
// supplies default configuration for newly added nodes.
func New(reg *registry.Registry, module models.ModuleContext) *Graph {
	return &Graph{
		registry: reg,
		module:   module,
		nodes:    make(map[string]*models.Node),
		edgeByID: make(map[string]*models.Edge),
		outgoing: make(map[string][]*models.Edge),
	}
}

// Module returns the module context the graph is scoped to.
func (g *Graph) Module() models.ModuleContext {
	return g.module
}

// NewNodeID generates a node identifier unique for the lifetime of the
// editor process. UUID-backed so collisions across sessions are negligible.
func NewNodeID() string {
	return "node-" + uuid.New().String()
}

// AddNode instantiates a node of the given kind at the given position,
// pulling default configuration from the registry. The new node starts
// unconfigured.
func (g *Graph) AddNode(kind models.NodeKind, pos models.Position) (*models.Node, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid node kind %q", kind)
	}

	node := &models.Node{
		ID:            NewNodeID(),
		Kind:          kind,
		Position:      pos,
		Label:         g.registry.KindMeta(kind).Label,
		ModuleContext: g.module,
		IsConfigured:  false,
		Config:        g.registry.DefaultConfig(kind, g.module),
	}

	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)

	return node, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*models.Node, error) {
	node, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, ErrNodeNotFound)
	}

	return node, nil
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*models.Node {
	nodes := make([]*models.Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}

	return nodes
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*models.Edge {
	return append([]*models.Edge(nil), g.edges...)
}

// Outgoing returns the edges leaving a node in insertion order.
func (g *Graph) Outgoing(nodeID string) []*models.Edge {
	return append([]*models.Edge(nil), g.outgoing[nodeID]...)
}

// UpdateNodeConfig replaces the node's config variant. The variant kind
// must match the node's kind, and the node id must exist: a stale id is
// surfaced as ErrNodeNotFound rather than silently ignored.
func (g *Graph) UpdateNodeConfig(nodeID string, config models.NodeConfig, configured bool) error {
	node, ok := g.nodes[nodeID]
	if !ok {
		return fmt.Errorf("update config for node %s: %w", nodeID, ErrNodeNotFound)
	}

	if config.Kind() != node.Kind {
		return fmt.Errorf("node %s is %s, config is %s: %w", nodeID, node.Kind, config.Kind(), ErrKindMismatch)
	}

	node.Config = config
	node.IsConfigured = configured

	return nil
}

// UpdateNodeMeta updates the node's label and description.
func (g *Graph) UpdateNodeMeta(nodeID, label, description string) error {
	node, ok := g.nodes[nodeID]
	if !ok {
		return fmt.Errorf("update meta for node %s: %w", nodeID, ErrNodeNotFound)
	}

	if label != "" {
		node.Label = label
	}

	node.Description = description

	return nil
}

// MoveNode updates the node's canvas position.
func (g *Graph) MoveNode(nodeID string, pos models.Position) error {
	node, ok := g.nodes[nodeID]
	if !ok {
		return fmt.Errorf("move node %s: %w", nodeID, ErrNodeNotFound)
	}

	node.Position = pos

	return nil
}

// DeleteNode removes the node and cascades to every edge incident to it,
// so the edge set never holds dangling references.
func (g *Graph) DeleteNode(nodeID string) error {
	if _, ok := g.nodes[nodeID]; !ok {
		return fmt.Errorf("delete node %s: %w", nodeID, ErrNodeNotFound)
	}

	delete(g.nodes, nodeID)

	for i, id := range g.order {
		if id == nodeID {
			g.order = append(g.order[:i], g.order[i+1:]...)

			break
		}
	}

	kept := g.edges[:0]

	for _, e := range g.edges {
		if e.Source == nodeID || e.Target == nodeID {
			delete(g.edgeByID, e.ID)

			continue
		}

		kept = append(kept, e)
	}

	g.edges = kept
	g.rebuildOutgoing()

	return nil
}

// Connect appends a directed edge. It rejects with a ConnectionError when
// either endpoint is missing, when the target is a trigger node, or when
// the same (source, target, handle) triple is already connected.
func (g *Graph) Connect(source, target, sourceHandle string) (*models.Edge, error) {
	if _, ok := g.nodes[source]; !ok {
		return nil, &ConnectionError{Source: source, Target: target, Reason: "source node does not exist"}
	}

	targetNode, ok := g.nodes[target]
	if !ok {
		return nil, &ConnectionError{Source: source, Target: target, Reason: "target node does not exist"}
	}

	if targetNode.Kind == models.KindTrigger {
		return nil, &ConnectionError{Source: source, Target: target, Reason: "trigger nodes accept no incoming connections"}
	}

	id := models.EdgeID(source, target, sourceHandle)
	if _, exists := g.edgeByID[id]; exists {
		return nil, &ConnectionError{Source: source, Target: target, Reason: "connection already exists"}
	}

	edge := &models.Edge{
		ID:           id,
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
	}

	g.edges = append(g.edges, edge)
	g.edgeByID[id] = edge
	g.outgoing[source] = append(g.outgoing[source], edge)

	return edge, nil
}

// Disconnect removes a single edge by id. No cascade.
func (g *Graph) Disconnect(edgeID string) error {
	if _, ok := g.edgeByID[edgeID]; !ok {
		return fmt.Errorf("disconnect %s: %w", edgeID, ErrEdgeNotFound)
	}

	delete(g.edgeByID, edgeID)

	for i, e := range g.edges {
		if e.ID == edgeID {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)

			break
		}
	}

	g.rebuildOutgoing()

	return nil
}

// Load replaces the graph contents wholesale from persisted collections and
// rescopes the graph to the workflow's module, so nodes added afterwards
// pick up that module's vocabulary.
func (g *Graph) Load(module models.ModuleContext, nodes []*models.Node, edges []*models.Edge) {
	g.module = module
	g.nodes = make(map[string]*models.Node, len(nodes))
	g.order = g.order[:0]
	g.edges = g.edges[:0]
	g.edgeByID = make(map[string]*models.Edge, len(edges))

	for _, n := range nodes {
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	for _, e := range edges {
		g.edges = append(g.edges, e)
		g.edgeByID[e.ID] = e
	}

	g.rebuildOutgoing()
}

// Clear empties the graph, keeping its module scope.
func (g *Graph) Clear() {
	g.Load(g.module, nil, nil)
}

func (g *Graph) rebuildOutgoing() {
	g.outgoing = make(map[string][]*models.Edge, len(g.nodes))
	for _, e := range g.edges {
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
	}
}
