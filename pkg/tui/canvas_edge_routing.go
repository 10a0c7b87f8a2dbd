package tui

import "github.com/dshills/jsongraph/pkg/graph"

// canvasEdge wraps a document edge with routing information
type canvasEdge struct {
	// edge is the parent-to-child document edge
	edge *graph.Edge
	// routingPoints are the waypoints of the orthogonal path,
	// including both endpoints
	routingPoints []Position
}

// routeAllEdges recomputes routing for every edge after a layout change
func (c *Canvas) routeAllEdges() {
	for _, e := range c.edges {
		c.routeEdge(e)
	}
}

// routeEdge calculates the routing points for an edge using orthogonal routing.
// Algorithm:
// 1. Start at source node center-bottom
// 2. End at target node center-top
// 3. If aligned vertically: straight line
// 4. If target is below: vertical → horizontal → vertical via the midpoint
// 5. If target is above: drop two lines, cross over, then rise to the target
func (c *Canvas) routeEdge(edge *canvasEdge) {
	fromNode, fromExists := c.nodes[edge.edge.From]
	toNode, toExists := c.nodes[edge.edge.To]

	if !fromExists || !toExists {
		// Nodes not placed yet, skip routing
		edge.routingPoints = make([]Position, 0)
		return
	}

	start := Position{
		X: fromNode.position.X + fromNode.width/2,
		Y: fromNode.position.Y + fromNode.height,
	}
	end := Position{
		X: toNode.position.X + toNode.width/2,
		Y: toNode.position.Y - 1,
	}

	if start.X == end.X {
		edge.routingPoints = []Position{start, end}
		return
	}

	if end.Y > start.Y {
		midY := start.Y + (end.Y-start.Y)/2
		edge.routingPoints = []Position{
			start,
			{X: start.X, Y: midY},
			{X: end.X, Y: midY},
			end,
		}
		return
	}

	// Backward edge: route below the source before crossing over
	const gapY = 2
	dropY := start.Y + gapY
	edge.routingPoints = []Position{
		start,
		{X: start.X, Y: dropY},
		{X: end.X, Y: dropY},
		end,
	}
}
