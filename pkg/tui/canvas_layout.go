package tui

import (
	"errors"
	"fmt"
)

// Layout constants
const (
	horizontalSpacing = 4  // Characters between sibling nodes horizontally
	verticalSpacing   = 2  // Lines between depth layers vertically
	layoutStartX      = 10 // Starting X position for layout
	layoutStartY      = 5  // Starting Y position for layout
)

// Zoom limits
const (
	minZoomLevel = 0.5
	maxZoomLevel = 2.0
)

// ErrInvalidZoomLevel indicates a zoom outside the supported range
var ErrInvalidZoomLevel = errors.New("zoom level out of range")

// AutoLayout positions nodes in a hierarchical layout.
// Each document depth becomes a horizontal layer; within a layer nodes keep
// document order so children stay under their parent's side of the tree.
func (c *Canvas) AutoLayout() {
	if len(c.nodes) == 0 {
		return
	}

	// Group node IDs by depth, preserving document order within each layer
	layers := make(map[int][]string)
	maxLayer := 0
	for _, nodeID := range c.order {
		cn := c.nodes[nodeID]
		depth := len(cn.node.Path)
		layers[depth] = append(layers[depth], nodeID)
		if depth > maxLayer {
			maxLayer = depth
		}
	}

	// Assign positions layer by layer
	currentY := layoutStartY
	for layer := 0; layer <= maxLayer; layer++ {
		ids := layers[layer]
		if len(ids) == 0 {
			continue
		}

		currentX := layoutStartX
		maxHeight := 0
		for _, nodeID := range ids {
			cn := c.nodes[nodeID]
			cn.position = Position{X: currentX, Y: currentY}
			currentX += cn.width + horizontalSpacing
			if cn.height > maxHeight {
				maxHeight = cn.height
			}
		}

		currentY += maxHeight + verticalSpacing
	}

	c.routeAllEdges()
}

// Pan moves the viewport by the given deltas in logical coordinates.
// The viewport never goes negative.
func (c *Canvas) Pan(deltaX, deltaY int) {
	c.ViewportX += deltaX
	c.ViewportY += deltaY

	if c.ViewportX < 0 {
		c.ViewportX = 0
	}
	if c.ViewportY < 0 {
		c.ViewportY = 0
	}
}

// Zoom adjusts the zoom level by delta, keeping the viewport center stable.
// Returns ErrInvalidZoomLevel when the result would leave the supported range.
func (c *Canvas) Zoom(delta float64) error {
	newZoom := c.ZoomLevel + delta
	if newZoom < minZoomLevel || newZoom > maxZoomLevel {
		return fmt.Errorf("%w: %.2f", ErrInvalidZoomLevel, newZoom)
	}

	// Logical point currently at the center of the screen
	oldCenterX := float64(c.ViewportX) + float64(c.Width)/(2*c.ZoomLevel)
	oldCenterY := float64(c.ViewportY) + float64(c.Height)/(2*c.ZoomLevel)

	c.ZoomLevel = newZoom

	c.ViewportX = int(oldCenterX - float64(c.Width)/(2*newZoom))
	c.ViewportY = int(oldCenterY - float64(c.Height)/(2*newZoom))
	if c.ViewportX < 0 {
		c.ViewportX = 0
	}
	if c.ViewportY < 0 {
		c.ViewportY = 0
	}

	return nil
}

// FitAll adjusts zoom and viewport so every node is visible
func (c *Canvas) FitAll() {
	if len(c.nodes) == 0 || c.Width <= 0 || c.Height <= 0 {
		return
	}

	minX, minY := int(^uint(0)>>1), int(^uint(0)>>1)
	maxX, maxY := 0, 0
	for _, cn := range c.nodes {
		if cn.position.X < minX {
			minX = cn.position.X
		}
		if cn.position.Y < minY {
			minY = cn.position.Y
		}
		if right := cn.position.X + cn.width; right > maxX {
			maxX = right
		}
		if bottom := cn.position.Y + cn.height; bottom > maxY {
			maxY = bottom
		}
	}

	boundsWidth := maxX - minX
	boundsHeight := maxY - minY
	if boundsWidth <= 0 || boundsHeight <= 0 {
		return
	}

	// 0.9 leaves a margin around the fitted content
	zoomX := float64(c.Width) / float64(boundsWidth)
	zoomY := float64(c.Height) / float64(boundsHeight)
	zoom := zoomX
	if zoomY < zoom {
		zoom = zoomY
	}
	zoom *= 0.9

	if zoom < minZoomLevel {
		zoom = minZoomLevel
	}
	if zoom > maxZoomLevel {
		zoom = maxZoomLevel
	}
	c.ZoomLevel = zoom

	// Center the content bounds in the viewport
	centerX := float64(minX+maxX) / 2
	centerY := float64(minY+maxY) / 2
	c.ViewportX = int(centerX - float64(c.Width)/(2*zoom))
	c.ViewportY = int(centerY - float64(c.Height)/(2*zoom))
	if c.ViewportX < 0 {
		c.ViewportX = 0
	}
	if c.ViewportY < 0 {
		c.ViewportY = 0
	}
}

// ResetView restores the default viewport and zoom
func (c *Canvas) ResetView() {
	c.ViewportX = 0
	c.ViewportY = 0
	c.ZoomLevel = 1.0
}

// Resize updates the canvas dimensions after a terminal resize
func (c *Canvas) Resize(width, height int) {
	c.Width = width
	c.Height = height
}
