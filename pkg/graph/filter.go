package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/tidwall/gjson"
)

// Filter evaluation errors.
var (
	ErrInvalidFilter    = errors.New("invalid filter expression")
	ErrFilterNotBoolean = errors.New("filter expression must evaluate to a boolean")
)

// Filter evaluates boolean expressions against graph nodes. Expressions see
// the node's identity and its scalar rows:
//
//	kind == "object" && depth > 2
//	rows.price > 10
//	label contains "user"
//
// Compiled programs are cached per expression. A Filter is used from a single
// goroutine.
type Filter struct {
	programs map[string]*vm.Program
}

// NewFilter creates a filter with an empty program cache.
func NewFilter() *Filter {
	return &Filter{programs: make(map[string]*vm.Program)}
}

// Match evaluates the expression against one node.
func (f *Filter) Match(ctx context.Context, expression string, n *Node) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	program, err := f.compile(expression)
	if err != nil {
		return false, err
	}

	result, err := vm.Run(program, nodeEnv(n))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %T", ErrFilterNotBoolean, result)
	}
	return b, nil
}

// Apply evaluates the expression against every node in the graph and returns
// the matches in document order.
func (f *Filter) Apply(ctx context.Context, g *Graph, expression string) ([]*Node, error) {
	var out []*Node
	for _, n := range g.Nodes() {
		ok, err := f.Match(ctx, expression, n)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *Filter) compile(expression string) (*vm.Program, error) {
	if p, ok := f.programs[expression]; ok {
		return p, nil
	}
	p, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	f.programs[expression] = p
	return p, nil
}

// nodeEnv builds the expression environment for a node. Scalar rows surface
// under "rows" with their parsed values so numeric and boolean comparisons
// work without casts.
func nodeEnv(n *Node) map[string]interface{} {
	rows := make(map[string]interface{}, len(n.Rows))
	for _, row := range n.Rows {
		if !row.HasKey || row.Kind.IsContainer() {
			continue
		}
		rows[row.Key] = gjson.Parse(row.Raw).Value()
	}
	return map[string]interface{}{
		"id":       n.ID,
		"label":    n.Label,
		"kind":     string(n.Kind),
		"depth":    len(n.Path),
		"path":     n.Path.String(),
		"rowCount": len(n.Rows),
		"rows":     rows,
	}
}
