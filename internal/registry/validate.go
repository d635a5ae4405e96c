package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/node"
)

// ErrUnknownType is returned when a document names an unregistered type.
var ErrUnknownType = errors.New("unknown node type")

// Validate performs a parity check between registered node types and
// processors: every type must construct, its node must report the
// registered identifier, and every image operator must have a processor.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	used := make(map[string]bool)
	for _, typeID := range r.Types() {
		n, err := r.Create(typeID, 256, 256, node.RGBA)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if n.Type != typeID {
			errs = append(errs, fmt.Sprintf("type '%s': factory built a node of type '%s'", typeID, n.Type))
		}
		op, ok := n.Kind.(*node.Operator)
		if !ok {
			continue
		}
		if op.Op == node.OpPixelProcessor {
			continue
		}
		used[op.Op] = true
		if _, ok := r.processors[op.Op]; !ok {
			errs = append(errs, fmt.Sprintf("type '%s': no processor registered for operator '%s'", typeID, op.Op))
		}
	}

	for op := range r.processors {
		if !used[op] {
			logger.Warn("Processor registered for an operator no node type uses.", "op", op)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validated.", "types", len(r.entries), "processors", len(r.processors))
	return nil
}
