// This file contains the logic for parsing value type expressions (e.g.
// `float4`, `"bool"`, `"float|float2"`) into port tags.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// typeExprToTag converts a type expression into its port.Tag. Both bare
// keywords (`type = float2`) and strings (`type = "float2"`) are accepted.
func typeExprToTag(ctx context.Context, expr hcl.Expression) (port.Tag, error) {
	logger := ctxlog.FromContext(ctx)

	var name string
	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return 0, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		name = v.Traversal.RootName()
		logger.Debug("Parsing type expression as a keyword.", "keyword", name)

	default:
		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return 0, fmt.Errorf("invalid type expression: %w", diags)
		}
		str, err := convert.Convert(val, cty.String)
		if err != nil || str.IsNull() || !str.IsKnown() {
			return 0, fmt.Errorf("type must be a keyword or a string, got %s", val.Type().FriendlyName())
		}
		name = str.AsString()
		logger.Debug("Parsing type expression as a string.", "type", name)
	}

	tag, err := port.ParseTag(name)
	if err != nil {
		return 0, err
	}
	return tag, nil
}

// inferTag picks the tag of a parameter declared without a type.
func inferTag(v any) port.Tag {
	switch x := v.(type) {
	case bool:
		return port.Bool
	case []any:
		switch len(x) {
		case 2:
			return port.Float2
		case 3:
			return port.Float3
		}
		return port.Float4
	case map[string]any:
		return port.Float4
	}
	return port.Float
}
