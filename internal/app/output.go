package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/eval"
)

// FragmentExt is the extension of written fragment shaders.
const FragmentExt = ".frag"

// submitShader is the engine's shader sink: it writes the fragment to the
// output directory and publishes the compile event.
func (a *App) submitShader(ctx context.Context, sh eval.Shader) error {
	var errs []error
	if a.config.OutputDir != "" && sh.OK {
		path, err := writeShader(a.config.OutputDir, sh)
		if err != nil {
			errs = append(errs, err)
		} else {
			ctxlog.FromContext(ctx).Info("Shader written.", "path", path, "graph", sh.Graph, "function", sh.Function)
		}
	}
	if a.notifier != nil {
		errs = append(errs, a.notifier.Submit(ctx, sh))
	}
	return errors.Join(errs...)
}

// ShaderFileName names the file a shader is written to.
func ShaderFileName(sh eval.Shader) string {
	name := sh.Function
	if name == "" {
		name = sh.NodeID
	}
	return sanitize(sh.Graph) + "_" + sanitize(name) + FragmentExt
}

func writeShader(dir string, sh eval.Shader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, ShaderFileName(sh))
	if err := os.WriteFile(path, []byte(sh.Fragment), 0o644); err != nil {
		return "", fmt.Errorf("failed to write shader: %w", err)
	}
	return path, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, s)
}
