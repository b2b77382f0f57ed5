package pipeline

import (
	"context"
	"time"

	"github.com/treelinehq/treeline/pkg/errors"
	treeio "github.com/treelinehq/treeline/pkg/io"
	"github.com/treelinehq/treeline/pkg/observability"
	"github.com/treelinehq/treeline/pkg/tree"
)

// Normalize runs the normalize stage without caching: it loads the
// input document and builds the canonical tree.
//
// An input that decodes but is not object-like (a bare array, string,
// or number) normalizes to no tree at all and yields an EMPTY_TREE
// error, because every downstream stage needs a root.
func Normalize(ctx context.Context, opts Options) (*tree.Node, error) {
	if err := opts.ValidateForNormalize(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnNormalizeStart(ctx)

	doc := opts.Document
	if doc == nil {
		var err error
		doc, err = treeio.ImportDocument(opts.Input, opts.InputFormat)
		if err != nil {
			observability.Pipeline().OnNormalizeComplete(ctx, 0, time.Since(start), err)
			return nil, err
		}
	}

	root := tree.Normalize(doc)
	if root == nil {
		err := errors.New(errors.ErrCodeEmptyTree, "input is not a tree")
		observability.Pipeline().OnNormalizeComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}

	opts.Logger.Debug("normalized tree", "nodes", root.Count())
	observability.Pipeline().OnNormalizeComplete(ctx, root.Count(), time.Since(start), nil)
	return root, nil
}
