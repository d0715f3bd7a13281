package extensions

import (
	"log/slog"

	"github.com/m1gwings/treedrawer/tree"

	derive "github.com/derive-fn/derive-go"
)

// TreeViewExtension logs a drawing of the component tree after each render
// pass: the scope as root, mounted components as children and the signals
// each component watches as leaves.
type TreeViewExtension struct {
	derive.BaseExtension
	logger *slog.Logger
}

// NewTreeViewExtension creates a tree view extension writing to the given handler
func NewTreeViewExtension(handler slog.Handler) *TreeViewExtension {
	return &TreeViewExtension{
		BaseExtension: derive.NewBaseExtension("treeview"),
		logger:        slog.New(handler),
	}
}

// OnPassEnd draws the current component tree
func (e *TreeViewExtension) OnPassEnd(scope *derive.Scope, rec *derive.PassRecord, err error) error {
	e.logger.Info("component tree",
		"seq", rec.Seq,
		"tree", DrawScope(scope),
	)
	return nil
}

// DrawScope renders the scope's component tree as ASCII art
func DrawScope(scope *derive.Scope) string {
	root := tree.NewTree(tree.NodeString("scope"))

	for i, c := range scope.Components() {
		root.AddChild(tree.NodeString(componentName(c)))
		branch, err := root.Child(i)
		if err != nil {
			continue
		}
		for _, sig := range scope.Watched(c) {
			branch.AddChild(tree.NodeString(signalName(sig)))
		}
	}

	return root.String()
}
