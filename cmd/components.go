package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/fiberscope/internal/inspect"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/output"
	"github.com/mj1618/fiberscope/internal/platform"
	"github.com/mj1618/fiberscope/internal/shots"
	"github.com/mj1618/fiberscope/internal/spatial"
	"github.com/spf13/cobra"
)

var componentsCmd = &cobra.Command{
	Use:   "components <url>",
	Short: "Show the component tree and ancestry for the element at a point",
	Long: `Resolve the element at a viewport point and print the component subtree that
rendered it, flattened in depth-first order, along with its ancestor stack.

Examples:
  fiberscope components http://localhost:3000 --point 120,340
  fiberscope components http://localhost:3000 --point 120,340 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runComponents,
}

func init() {
	rootCmd.AddCommand(componentsCmd)
	addPageFlags(componentsCmd)
	componentsCmd.Flags().String("point", "", "Viewport point x,y")
	_ = componentsCmd.MarkFlagRequired("point")
}

func runComponents(cmd *cobra.Command, args []string) error {
	pointStr, _ := cmd.Flags().GetString("point")
	x, y, err := platform.ParsePoint(pointStr)
	if err != nil {
		return fmt.Errorf("--point: %w", err)
	}

	ctx := cmd.Context()
	page, cleanup, err := openPage(ctx, cmd, args[0], true)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := page.Snapshot(ctx)
	if err != nil {
		return err
	}
	n := spatial.ResolveAtPoint(snap.Doc, x, y)
	if n == nil {
		return fmt.Errorf("no element at %g,%g", x, y)
	}

	store, err := shots.NewStore(1)
	if err != nil {
		return err
	}
	pipeline := inspect.NewPipeline(appConfig, page, store)
	tree, stack := pipeline.Components(snap, n)
	target := inspect.BuildTarget(n)
	return output.Print(output.ComponentsResult{
		URL:        snap.Doc.URL,
		TS:         time.Now().Unix(),
		Target:     &target,
		Runtime:    snap.RuntimeVersion,
		Components: model.FlattenComponents(tree),
		Stack:      stack,
	})
}
