package cmd

import (
	"fmt"

	"github.com/mj1618/fiberscope/internal/inspect"
	"github.com/mj1618/fiberscope/internal/platform"
	"github.com/mj1618/fiberscope/internal/shots"
	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select <url>",
	Short: "Extract elements at a point or inside a rectangle",
	Long: `Open a URL headless, select elements without an operator and extract them.

--point selects the topmost element under viewport coordinates x,y.
--rect selects every element intersecting the rectangle between two corners.

Examples:
  fiberscope select http://localhost:3000 --point 120,340
  fiberscope select http://localhost:3000 --rect 0,0,800,600 --output capture.json
  fiberscope select http://localhost:3000 --point 120,340 --format json --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)
	addPageFlags(selectCmd)
	addExtractionFlags(selectCmd)
	selectCmd.Flags().String("point", "", "Viewport point x,y")
	selectCmd.Flags().String("rect", "", "Viewport rectangle corners x1,y1,x2,y2")
	selectCmd.MarkFlagsMutuallyExclusive("point", "rect")
	selectCmd.MarkFlagsOneRequired("point", "rect")
}

func runSelect(cmd *cobra.Command, args []string) error {
	applyExtractionFlags(cmd)
	pointStr, _ := cmd.Flags().GetString("point")
	rectStr, _ := cmd.Flags().GetString("rect")

	// Parse before launching the browser so bad input fails fast.
	var x, y float64
	var corners [4]float64
	var err error
	if pointStr != "" {
		if x, y, err = platform.ParsePoint(pointStr); err != nil {
			return fmt.Errorf("--point: %w", err)
		}
	} else if corners, err = platform.ParseRect(rectStr); err != nil {
		return fmt.Errorf("--rect: %w", err)
	}

	ctx := cmd.Context()
	page, cleanup, err := openPage(ctx, cmd, args[0], true)
	if err != nil {
		return err
	}
	defer cleanup()

	store, err := shots.NewStore(shots.DefaultCapacity)
	if err != nil {
		return err
	}
	registry := inspect.NewRegistry()
	sess, _, err := newSession(registry, page, store)
	if err != nil {
		return err
	}
	defer registry.Close(page.TargetID())
	if err := sess.Refresh(ctx); err != nil {
		return err
	}

	if pointStr != "" {
		if _, ok := sess.Click(x, y); !ok {
			return fmt.Errorf("no element at %g,%g", x, y)
		}
	} else if targets := sess.Drag(corners[0], corners[1], corners[2], corners[3]); len(targets) == 0 {
		return fmt.Errorf("no element inside %g,%g,%g,%g", corners[0], corners[1], corners[2], corners[3])
	}

	ex, err := sess.Confirm(ctx)
	if err != nil {
		return err
	}
	return emitExtraction(cmd, ex, store)
}
