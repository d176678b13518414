package cmd

import (
	"time"

	"github.com/mj1618/fiberscope/internal/output"
	"github.com/mj1618/fiberscope/internal/stream"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine <url>",
	Short: "List components recovered from server-rendering stream payloads",
	Long: `Scan a page's inline scripts and flight buffers for serialized component
references and print the unique components found, with any source path.

Useful for production builds where the instance graph carries no source
information.

Examples:
  fiberscope mine https://example.com
  fiberscope mine https://example.com --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runMine,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	addPageFlags(mineCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
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
	comps := stream.Mine(snap.Sources)
	if comps == nil {
		comps = []stream.Component{}
	}
	return output.Print(output.MineResult{
		URL:        snap.Doc.URL,
		TS:         time.Now().Unix(),
		Components: comps,
	})
}
