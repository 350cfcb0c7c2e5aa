package cmd

import (
	"fmt"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <level> <kind>",
	Short: "Re-export a harvested collection from its CSV file",
	Long: `Render reads {output_dir}/{kind}/{level}_{kind}_list.csv written by an earlier
harvest and writes the requested exports again without fetching anything.
Grammar flashcards and per-record notes saved beside the CSV are picked up
as well.

Examples:
  senseiharvest render n5 vocabulary --formats markdown
  senseiharvest render n3 grammar --formats pdf`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory")
	renderCmd.Flags().StringSliceVar(&flagFormats, "formats", nil, "Export formats: json, markdown, pdf")
}

func runRender(cmd *cobra.Command, args []string) error {
	level, err := core.ParseLevel(args[0])
	if err != nil {
		return err
	}
	kind, err := core.ParseLessonKind(args[1])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if len(cfg.Output.Formats) == 0 {
		return fmt.Errorf("no export format configured: pass --formats json,markdown,pdf")
	}

	writer, err := newWriter(cfg)
	if err != nil {
		return err
	}

	id := core.CollectionID{Level: level, Kind: kind}
	c, err := writer.ReadCollection(id)
	if err != nil {
		return err
	}
	if err := writer.Emit(cmd.Context(), c, c.MediaFiles()); err != nil {
		return err
	}
	for _, r := range writer.Renderers {
		fmt.Fprintf(cmd.OutOrStdout(), "  ✓ Written: %s\n", writer.RenderPath(id, r.Extension()))
	}
	return nil
}
