// Package cli wires the cardsheet command line.
package cli

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"cardsheet/internal/card"
	"cardsheet/internal/layout"
	"cardsheet/internal/scan"
	"cardsheet/internal/sheet"
)

var (
	flagInput  string
	flagOutput string
	flagPreset string

	flagPageW float64
	flagPageH float64
	flagCols  int
	flagRows  int
	flagCardW float64
	flagCardH float64
	flagDPI   int
	flagCrop  int
	flagBleed float64
	flagLine  float64

	flagLimit int
	flagQR    string
)

var rootCmd = &cobra.Command{
	Use:   "cardsheet",
	Short: "Tile card images into a print-ready PDF",
	Long: `cardsheet scans a directory of PNG card faces, normalizes each one to a
fixed card size, tiles them into a grid across as many pages as needed,
draws cut guides at every card boundary and writes a single PDF.`,
	Args:         cobra.NoArgs,
	RunE:         runSheet,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagInput, "input", "i", ".", "directory of .png card faces")
	f.StringVarP(&flagOutput, "output", "o", "cards.pdf", "output PDF path")
	f.StringVar(&flagPreset, "layout", "", "YAML layout preset file")
	f.Float64Var(&flagPageW, "page-width", 595, "page width in points")
	f.Float64Var(&flagPageH, "page-height", 842, "page height in points")
	f.IntVar(&flagCols, "columns", 3, "cards per row")
	f.IntVar(&flagRows, "rows", 3, "card rows per page")
	f.Float64Var(&flagCardW, "card-width", 63, "card width in millimeters")
	f.Float64Var(&flagCardH, "card-height", 88, "card height in millimeters")
	f.IntVar(&flagDPI, "dpi", 300, "raster resolution of normalized cards")
	f.IntVar(&flagCrop, "crop", 0, "pixels stripped from each source edge")
	f.Float64Var(&flagBleed, "bleed", 10, "guide-line overhang in points")
	f.Float64Var(&flagLine, "line-width", 1, "guide-line width in points")
	f.IntVarP(&flagLimit, "limit", "n", 0, "use only the first n files (0 = all)")
	f.StringVar(&flagQR, "qr", "", "stamp a QR code for this URL after the last card")
}

// Execute runs the root command, exiting nonzero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildLayout starts from the preset file (or the defaults) and lets any
// flag given explicitly on the command line win.
func buildLayout(cmd *cobra.Command) (layout.Layout, error) {
	l := layout.Default()
	if flagPreset != "" {
		var err error
		if l, err = layout.Load(flagPreset); err != nil {
			return layout.Layout{}, err
		}
	}
	set := cmd.Flags().Changed
	if set("page-width") {
		l.PageWidth = flagPageW
	}
	if set("page-height") {
		l.PageHeight = flagPageH
	}
	if set("columns") {
		l.Columns = flagCols
	}
	if set("rows") {
		l.Rows = flagRows
	}
	if set("card-width") {
		l.CardWidthMM = flagCardW
	}
	if set("card-height") {
		l.CardHeightMM = flagCardH
	}
	if set("dpi") {
		l.DPI = flagDPI
	}
	if set("crop") {
		l.CropPx = flagCrop
	}
	if set("bleed") {
		l.Bleed = flagBleed
	}
	if set("line-width") {
		l.LineWidth = flagLine
	}
	return l, nil
}

func runSheet(cmd *cobra.Command, _ []string) error {
	lay, err := buildLayout(cmd)
	if err != nil {
		return err
	}
	geom, err := lay.Geometry()
	if err != nil {
		return err
	}

	log.Printf("scanning %s", flagInput)
	names, err := scan.PNGs(flagInput, flagLimit)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		log.Printf("no .png files in %s, nothing to do", flagInput)
		return nil
	}
	log.Printf("found %d cards, %d per page", len(names), geom.PerPage())

	builder := sheet.NewBuilder(geom)
	stream := card.NewStream(flagInput, names, geom)
	for stream.Next() {
		if err := builder.Add(stream.Card(), stream.Name()); err != nil {
			return err
		}
		log.Printf("  [%d/%d] %s -> page %d", builder.CardCount(), len(names), stream.Name(), builder.PageCount())
	}
	if err := stream.Err(); err != nil {
		return err
	}

	if flagQR != "" {
		if err := builder.StampQR(flagQR); err != nil {
			return err
		}
		log.Printf("stamped QR link %s", flagQR)
	}

	log.Printf("writing %d pages to %s", builder.PageCount(), flagOutput)
	if err := builder.WriteFile(flagOutput); err != nil {
		return err
	}
	log.Printf("done: %s", flagOutput)
	return nil
}
