package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/engraver/config"
	"github.com/jsphweid/engraver/layout"
	"github.com/jsphweid/engraver/model"
	"github.com/spf13/cobra"
)

var layoutOpts struct {
	strategy string
	style    string
	bars     int
	view     int
	written  bool
}

func init() {
	f := layoutCmd.Flags()
	f.StringVar(&layoutOpts.strategy, "strategy", "", "flexible, fixed, manual or horizontal")
	f.StringVar(&layoutOpts.style, "style", "", "style name")
	f.IntVar(&layoutOpts.bars, "bars", 0, "bars per system for fixed and manual")
	f.IntVar(&layoutOpts.view, "view", 0, "score view index")
	f.BoolVar(&layoutOpts.written, "written", false, "show transposing tracks at written pitch")
	rootCmd.AddCommand(layoutCmd)
}

var layoutCmd = &cobra.Command{
	Use:   "layout FILE",
	Short: "Lays out a song",
	Long:  `Refreshes a song, lays out one of its views and prints the systems of every page.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSong(args[0])
		if err != nil {
			return err
		}
		c := cfg
		if layoutOpts.strategy != "" {
			c.Layout.Strategy = layoutOpts.strategy
		}
		if layoutOpts.style != "" {
			c.Layout.Style = layoutOpts.style
		}
		if layoutOpts.bars > 0 {
			c.Layout.BarsPerSystem = layoutOpts.bars
		}
		if layoutOpts.written {
			c.Layout.Written = true
		}
		sc, err := layoutSong(s, layoutOpts.view, c)
		if err != nil {
			return err
		}
		printScore(cmd.OutOrStdout(), sc)
		return nil
	},
}

// layoutSong refreshes s and lays out view i with the configured
// strategy and styles. The song's view is left untouched.
func layoutSong(s *model.Song, i int, c config.Config) (*layout.Score, error) {
	v := s.View(i)
	if v == nil {
		return nil, fmt.Errorf("song has no view %d", i)
	}
	if _, err := s.Refresh(model.RefreshOptions{FixTies: true}); err != nil {
		return nil, err
	}
	view := *v
	c.ApplyView(&view)
	sc, err := layout.NewScore(s, &view, c.Registry())
	if err != nil {
		return nil, err
	}
	return sc, sc.Layout()
}

func printScore(w io.Writer, sc *layout.Score) {
	fmt.Fprintf(w, "%s: %s, style %s, %d systems, %d pages\n",
		sc.View.Name, sc.Strategy.Kind(), sc.Style.Name, len(sc.Systems), len(sc.Pages))
	for _, p := range sc.Pages {
		fmt.Fprintf(w, "page %d (%.0fx%.0f)\n", p.Index+1, p.Width, p.Height)
		for _, sys := range p.Systems {
			fmt.Fprintf(w, "  system %d: bars %d-%d, %d slices, %d staves, stretch %.2f\n",
				sys.Index+1, sys.FirstBar()+1, sys.LastBar()+1, len(sys.Slices), len(sys.Staves), sys.Stretch)
		}
	}
}
