package cmd

import (
	"fmt"

	"github.com/jsphweid/engraver/store"
	"github.com/jsphweid/engraver/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [DIR]",
	Short: "Creates a report",
	Long:  `Counts the songs, bars, tracks and bytes of a song store. DIR defaults to the configured store.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Store.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		st, err := store.NewFileStore(dir, nil)
		if err != nil {
			return err
		}
		stats, err := st.Stats()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "songs: %v\n", stats.Songs)
		fmt.Fprintf(out, "bars: %v\n", stats.Bars)
		fmt.Fprintf(out, "tracks: %v\n", stats.Tracks)
		fmt.Fprintf(out, "bytes: %v\n", stats.Bytes)
		if stats.Songs > 0 {
			fmt.Fprintf(out, "bytes per bar: %.1f\n", float64(stats.Bytes)/float64(util.Max(stats.Bars, 1)))
		}
		return nil
	},
}
