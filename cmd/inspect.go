package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jsphweid/engraver/model"
	"github.com/spf13/cobra"
)

var inspectChords bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectChords, "chords", false, "list every chord")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Prints a song's document tree",
	Long:  `Refreshes a song and prints its bars, tracks and the cached durations of every non-empty phrase.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSong(args[0])
		if err != nil {
			return err
		}
		n, err := s.Refresh(model.RefreshOptions{FixTies: true})
		if err != nil {
			return err
		}
		inspect(cmd.OutOrStdout(), s, inspectChords)
		fmt.Fprintf(cmd.OutOrStdout(), "%d phrases refreshed\n", n)
		return nil
	},
}

func inspect(w io.Writer, s *model.Song, chords bool) {
	title := s.Meta.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(w, "%s [%s]\n", title, s.ID)
	for _, b := range s.Bars() {
		var marks []string
		if b.TimeSignatureChanged() {
			marks = append(marks, b.TimeSignature.String())
		}
		if b.KeyChanged() {
			marks = append(marks, b.Key.String())
		}
		if b.Rehearsal != "" {
			marks = append(marks, "["+b.Rehearsal+"]")
		}
		fmt.Fprintf(w, "bar %d: %d ticks %s\n", b.Index()+1, b.Ticks(), strings.Join(marks, " "))
	}
	for _, t := range s.Tracks() {
		fmt.Fprintf(w, "track %d %q (%s, %d staves)\n", t.Index(), t.Name, t.Type, t.StaffCount())
		for _, v := range t.Voices() {
			for _, p := range v.Phrases() {
				if p.IsEmpty() {
					continue
				}
				fmt.Fprintf(w, "  voice %d bar %d: %d chords, %d/%d ticks\n",
					v.Index(), p.Index()+1, p.ChordCount(), p.Duration(), p.Bar().Ticks())
				if !chords {
					continue
				}
				for _, c := range p.Chords() {
					var notes []string
					for _, n := range c.Notes() {
						notes = append(notes, n.Pitch.String())
					}
					if c.IsRest() {
						notes = []string{"rest"}
					}
					fmt.Fprintf(w, "    @%d +%d %s\n", c.Offset(), c.Duration(), strings.Join(notes, " "))
				}
			}
		}
	}
}
