package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jsphweid/engraver/model"
	"github.com/jsphweid/engraver/store"
	"github.com/spf13/cobra"
)

var getOut string

func init() {
	storeGetCmd.Flags().StringVarP(&getOut, "out", "o", "", "write the song here instead of printing a summary")
	storeCmd.AddCommand(storePutCmd, storeGetCmd, storeListCmd)
	rootCmd.AddCommand(storeCmd)
}

// openStore builds the configured file store, mirroring metadata to
// DynamoDB when an endpoint is set.
func openStore() (*store.FileStore, error) {
	var meta store.MetaStore
	if cfg.Store.DynamoEndpoint != "" {
		d, err := store.NewDynamoMeta(cfg.Store.DynamoEndpoint, cfg.Store.DynamoRegion, cfg.Store.DynamoTable)
		if err != nil {
			return nil, err
		}
		meta = d
	}
	return store.NewFileStore(cfg.Store.Dir, meta)
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manages the song store",
}

var storePutCmd = &cobra.Command{
	Use:   "put FILE...",
	Short: "Adds songs to the store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		for _, path := range args {
			s, err := loadSong(path)
			if err != nil {
				return err
			}
			id, err := st.Put(s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", id, path)
		}
		return nil
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Fetches a song from the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		s, err := st.Get(id)
		if err != nil {
			return err
		}
		if getOut == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bars, %d tracks\n", s.Meta.Title, s.BarCount(), s.TrackCount())
			return nil
		}
		f, err := os.Create(getOut)
		if err != nil {
			return err
		}
		w := bufio.NewWriter(f)
		if err := model.WriteSong(w, s); err != nil {
			f.Close()
			return err
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists stored songs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		entries, err := st.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-30s %4d bars %2d tracks  %s\n",
				e.ID, e.Title, e.Bars, e.Tracks, e.Updated.Format("2006-01-02 15:04"))
		}
		return nil
	},
}
