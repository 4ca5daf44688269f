package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/engraver/config"
	"github.com/jsphweid/engraver/debug"
	"github.com/jsphweid/engraver/model"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "engraver",
	Short: "Music notation layout",
	Long:  `Loads songs, refreshes their notation and lays them out into systems and pages.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		if cfg.DebugLog != "" {
			return debug.EnableFile(cfg.DebugLog)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "engraver.yaml", "config file")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// loadSong reads a .json document or a binary song file.
func loadSong(path string) (*model.Song, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		s := &model.Song{}
		if err := json.Unmarshal(data, s); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		return s, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := model.ReadSong(f)
	return s, errors.Wrapf(err, "reading %s", path)
}
