// Package config loads the YAML settings shared by the commands.
// Environment variables override the file.
package config

import (
	"os"
	"time"

	"github.com/jsphweid/engraver/constants"
	"github.com/jsphweid/engraver/layout"
	"github.com/jsphweid/engraver/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Layout struct {
	Strategy           string  `yaml:"strategy"`
	Style              string  `yaml:"style"`
	BarsPerSystem      int     `yaml:"barsPerSystem"`
	MaxTrailingStretch float64 `yaml:"maxTrailingStretch"`
	Written            bool    `yaml:"written"`
}

type Store struct {
	Dir            string `yaml:"dir"`
	DynamoEndpoint string `yaml:"dynamoEndpoint"`
	DynamoRegion   string `yaml:"dynamoRegion"`
	DynamoTable    string `yaml:"dynamoTable"`
}

type Serve struct {
	Addr          string        `yaml:"addr"`
	RelayoutDelay time.Duration `yaml:"relayoutDelay"`
	CORSOrigins   []string      `yaml:"corsOrigins"`
}

type Config struct {
	Layout   Layout         `yaml:"layout"`
	Styles   []layout.Style `yaml:"styles"`
	Store    Store          `yaml:"store"`
	Serve    Serve          `yaml:"serve"`
	DebugLog string         `yaml:"debugLog"`
}

func DefaultConfig() Config {
	return Config{
		Layout: Layout{Strategy: model.DefaultStrategy, Style: model.DefaultStyle},
		Store: Store{
			Dir:          constants.GetStoreDir(),
			DynamoRegion: constants.DefaultRegion,
			DynamoTable:  constants.DefaultTable,
		},
		Serve: Serve{
			Addr:          constants.DefaultAddr,
			RelayoutDelay: 250 * time.Millisecond,
			CORSOrigins:   []string{"*"},
		},
	}
}

// Load reads path over the defaults. A missing file is not an error; an
// empty path skips the file entirely.
func Load(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return c, errors.Wrapf(err, "reading config %s", path)
		default:
			if err := yaml.Unmarshal(data, &c); err != nil {
				return c, errors.Wrapf(err, "parsing config %s", path)
			}
		}
	}
	c.applyEnv()
	return c, nil
}

func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnv() {
	if v := os.Getenv(constants.StoreDirEnv); v != "" {
		c.Store.Dir = v
	}
	if v := constants.GetDynamoEndpoint(); v != "" {
		c.Store.DynamoEndpoint = v
	}
	if v := constants.GetDebugLog(); v != "" {
		c.DebugLog = v
	}
}

// Registry returns the built-in styles with the configured ones
// registered on top. A configured trailing stretch applies to all.
func (c Config) Registry() *layout.Registry {
	reg := layout.DefaultRegistry()
	for _, s := range c.Styles {
		if s.Name == "" {
			continue
		}
		reg.Register(s)
	}
	if c.Layout.MaxTrailingStretch > 0 {
		for _, name := range reg.Names() {
			s, _ := reg.Get(name)
			s.MaxTrailingStretch = c.Layout.MaxTrailingStretch
			reg.Register(s)
		}
	}
	return reg
}

// ApplyView fills the view's layout choices from the configuration where
// the configuration sets one.
func (c Config) ApplyView(v *model.ScoreView) {
	if c.Layout.Strategy != "" {
		v.Strategy = c.Layout.Strategy
	}
	if c.Layout.Style != "" {
		v.Style = c.Layout.Style
	}
	if c.Layout.BarsPerSystem > 0 {
		v.BarsPerSystem = c.Layout.BarsPerSystem
	}
	if c.Layout.Written {
		v.Written = true
	}
}
