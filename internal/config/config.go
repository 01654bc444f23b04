package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DataPath string `mapstructure:"data_path" yaml:"data_path"`
	Title    string `mapstructure:"title" yaml:"title"`

	// Initial sidebar state
	ScoreMin float64 `mapstructure:"score_min" yaml:"score_min"`
	ScoreMax float64 `mapstructure:"score_max" yaml:"score_max"`

	// Dashboard server
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	// Exports
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir"`
	MapWidth      int    `mapstructure:"map_width" yaml:"map_width"`
	MapHeight     int    `mapstructure:"map_height" yaml:"map_height"`
	HeatmapWidth  int    `mapstructure:"heatmap_width" yaml:"heatmap_width"`
	HeatmapHeight int    `mapstructure:"heatmap_height" yaml:"heatmap_height"`
	RadarSize     int    `mapstructure:"radar_size" yaml:"radar_size"`
	// RadarSuburbs overrides the default "first three suburbs" radar selection.
	RadarSuburbs []string `mapstructure:"radar_suburbs" yaml:"radar_suburbs"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the built-in defaults without reading file or env.
func Default() *Global {
	return &Global{
		DataPath:      "propwealthnext_investor_cleaned_display.csv",
		Title:         "Investors score",
		ScoreMin:      60,
		ScoreMax:      100,
		ListenAddr:    "127.0.0.1:8501",
		OutputDir:     ".",
		MapWidth:      900,
		MapHeight:     500,
		HeatmapWidth:  1000,
		HeatmapHeight: 600,
		RadarSize:     2400,
		RadarSuburbs:  []string{},
		LogLevel:      "info",
	}
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".suburbscope", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.suburbscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SUBURBSCOPE")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("data_path", d.DataPath)
	v.SetDefault("title", d.Title)
	v.SetDefault("score_min", d.ScoreMin)
	v.SetDefault("score_max", d.ScoreMax)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("map_width", d.MapWidth)
	v.SetDefault("map_height", d.MapHeight)
	v.SetDefault("heatmap_width", d.HeatmapWidth)
	v.SetDefault("heatmap_height", d.HeatmapHeight)
	v.SetDefault("radar_size", d.RadarSize)
	v.SetDefault("radar_suburbs", d.RadarSuburbs)
	v.SetDefault("log_level", d.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		p, err := defaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; an explicit one must exist and parse.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
