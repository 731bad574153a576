package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/PhantomInTheWire/image-toolbox/pkg/codec"
	"github.com/PhantomInTheWire/image-toolbox/pkg/logger"
	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
	"github.com/PhantomInTheWire/image-toolbox/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

var log = logger.New("[config]")

const (
	DefaultConfigPath = "toolbox.toml"
	ConfigPathEnv     = "IMAGE_TOOLBOX_CONFIG"
)

type Server struct {
	Addr        string `toml:"addr"`
	WSPath      string `toml:"ws_path"`
	Cors        bool   `toml:"cors"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

type Split struct {
	Rows  int     `toml:"rows"`
	Cols  int     `toml:"cols"`
	Color string  `toml:"color"`
	Width float64 `toml:"width"`
	Style string  `toml:"style"`
}

type Convert struct {
	Format string `toml:"format"`
}

type Storage struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
}

type Output struct {
	Dir string `toml:"dir"`
}

type Bench struct {
	SharedDir  string `toml:"shared_dir"`
	MaxWorkers int    `toml:"max_workers"`
}

type Config struct {
	Server  Server  `toml:"server"`
	Split   Split   `toml:"split"`
	Convert Convert `toml:"convert"`
	Storage Storage `toml:"storage"`
	Output  Output  `toml:"output"`
	Bench   Bench   `toml:"bench"`
}

func Default() Config {
	return Config{
		Server: Server{
			Addr:        ":8080",
			WSPath:      "/ws/editor",
			MaxUploadMB: 32,
		},
		Split: Split{
			Rows:  3,
			Cols:  3,
			Color: "#ffffff",
			Width: 1,
			Style: string(split.Solid),
		},
		Convert: Convert{
			Format: string(codec.JPEG),
		},
		Storage: Storage{
			Endpoint: "http://localhost:9000",
			Region:   "us-east-1",
			Bucket:   "tiles-bucket",
		},
		Output: Output{
			Dir: "downloads",
		},
		Bench: Bench{
			SharedDir:  "shared",
			MaxWorkers: 8,
		},
	}
}

// Load reads the TOML file at path over the defaults and applies environment
// overrides. An empty path falls back to $IMAGE_TOOLBOX_CONFIG, then to
// toolbox.toml; a missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = getEnv(ConfigPathEnv, DefaultConfigPath)
	}

	conf := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Println("no config file at", path, "using defaults")
	case err != nil:
		return conf, err
	default:
		log.Println("reading config file:", path)
		if err := toml.Unmarshal(data, &conf); err != nil {
			return conf, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(&conf)

	if err := conf.Validate(); err != nil {
		return conf, err
	}
	return conf, nil
}

func (c Config) Validate() error {
	g := split.Grid{Rows: c.Split.Rows, Cols: c.Split.Cols}
	if g.Validate() != nil || g.Rows > split.MaxGridSize || g.Cols > split.MaxGridSize {
		return fmt.Errorf("split: rows and cols must be between 1 and %d", split.MaxGridSize)
	}
	if _, err := split.ParseStyle(c.Split.Style); err != nil {
		return fmt.Errorf("split: %w", err)
	}
	if _, err := codec.ParseFormat(c.Convert.Format); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server: max_upload_mb must be positive")
	}
	return nil
}

// MinioConfig returns the storage section in the form pkg/storage expects.
func (c Config) MinioConfig() storage.MinioConfig {
	return storage.MinioConfig{
		Endpoint:  c.Storage.Endpoint,
		Region:    c.Storage.Region,
		AccessKey: c.Storage.AccessKey,
		SecretKey: c.Storage.SecretKey,
		Bucket:    c.Storage.Bucket,
		Prefix:    c.Storage.Prefix,
	}
}
