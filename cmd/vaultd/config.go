package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	homeEnvVar = "VAULTD_HOME"

	cfgFileName = "vaultd.toml"

	defaultHome = "~/.vaultd"
)

// Config is the content of the vaultd.toml file found in the home
// directory. Every value can be overwritten by a VAULTD_ prefixed
// environment variable, for example VAULTD_LOG_LEVEL.
type Config struct {
	Home    string    `mapstructure:"-" toml:"-"`
	ChainID string    `mapstructure:"chain_id" toml:"chain_id"`
	KeysDir string    `mapstructure:"keys_dir" toml:"keys_dir"`
	Log     LogConfig `mapstructure:"log" toml:"log"`
	DB      DBConfig  `mapstructure:"db" toml:"db"`
}

type LogConfig struct {
	// Level is one of debug, info, error or none.
	Level string `mapstructure:"level" toml:"level"`
}

type DBConfig struct {
	// Dir is the state database location. Relative paths are resolved
	// against the home directory.
	Dir       string `mapstructure:"dir" toml:"dir"`
	CacheSize int    `mapstructure:"cache_size" toml:"cache_size"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig(home string) *Config {
	return &Config{
		Home:    home,
		ChainID: "vault-local",
		KeysDir: "keys",
		Log:     LogConfig{Level: "info"},
		DB:      DBConfig{Dir: "data/state.db", CacheSize: 10000},
	}
}

// DBPath returns the absolute database path.
func (c *Config) DBPath() string {
	return c.resolve(c.DB.Dir)
}

// KeysPath returns the absolute directory holding private keys.
func (c *Config) KeysPath() string {
	return c.resolve(c.KeysDir)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Home, p)
}

// Exist check if the file with the given path exits.
func Exist(path string) bool {
	fi, err := os.Lstat(path)
	if fi != nil || (err != nil && !os.IsNotExist(err)) {
		return true
	}
	return false
}

// LoadConfig reads the configuration from the home directory. Defaults
// are returned when the file does not exist.
func LoadConfig(home string) (*Config, error) {
	cfg := DefaultConfig(home)
	cfgPath := filepath.Join(home, cfgFileName)
	if !Exist(cfgPath) {
		return cfg, nil
	}
	if err := readConfigFromFile(cfgPath, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", cfgPath)
	}
	cfg.Home = home
	return cfg, nil
}

// WriteConfig stores the configuration in the home directory.
func WriteConfig(cfg *Config) error {
	raw, err := MarshalConfig(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Home, 0755); err != nil {
		return errors.Wrap(err, "failed to create home")
	}
	return os.WriteFile(filepath.Join(cfg.Home, cfgFileName), []byte(raw), 0644)
}

func MarshalConfig(config any) (string, error) {
	buf := bytes.NewBuffer([]byte{})
	e := toml.NewEncoder(buf)
	e.SetIndentTables(true)
	if err := e.Encode(config); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func readConfigFromFile(cfgFilePath string, config any) error {
	vp := viper.New()
	vp.SetConfigFile(cfgFilePath)
	vp.SetConfigType("toml")
	vp.AutomaticEnv()
	vp.SetEnvPrefix("VAULTD")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := vp.ReadInConfig(); err != nil {
		return err
	}
	return vp.Unmarshal(config)
}

// LoadHomeFromEnv returns home if given, the VAULTD_HOME environment
// variable value otherwise, falling back to ~/.vaultd.
func LoadHomeFromEnv(home string) (string, error) {
	if home != "" {
		return homedir.Expand(home)
	}
	home = os.Getenv(homeEnvVar)
	if home == "" {
		home = defaultHome
	}
	return homedir.Expand(home)
}

func loadConfig(ctx *cli.Context) (*Config, error) {
	home, err := LoadHomeFromEnv(ctx.String("home"))
	if err != nil {
		return nil, err
	}
	return LoadConfig(home)
}

var configCMD = &cli.Command{
	Name:  "config",
	Usage: "The config manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "generate",
			Usage:  "Generate default config",
			Action: generateConfig,
		},
		{
			Name:   "show",
			Usage:  "Show the complete config processed by the environment variable",
			Action: showConfig,
		},
	},
}

func generateConfig(ctx *cli.Context) error {
	home, err := LoadHomeFromEnv(ctx.String("home"))
	if err != nil {
		return err
	}
	if Exist(filepath.Join(home, cfgFileName)) {
		fmt.Println("vaultd config already exists")
		return nil
	}
	if err := WriteConfig(DefaultConfig(home)); err != nil {
		return err
	}
	fmt.Printf("initializing vaultd at %s\n", home)
	return nil
}

func showConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	str, err := MarshalConfig(cfg)
	if err != nil {
		return err
	}
	fmt.Println(str)
	return nil
}
