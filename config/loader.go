package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/logger"
)

// EnvPrefix prefixes every environment variable sawmill reads.
const EnvPrefix = "SAWMILL"

// FileSystem is what Load needs from the host. Tests substitute a map.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getenv(key string) string
}

// RealFileSystem is the host's files and environment.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (RealFileSystem) Getenv(key string) string {
	return os.Getenv(key)
}

// Resolver picks the config and dotenv files to read.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles are the chosen paths. Empty means none was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles keeps explicit paths and searches for the rest.
func (r *Resolver) ResolveFiles(opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.firstExisting(r.configSearchPaths())
	}
	if files.EnvFile == "" {
		files.EnvFile = r.firstExisting([]string{".env.sawmill", ".env"})
	}
	return files
}

// configSearchPaths lists sawmill.yml candidates in priority order.
func (r *Resolver) configSearchPaths() []string {
	paths := []string{"./sawmill.yml", "./sawmill.yaml"}
	configHome := r.FileSystem.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home := r.FileSystem.Getenv("HOME"); home != "" {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		paths = append(paths, filepath.Join(configHome, "sawmill", "config.yml"))
	}
	return append(paths, "/etc/sawmill/config.yml")
}

func (r *Resolver) firstExisting(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// LoaderConfig is assembled from LoaderOptions.
type LoaderConfig struct {
	FileSystem FileSystem
	// ConfigFile and EnvFile skip the search when set.
	ConfigFile string
	EnvFile    string
}

// LoaderOption adjusts a LoaderConfig.
type LoaderOption func(*LoaderConfig)

func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile reads path instead of searching. It must exist.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile loads path instead of searching for a dotenv file.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads configuration into cfg. Values already in cfg act as defaults,
// so callers normally start from Default(). An explicit config file that
// cannot be read is an error; a searched-for file that is absent is not.
func Load(cfg *Config, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, apply := range opts {
		apply(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(lc)

	v := viper.New()
	setDefaults(v, cfg)

	// 1. YAML config (base configuration)
	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			if lc.ConfigFile != "" {
				return errors.ResourceAcquisition(files.ConfigFile, os.ErrNotExist)
			}
		} else {
			v.SetConfigFile(files.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return errors.Misconfiguration("config file", err.Error()).WithCause(err)
			}
			logger.Debug("config file loaded", logger.Fields(logger.FieldPath, files.ConfigFile))
		}
	}

	// 2. .env file, so its variables are visible to AutomaticEnv
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("failed to load .env file", logger.Fields(logger.FieldPath, files.EnvFile, logger.FieldError, err.Error()))
		}
	}

	// 3. SAWMILL_* environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return errors.Misconfiguration("config", err.Error()).WithCause(err)
	}
	return nil
}

// setDefaults registers every key of cfg with viper. AutomaticEnv only
// consults the environment for keys viper already knows about.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
	v.SetDefault("logging.no_color", cfg.Logging.NoColor)
	v.SetDefault("logging.timestamp", cfg.Logging.Timestamp)
	v.SetDefault("logging.caller", cfg.Logging.Caller)
	v.SetDefault("logs.preset", cfg.Logs.Preset)
	v.SetDefault("logs.dir", cfg.Logs.Dir)
	v.SetDefault("logs.filter", cfg.Logs.Filter)
	v.SetDefault("report.limit", cfg.Report.Limit)
	v.SetDefault("report.color", cfg.Report.Color)
	v.SetDefault("observability.endpoint", cfg.Observability.Endpoint)
	v.SetDefault("observability.insecure", cfg.Observability.Insecure)
	v.SetDefault("observability.sample_rate", cfg.Observability.SampleRate)
}
