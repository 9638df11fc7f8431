package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultPort             = "8080"
	defaultStoragePath      = "./data"
	defaultIndexPath        = "index"
	defaultKVDBPath         = "wordindex.db"
	defaultCommitEvery      = 100
	defaultMaxTokenLength   = 40
	defaultConverterCommand = "pandoc"
	defaultConverterTimeout = 2 * time.Minute
	defaultLogLevel         = "info"
)

type Config struct {
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	return c.getString("PORT", "server.port", defaultPort)
}

func (c *Config) GetStoragePath() string {
	return c.getString("STORAGE_PATH", "database.storage_path", defaultStoragePath)
}

// GetIndexPath returns the bleve index directory. Relative values are resolved against the storage path.
func (c *Config) GetIndexPath() string {
	return c.underStorage(c.getString("INDEX_PATH", "database.index_path", defaultIndexPath))
}

// GetKVDBPath returns the bbolt file. Relative values are resolved against the storage path.
func (c *Config) GetKVDBPath() string {
	return c.underStorage(c.getString("KVDB_PATH", "database.kvdb_path", defaultKVDBPath))
}

// GetCommitEvery is the number of queued index writes after which the writer commits.
func (c *Config) GetCommitEvery() int {
	return c.getPositiveInt("COMMIT_EVERY", "index.commit_every", defaultCommitEvery)
}

// GetMaxTokenLength is the length above which tokens are dropped by the analyzer.
func (c *Config) GetMaxTokenLength() int {
	return c.getPositiveInt("MAX_TOKEN_LENGTH", "index.max_token_length", defaultMaxTokenLength)
}

func (c *Config) GetConverterCommand() string {
	return c.getString("CONVERTER_COMMAND", "converter.command", defaultConverterCommand)
}

func (c *Config) GetConverterTimeout() time.Duration {
	timeout := c.config.GetDuration("CONVERTER_TIMEOUT")
	if timeout <= 0 {
		timeout = c.config.GetDuration("converter.timeout")
	}
	if timeout <= 0 {
		timeout = defaultConverterTimeout
	}

	return timeout
}

func (c *Config) GetLogLevel() string {
	return c.getString("LOG_LEVEL", "log.level", defaultLogLevel)
}

func (c *Config) getString(envKey string, fileKey string, fallback string) string {
	value := c.config.GetString(envKey)
	if len(value) == 0 {
		value = c.config.GetString(fileKey)
	}
	if len(value) == 0 {
		value = fallback
	}

	return value
}

func (c *Config) getPositiveInt(envKey string, fileKey string, fallback int) int {
	value := c.config.GetInt(envKey)
	if value <= 0 {
		value = c.config.GetInt(fileKey)
	}
	if value <= 0 {
		value = fallback
	}

	return value
}

func (c *Config) underStorage(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(c.GetStoragePath(), path)
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
