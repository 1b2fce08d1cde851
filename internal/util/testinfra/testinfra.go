package testinfra

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hookdeck/redisconnect/internal/util/testutil"
	"github.com/spf13/viper"
)

var (
	suiteCounter int64
	suiteCleanup sync.Once
	cfgSync      sync.Once
	cfg          *Config
)

type Config struct {
	TestInfra  bool
	RedisURL   string
	RedisImage string
	cleanupFns []func()
}

func initConfig() {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("TEST_REDIS_IMAGE", "redis:7-alpine")

	// Allow override via environment variable
	configFile := os.Getenv("TEST_CONFIG_FILE")
	if configFile == "" {
		configFile = ".env.test"
	}

	if projectRoot, err := findProjectRoot(configFile); err == nil {
		v.SetConfigFile(filepath.Join(projectRoot, configFile))
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			panic(err)
		}
	}

	cfg = &Config{
		TestInfra:  v.GetBool("TESTINFRA"),
		RedisImage: v.GetString("TEST_REDIS_IMAGE"),
	}
	// With TESTINFRA set, Redis is provided externally (e.g. docker compose)
	// instead of started as a container.
	if cfg.TestInfra {
		cfg.RedisURL = v.GetString("TEST_REDIS_URL")
	}
}

func ReadConfig() *Config {
	cfgSync.Do(initConfig)
	return cfg
}

// Start registers a test suite and returns its cleanup. Containers are
// terminated when the last registered suite finishes.
func Start(t *testing.T) func() {
	testutil.Integration(t)
	atomic.AddInt64(&suiteCounter, 1)
	return func() {
		if atomic.AddInt64(&suiteCounter, -1) == 0 {
			suiteCleanup.Do(func() {
				if cfg != nil {
					for _, fn := range cfg.cleanupFns {
						if fn != nil {
							fn()
						}
					}
				}
			})
		}
	}
}

func findProjectRoot(marker string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Traverse up the directory tree until the marker file is found
	for {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, nil
		}
		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			break
		}
		dir = parentDir
	}

	return "", os.ErrNotExist
}
