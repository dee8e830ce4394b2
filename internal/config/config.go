// Package config loads environment-based configuration for s3fetch.
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything s3fetch reads from the environment.
// CLI flags override these values.
type Config struct {
	Bucket  Bucket
	App     App
	Logging Logging
}

// Bucket configures access to the remote bucket.
type Bucket struct {
	Name           string
	Prefix         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// App configures local behavior.
type App struct {
	DownloadDir string
}

// Logging configures log output.
type Logging struct {
	Level string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads configuration from the environment, with an optional .env file.
// It is safe to call from multiple goroutines; the first call wins.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("S3FETCH_BUCKET", "")
		viper.SetDefault("S3FETCH_PREFIX", "")
		viper.SetDefault("S3FETCH_REGION", "us-east-1")
		viper.SetDefault("S3FETCH_ENDPOINT", "")
		viper.SetDefault("S3FETCH_ACCESS_KEY", "")
		viper.SetDefault("S3FETCH_SECRET_KEY", "")
		viper.SetDefault("S3FETCH_PATH_STYLE", false)
		viper.SetDefault("S3FETCH_DOWNLOAD_DIR", "./downloads")
		viper.SetDefault("S3FETCH_LOG_LEVEL", "info")

		viper.AutomaticEnv()

		instance = &Config{
			Bucket: Bucket{
				Name:           viper.GetString("S3FETCH_BUCKET"),
				Prefix:         viper.GetString("S3FETCH_PREFIX"),
				Region:         viper.GetString("S3FETCH_REGION"),
				Endpoint:       viper.GetString("S3FETCH_ENDPOINT"),
				AccessKey:      viper.GetString("S3FETCH_ACCESS_KEY"),
				SecretKey:      viper.GetString("S3FETCH_SECRET_KEY"),
				ForcePathStyle: viper.GetBool("S3FETCH_PATH_STYLE"),
			},
			App: App{
				DownloadDir: viper.GetString("S3FETCH_DOWNLOAD_DIR"),
			},
			Logging: Logging{
				Level: viper.GetString("S3FETCH_LOG_LEVEL"),
			},
		}
	})
	return instance
}
