package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Logger      LoggerConfig
	Dataset     DatasetConfig
	Hub         HubConfig
	Database    DatabaseConfig
	ObjectStore ObjectStoreConfig
	Session     SessionConfig
	Colorize    ColorizeConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

// DatasetConfig locates the dataset on disk. Meshes live under StaticDir so
// they can be served directly; semantic labels stay under DataDir.
type DatasetConfig struct {
	StaticDir       string
	DataDir         string
	MeshesDir       string
	ColoredDir      string
	SemanticGTDir   string
	RepoID          string
	ColoredRepoID   string
	MeshArchive     string
	SemanticArchive string
	ColoredArchive  string
	LabelSetFile    string
}

// MeshesPath is where original meshes are extracted.
func (c DatasetConfig) MeshesPath() string {
	return filepath.Join(c.StaticDir, c.MeshesDir)
}

// ColoredPath is where colored meshes are written.
func (c DatasetConfig) ColoredPath() string {
	return filepath.Join(c.StaticDir, c.ColoredDir)
}

// SemanticGTPath is where per-face label arrays are extracted.
func (c DatasetConfig) SemanticGTPath() string {
	return filepath.Join(c.DataDir, c.SemanticGTDir)
}

type HubConfig struct {
	Endpoint   string
	Revision   string
	Token      string
	CacheDir   string
	Timeout    time.Duration
	MaxRetries int
}

type DatabaseConfig struct {
	Driver          string
	Path            string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type ObjectStoreConfig struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	URLTTL          time.Duration
}

type SessionConfig struct {
	Secret string
	Name   string
	MaxAge int
}

type ColorizeConfig struct {
	Source  string
	Workers int
	Force   bool
}

func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith reads configuration from v, which callers may have bound to
// command-line flags.
func LoadWith(v *viper.Viper) (*Config, error) {
	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8501)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "text")

	v.SetDefault("DATASET_STATIC_DIR", "static")
	v.SetDefault("DATASET_DATA_DIR", ".")
	v.SetDefault("DATASET_MESHES_DIR", "PartObjaverse-Tiny_mesh")
	v.SetDefault("DATASET_COLORED_DIR", "PartObjaverse-Tiny_mesh_colored")
	v.SetDefault("DATASET_SEMANTIC_GT_DIR", "PartObjaverse-Tiny_semantic_gt")
	v.SetDefault("DATASET_REPO_ID", "yhyang-myron/PartObjaverse-Tiny")
	v.SetDefault("DATASET_COLORED_REPO_ID", "AvaLovelace/PartObjaverse-Tiny-visualizations")
	v.SetDefault("DATASET_MESH_ARCHIVE", "PartObjaverse-Tiny_mesh.zip")
	v.SetDefault("DATASET_SEMANTIC_ARCHIVE", "PartObjaverse-Tiny_semantic_gt.zip")
	v.SetDefault("DATASET_COLORED_ARCHIVE", "PartObjaverse-Tiny_mesh_colored.zip")
	v.SetDefault("DATASET_LABEL_SET_FILE", "PartObjaverse-Tiny_semantic.json")

	v.SetDefault("HUB_ENDPOINT", "https://huggingface.co")
	v.SetDefault("HUB_REVISION", "main")
	v.SetDefault("HUB_TOKEN", "")
	v.SetDefault("HUB_CACHE_DIR", defaultCacheDir())
	v.SetDefault("HUB_TIMEOUT", "10m")
	v.SetDefault("HUB_MAX_RETRIES", 4)

	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_PATH", "catalog.db")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_NAME", "partviewer")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "1h")

	v.SetDefault("OBJECT_STORE_ENABLED", false)
	v.SetDefault("OBJECT_STORE_ENDPOINT", "")
	v.SetDefault("OBJECT_STORE_REGION", "auto")
	v.SetDefault("OBJECT_STORE_BUCKET", "")
	v.SetDefault("OBJECT_STORE_PREFIX", "PartObjaverse-Tiny_mesh_colored")
	v.SetDefault("OBJECT_STORE_ACCESS_KEY_ID", "")
	v.SetDefault("OBJECT_STORE_SECRET_ACCESS_KEY", "")
	v.SetDefault("OBJECT_STORE_URL_TTL", "24h")

	v.SetDefault("SESSION_SECRET", "partviewer-dev-secret")
	v.SetDefault("SESSION_NAME", "partviewer")
	v.SetDefault("SESSION_MAX_AGE", 86400*7)

	v.SetDefault("COLORIZE_SOURCE", "local")
	v.SetDefault("COLORIZE_WORKERS", runtime.NumCPU())
	v.SetDefault("COLORIZE_FORCE", false)

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: durationOr(v, "SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Dataset: DatasetConfig{
			StaticDir:       v.GetString("DATASET_STATIC_DIR"),
			DataDir:         v.GetString("DATASET_DATA_DIR"),
			MeshesDir:       v.GetString("DATASET_MESHES_DIR"),
			ColoredDir:      v.GetString("DATASET_COLORED_DIR"),
			SemanticGTDir:   v.GetString("DATASET_SEMANTIC_GT_DIR"),
			RepoID:          v.GetString("DATASET_REPO_ID"),
			ColoredRepoID:   v.GetString("DATASET_COLORED_REPO_ID"),
			MeshArchive:     v.GetString("DATASET_MESH_ARCHIVE"),
			SemanticArchive: v.GetString("DATASET_SEMANTIC_ARCHIVE"),
			ColoredArchive:  v.GetString("DATASET_COLORED_ARCHIVE"),
			LabelSetFile:    v.GetString("DATASET_LABEL_SET_FILE"),
		},
		Hub: HubConfig{
			Endpoint:   v.GetString("HUB_ENDPOINT"),
			Revision:   v.GetString("HUB_REVISION"),
			Token:      v.GetString("HUB_TOKEN"),
			CacheDir:   v.GetString("HUB_CACHE_DIR"),
			Timeout:    durationOr(v, "HUB_TIMEOUT", 10*time.Minute),
			MaxRetries: v.GetInt("HUB_MAX_RETRIES"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("DATABASE_DRIVER"),
			Path:            v.GetString("DATABASE_PATH"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durationOr(v, "DATABASE_CONN_MAX_LIFETIME", time.Hour),
		},
		ObjectStore: ObjectStoreConfig{
			Enabled:         v.GetBool("OBJECT_STORE_ENABLED"),
			Endpoint:        v.GetString("OBJECT_STORE_ENDPOINT"),
			Region:          v.GetString("OBJECT_STORE_REGION"),
			Bucket:          v.GetString("OBJECT_STORE_BUCKET"),
			Prefix:          v.GetString("OBJECT_STORE_PREFIX"),
			AccessKeyID:     v.GetString("OBJECT_STORE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("OBJECT_STORE_SECRET_ACCESS_KEY"),
			URLTTL:          durationOr(v, "OBJECT_STORE_URL_TTL", 24*time.Hour),
		},
		Session: SessionConfig{
			Secret: v.GetString("SESSION_SECRET"),
			Name:   v.GetString("SESSION_NAME"),
			MaxAge: v.GetInt("SESSION_MAX_AGE"),
		},
		Colorize: ColorizeConfig{
			Source:  v.GetString("COLORIZE_SOURCE"),
			Workers: v.GetInt("COLORIZE_WORKERS"),
			Force:   v.GetBool("COLORIZE_FORCE"),
		},
	}

	if cfg.Colorize.Workers <= 0 {
		cfg.Colorize.Workers = runtime.NumCPU()
	}
	if cfg.Colorize.Source != "local" && cfg.Colorize.Source != "hub" {
		return nil, fmt.Errorf("COLORIZE_SOURCE must be local or hub, got %q", cfg.Colorize.Source)
	}
	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "postgres" {
		return nil, fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", cfg.Database.Driver)
	}
	if cfg.ObjectStore.Enabled && cfg.ObjectStore.Bucket == "" {
		return nil, fmt.Errorf("OBJECT_STORE_BUCKET is required when the object store is enabled")
	}

	return cfg, nil
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

func defaultCacheDir() string {
	return filepath.Join(".cache", "huggingface", "hub")
}
