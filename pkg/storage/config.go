package storage

import (
	"fmt"
	"os"

	"github.com/JaimeStill/agent-registry/pkg/database"
	"github.com/docker/go-units"
)

// Backend selects where documents are kept.
type Backend string

const (
	BackendFilesystem Backend = "filesystem"
	BackendSQLite     Backend = "sqlite"
	BackendPostgres   Backend = "postgres"
)

// SQLiteFile is the database file created under BasePath by the sqlite backend.
const SQLiteFile = "registry.db"

// Env names the environment variables that override Config fields.
type Env struct {
	Backend         string
	BasePath        string
	MaxDocumentSize string
	Database        *database.Env
}

// Config holds document storage settings.
type Config struct {
	Backend Backend `toml:"backend"`

	// BasePath is the directory holding documents (filesystem) or the
	// database file (sqlite). Default: ".data"
	BasePath string `toml:"base_path"`

	// MaxDocumentSize caps a single document, in human units ("4MB").
	MaxDocumentSize string `toml:"max_document_size"`

	// Database is used only by the postgres backend.
	Database database.Config `toml:"database"`

	maxDocumentSizeVal int64
}

// MaxDocumentBytes returns MaxDocumentSize in bytes after Finalize.
func (c *Config) MaxDocumentBytes() int64 {
	return c.maxDocumentSizeVal
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	if err := c.validate(); err != nil {
		return err
	}

	if c.Backend == BackendPostgres {
		var dbEnv *database.Env
		if env != nil {
			dbEnv = env.Database
		}
		if err := c.Database.Finalize(dbEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	return nil
}

// Merge copies non-zero overlay values onto c.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxDocumentSize != "" {
		c.MaxDocumentSize = overlay.MaxDocumentSize
	}
	c.Database.Merge(&overlay.Database)
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFilesystem
	}
	if c.BasePath == "" {
		c.BasePath = ".data"
	}
	if c.MaxDocumentSize == "" {
		c.MaxDocumentSize = "4MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := getenv(env.Backend); v != "" {
		c.Backend = Backend(v)
	}
	if v := getenv(env.BasePath); v != "" {
		c.BasePath = v
	}
	if v := getenv(env.MaxDocumentSize); v != "" {
		c.MaxDocumentSize = v
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFilesystem, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("invalid backend %q (must be filesystem, sqlite, or postgres)", c.Backend)
	}

	if c.Backend != BackendPostgres && c.BasePath == "" {
		return fmt.Errorf("base_path required")
	}

	size, err := units.FromHumanSize(c.MaxDocumentSize)
	if err != nil {
		return fmt.Errorf("invalid max_document_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_document_size must be positive")
	}
	c.maxDocumentSizeVal = size

	return nil
}

func getenv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
