package storage

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"composer/internal/domain"
)

// Driver names accepted in Connection.Driver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongoDB  = "mongodb"
	DriverBolt     = "bolt"
)

// Connection describes where templates are persisted.
type Connection struct {
	Driver   string `yaml:"driver" json:"driver"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"` // sqlite / bolt file
	URI      string `yaml:"uri,omitempty" json:"uri,omitempty"`   // mongodb, or a raw DSN for sql servers
	Host     string `yaml:"host,omitempty" json:"host,omitempty"`
	Port     int    `yaml:"port,omitempty" json:"port,omitempty"`
	Database string `yaml:"database,omitempty" json:"database,omitempty"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	SSLMode  string `yaml:"sslMode,omitempty" json:"sslMode,omitempty"`
}

// Validate reports configuration errors without connecting.
func (c Connection) Validate() error {
	switch c.Driver {
	case DriverMemory:
	case DriverSQLite, DriverBolt:
		if c.Path == "" {
			return fmt.Errorf("%s store requires a path", c.Driver)
		}
	case DriverPostgres, DriverMySQL:
		if c.URI == "" && c.Host == "" {
			return fmt.Errorf("%s store requires a uri or host", c.Driver)
		}
	case DriverMongoDB:
		if c.URI == "" && c.Host == "" {
			return fmt.Errorf("mongodb store requires a uri or host")
		}
	default:
		return fmt.Errorf("unknown template store driver %q", c.Driver)
	}
	return nil
}

// OpenTemplateStore opens the store described by c.
func OpenTemplateStore(c Connection) (domain.TemplateStore, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	log.Printf("[STORAGE] Opening %s template store", c.Driver)
	switch c.Driver {
	case DriverMemory:
		return NewMemoryTemplateStore(), nil
	case DriverSQLite:
		db, err := New(expandHome(c.Path))
		if err != nil {
			return nil, err
		}
		return NewTemplateStore(db), nil
	case DriverPostgres:
		db, err := Open(DialectPostgres, c.postgresDSN())
		if err != nil {
			return nil, err
		}
		return NewTemplateStore(db), nil
	case DriverMySQL:
		db, err := Open(DialectMySQL, c.mysqlDSN())
		if err != nil {
			return nil, err
		}
		return NewTemplateStore(db), nil
	case DriverMongoDB:
		return NewMongoTemplateStore(c.mongoURI(), c.Database)
	default: // DriverBolt
		return NewBoltTemplateStore(expandHome(c.Path))
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	if home, err := userHomeDir(); err == nil {
		return filepath.Join(home, path[2:])
	}
	return path
}
