package storage

import (
	"fmt"
	"os"
)

var userHomeDir = os.UserHomeDir

// postgresDSN returns URI when set, otherwise a key/value DSN built from
// the discrete fields.
func (c Connection) postgresDSN() string {
	if c.URI != "" {
		return c.URI
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.Username, c.Password, c.Database, sslMode,
	)
}

func (c Connection) mysqlDSN() string {
	if c.URI != "" {
		return c.URI
	}
	port := c.Port
	if port == 0 {
		port = 3306
	}
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Username, c.Password, c.Host, port, c.Database,
	)
	if c.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

func (c Connection) mongoURI() string {
	if c.URI != "" {
		return c.URI
	}
	port := c.Port
	if port == 0 {
		port = 27017
	}
	if c.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", c.Username, c.Password, c.Host, port)
	}
	return fmt.Sprintf("mongodb://%s:%d", c.Host, port)
}
