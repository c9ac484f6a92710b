package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// DSN returns the driver-specific data source name. A configured
// ConnectionString wins; otherwise the discrete fields are assembled.
func (d *DatabaseConfig) DSN() (string, error) {
	switch d.Driver {
	case "mysql":
		return d.mysqlDSN(), nil
	case "postgres":
		return d.postgresDSN(), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", d.Driver)
	}
}

func (d *DatabaseConfig) mysqlDSN() string {
	var dsn string
	if d.ConnectionString != "" {
		dsn = d.ConnectionString
	} else {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", d.User, d.Password, d.Host, d.Port, d.Database)
	}
	// Introspection reads DATE/DATETIME metadata; parseTime keeps scans sane.
	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}
	return dsn
}

func (d *DatabaseConfig) postgresDSN() string {
	if d.ConnectionString != "" {
		return d.ConnectionString
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Database,
	}
	return u.String()
}

// EffectiveDatabaseName returns the database the introspector should scan.
// An explicit database.database wins; otherwise the name embedded in the DSN
// is used. A mismatch between the two is an error.
func (d *DatabaseConfig) EffectiveDatabaseName() (string, error) {
	configured := strings.TrimSpace(d.Database)
	fromDSN, err := d.dsnDatabaseName()
	if err != nil {
		return "", err
	}

	if configured != "" {
		if fromDSN != "" && configured != fromDSN {
			return "", fmt.Errorf(
				"database mismatch: database.database=%q but database.dsn targets %q",
				configured, fromDSN,
			)
		}
		return configured, nil
	}
	if fromDSN != "" {
		return fromDSN, nil
	}
	return "", fmt.Errorf("no database configured: set database.database or include the database in database.dsn")
}

// IntrospectionTarget returns the namespace introspection queries filter on:
// the database name on MySQL, the schema (default "public") on PostgreSQL.
func (d *DatabaseConfig) IntrospectionTarget() (string, error) {
	if d.Driver == "postgres" {
		if s := strings.TrimSpace(d.Schema); s != "" {
			return s, nil
		}
		return "public", nil
	}
	return d.EffectiveDatabaseName()
}

func (d *DatabaseConfig) dsnDatabaseName() (string, error) {
	dsn := strings.TrimSpace(d.ConnectionString)
	if dsn == "" {
		return "", nil
	}

	switch d.Driver {
	case "mysql":
		parsed, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("database.dsn is invalid: %w", err)
		}
		return strings.TrimSpace(parsed.DBName), nil
	case "postgres":
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("database.dsn is invalid: %w", err)
		}
		return strings.TrimPrefix(u.Path, "/"), nil
	default:
		return "", nil
	}
}
