package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// sqliteOptions makes writers queue instead of failing with SQLITE_BUSY.
// Write transactions take the lock at BEGIN, so check-then-insert in Create
// cannot interleave with another writer.
const sqliteOptions = "_pragma=busy_timeout(5000)&_txlock=immediate"

// Dialector picks the GORM driver for a DATABASE_URL.
//
//	postgres://... or postgresql://...  postgres
//	sqlite:///relative.db                sqlite, path relative.db
//	sqlite:////abs/path.db               sqlite, path /abs/path.db
//	sqlite://./ozo.db                    sqlite, path ./ozo.db
//	./ozo.db                             sqlite, bare path
func Dialector(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite:///"):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(url, "sqlite:///"))), nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(url, "sqlite://"))), nil
	case strings.Contains(url, "://"):
		scheme, _, _ := strings.Cut(url, "://")
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	case url == "":
		return nil, fmt.Errorf("database url is empty")
	default:
		return sqlite.Open(sqliteDSN(url)), nil
	}
}

// sqliteDSN appends sqliteOptions to path, keeping any query the caller supplied.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqliteOptions
	}
	return path + "?" + sqliteOptions
}

// Pinger checks that the database answers.
type Pinger struct {
	db *gorm.DB
}

// NewPinger creates a Pinger for db.
func NewPinger(db *gorm.DB) *Pinger {
	return &Pinger{db: db}
}

// Ping round-trips to the database.
func (p *Pinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
