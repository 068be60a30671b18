package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mohitjoer/freelance-chat-service/internal/config"
)

func TestNew_SQLite(t *testing.T) {
	req := require.New(t)

	db, err := New(config.DatabaseConfig{
		Driver:   "sqlite",
		FilePath: filepath.Join(t.TempDir(), "chat.db"),
	})
	req.NoError(err)

	sqlDB, err := db.DB()
	req.NoError(err)
	req.NoError(sqlDB.Ping())
	req.NoError(sqlDB.Close())
}

func TestNew_UnsupportedDriver(t *testing.T) {
	req := require.New(t)

	_, err := New(config.DatabaseConfig{Driver: "oracle"})
	req.Error(err)
	req.Contains(err.Error(), "unsupported database driver")
}
