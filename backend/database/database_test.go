package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenDatabase(t *testing.T) {
	a := require.New(t)

	sut, err := OpenDatabase(filepath.Join(t.TempDir(), "nested", "history.db"))
	a.Nil(err)
	defer sut.Close()

	a.Nil(sut.Session().Ping())
}

func TestDatabase_MigrateDB(t *testing.T) {
	a := require.New(t)

	dbPath := filepath.Join(t.TempDir(), "history.db")
	sut, err := OpenDatabase(dbPath)
	a.Nil(err)

	t.Run("Already migrated", func(t *testing.T) {
		exists, err := sut.Migrate()
		a.Nil(err)
		a.Equal(TableExists, exists)
	})
	sut.Close()

	t.Run("Reopen", func(t *testing.T) {
		reopened, err := OpenDatabase(dbPath)
		a.Nil(err)
		defer reopened.Close()

		exists, err := reopened.Migrate()
		a.Nil(err)
		a.Equal(TableExists, exists)
	})
}
