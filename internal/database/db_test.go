package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	t.Run("with password", func(t *testing.T) {
		got := DSN("app", "s3cret", "db.internal", "3306", "campus")
		assert.Equal(t,
			"app:s3cret@tcp(db.internal:3306)/campus?charset=utf8mb4&parseTime=true&loc=UTC", got)
	})

	t.Run("empty password omits the colon", func(t *testing.T) {
		got := DSN("root", "", "localhost", "3306", "campus")
		assert.Equal(t,
			"root@tcp(localhost:3306)/campus?charset=utf8mb4&parseTime=true&loc=UTC", got)
	})
}
