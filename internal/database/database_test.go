package database

import (
	"testing"

	"saasadmin/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "data.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("data.db"))
	assert.Equal(t, "file:x?mode=memory&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("file:x?mode=memory"))
}
