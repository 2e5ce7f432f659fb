package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/yoga-lecture-api/pkg/config"
)

func TestDSNPinsSessionToUTC(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "yoga",
		Password: "secret",
		Name:     "lectures",
		SSLMode:  "require",
	})

	assert.Equal(t, "host=db port=5433 user=yoga password=secret dbname=lectures sslmode=require timezone=UTC", dsn)
}
