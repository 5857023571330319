package config

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromFile(t *testing.T) {
	cnf := Configuration{
		ProjectName: "Test Klub",
		DataSource:  DataSourceConfig{Dns: "postgres://localhost:5432/klub"},
		Redis:       RedisConfig{Dns: "localhost:6379"},
	}
	f, err := os.CreateTemp("", "klub*.json")
	assert.NoError(t, err)
	defer os.Remove(f.Name())
	assert.NoError(t, json.NewEncoder(f).Encode(&cnf))
	assert.NoError(t, f.Close())

	err = loadConfigFromFile(f.Name())
	assert.NoError(t, err)

	loaded, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "Test Klub", loaded.ProjectName)
	assert.Equal(t, "statements", loaded.Queue.StatementQueue)
	assert.Equal(t, "https://www.darujme.cz/dar/api/darujme_api.php", loaded.Darujme.ApiUrl)
	assert.Equal(t, 5, loaded.Queue.MaxRetryAttempts)
}

func TestLoadConfigMissingDataSource(t *testing.T) {
	t.Setenv("KLUB_DATA_SOURCE_DNS", "")
	t.Setenv("KLUB_REDIS_DNS", "")
	err := loadConfigFromFile("nonexistent.json")
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("KLUB_DATA_SOURCE_DNS", "postgres://db:5432/klub")
	t.Setenv("KLUB_REDIS_DNS", "redis:6379")
	t.Setenv("KLUB_PROJECT_NAME", "Env Klub")

	err := loadConfigFromFile("nonexistent.json")
	assert.NoError(t, err)

	loaded, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "Env Klub", loaded.ProjectName)
	assert.Equal(t, "postgres://db:5432/klub", loaded.DataSource.Dns)
}
