package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TZ", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Planner", cfg.App.Name)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.False(t, cfg.JWT.Enabled)
	assert.Equal(t, "00:05", cfg.Scheduler.RolloverTime)
}

func TestLoadFileAndEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "planner.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
app:
  timezone: Asia/Shanghai
database:
  driver: postgres
  host: db.internal
server:
  port: 8081
`), 0o600))

	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 9000, cfg.Server.Port)

	loc, err := cfg.App.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", loc.String())
	assert.Contains(t, cfg.Database.GetDSN(), "host=db.internal")
}

func TestValidateConfig(t *testing.T) {
	base := func() Config {
		return Config{
			App:       AppConfig{Timezone: "UTC"},
			Server:    ServerConfig{Port: 3000},
			Database:  DatabaseConfig{Driver: DriverSQLite, Path: "x.db"},
			Scheduler: SchedulerConfig{RolloverTime: "00:05"},
		}
	}

	cfg := base()
	assert.NoError(t, validateConfig(&cfg))

	cfg = base()
	cfg.Database.Driver = "mysql"
	assert.Error(t, validateConfig(&cfg))

	cfg = base()
	cfg.JWT = JWTConfig{Enabled: true, Secret: "short"}
	assert.Error(t, validateConfig(&cfg))

	cfg = base()
	cfg.App.Timezone = "Mars/Olympus"
	assert.Error(t, validateConfig(&cfg))

	cfg = base()
	cfg.Scheduler.RolloverTime = "25:99"
	assert.Error(t, validateConfig(&cfg))

	cfg = base()
	cfg.Server.Port = 0
	assert.Error(t, validateConfig(&cfg))
}

func TestSQLiteDSN(t *testing.T) {
	cfg := DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/p.db"}
	assert.Equal(t, "file:/tmp/p.db?_foreign_keys=on&_busy_timeout=5000", cfg.GetDSN())
}
