package factory

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/duolog/duolog-server/pkg/config"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestFormatDSN(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	dsn := formatDSN("duo", "p@ss:word", "db.local", 3307, "duolog", "utf8mb4", seoul)
	cfg, err := mysqldriver.ParseDSN(dsn)
	require.NoError(t, err)

	assert.Equal(t, "duo", cfg.User)
	assert.Equal(t, "p@ss:word", cfg.Passwd)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "db.local:3307", cfg.Addr)
	assert.Equal(t, "duolog", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "Asia/Seoul", cfg.Loc.String())
	assert.Equal(t, "utf8mb4", cfg.Params["charset"])
}

func TestReplicaDSNs_InheritPrimary(t *testing.T) {
	info := &config.DatabaseInfo{
		Username: "root",
		Password: "secret",
		Port:     3306,
		DBName:   "duolog",
		Replicas: []config.ReplicaDBInfo{
			{Host: "replica1"},
			{Host: "replica2", Port: 3310, Username: "ro", Password: "ro-pass"},
		},
	}
	dsns := replicaDSNs(info, "utf8mb4", time.UTC)
	require.Len(t, dsns, 2)

	first, err := mysqldriver.ParseDSN(dsns[0])
	require.NoError(t, err)
	assert.Equal(t, "root", first.User)
	assert.Equal(t, "secret", first.Passwd)
	assert.Equal(t, "replica1:3306", first.Addr)

	second, err := mysqldriver.ParseDSN(dsns[1])
	require.NoError(t, err)
	assert.Equal(t, "ro", second.User)
	assert.Equal(t, "replica2:3310", second.Addr)
	assert.Equal(t, "duolog", second.DBName)

	// the config itself is left untouched
	assert.Empty(t, info.Replicas[0].Username)
}

func TestGormLoggerConfig(t *testing.T) {
	assert.Equal(t, logger.Info, gormLoggerConfig(true).LogLevel)
	assert.Equal(t, logger.Warn, gormLoggerConfig(false).LogLevel)
	assert.True(t, gormLoggerConfig(false).IgnoreRecordNotFoundError)
}
