package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/duolog/duolog-server/pkg/config"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

const (
	defaultConnMaxLifetime = 4 * time.Minute
	defaultMaxOpenConns    = 10
)

// NewDatabaseConnection opens the MySQL primary, registers read replicas
// with dbresolver and keeps the pool on appCnf.DB.
func NewDatabaseConnection(ctx context.Context, appCnf *config.AppConfig) error {
	info := appCnf.DatabaseInfo
	charset := "utf8mb4"
	if info.Charset != nil && *info.Charset != "" {
		charset = *info.Charset
	}
	loc := time.UTC
	if info.Loc != nil && *info.Loc != "" {
		l, err := time.LoadLocation(*info.Loc)
		if err != nil {
			return fmt.Errorf("invalid database loc %q: %w", *info.Loc, err)
		}
		loc = l
	}

	primary := mysql.New(mysql.Config{
		DSN: formatDSN(info.Username, info.Password, info.Host, info.Port, info.DBName, charset, loc),
	})
	db, err := gorm.Open(primary, &gorm.Config{
		Logger: logger.New(appCnf.Logger, gormLoggerConfig(appCnf.Client.Debug)),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if replicas := replicaDSNs(&info, charset, loc); len(replicas) > 0 {
		appCnf.Logger.Infof("found %d read replicas, configuring dbresolver", len(replicas))
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, dsn := range replicas {
			dialectors = append(dialectors, mysql.Open(dsn))
		}
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas:          dialectors,
			Policy:            dbresolver.RandomPolicy{},
			TraceResolverMode: appCnf.Client.Debug,
		}))
		if err != nil {
			return fmt.Errorf("failed to register replicas: %w", err)
		}
	}

	d, err := db.DB()
	if err != nil {
		return err
	}
	if err = d.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	connMaxLifetime := defaultConnMaxLifetime
	if info.ConnMaxLifetime != nil && *info.ConnMaxLifetime > 0 {
		connMaxLifetime = *info.ConnMaxLifetime
	}
	maxOpenConns := defaultMaxOpenConns
	if info.MaxOpenConns != nil && *info.MaxOpenConns > 0 {
		maxOpenConns = *info.MaxOpenConns
	}
	// https://github.com/go-sql-driver/mysql?tab=readme-ov-file#important-settings
	d.SetConnMaxLifetime(connMaxLifetime)
	d.SetMaxOpenConns(maxOpenConns)
	d.SetMaxIdleConns(maxOpenConns)

	appCnf.DB = db
	return nil
}

func gormLoggerConfig(debug bool) logger.Config {
	if debug {
		return logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		}
	}
	return logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	}
}

// replicaDSNs builds one DSN per replica. Missing credentials and port are
// taken from the primary.
func replicaDSNs(info *config.DatabaseInfo, charset string, loc *time.Location) []string {
	dsns := make([]string, 0, len(info.Replicas))
	for _, r := range info.Replicas {
		if r.Username == "" {
			r.Username = info.Username
		}
		if r.Password == "" {
			r.Password = info.Password
		}
		if r.Port == 0 {
			r.Port = info.Port
		}
		dsns = append(dsns, formatDSN(r.Username, r.Password, r.Host, r.Port, info.DBName, charset, loc))
	}
	return dsns
}

func formatDSN(user, password, host string, port int32, dbName, charset string, loc *time.Location) string {
	c := mysqldriver.NewConfig()
	c.User = user
	c.Passwd = password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", host, port)
	c.DBName = dbName
	c.ParseTime = true
	c.Loc = loc
	c.Params = map[string]string{"charset": charset}
	return c.FormatDSN()
}
