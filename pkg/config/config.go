package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	appConfig     *AppConfig
	dbTablePrefix = "dl_"
)

type AppConfig struct {
	RDS       *redis.Client
	DB        *gorm.DB
	Logger    *logrus.Logger
	NatsConn  *nats.Conn
	JetStream jetstream.JetStream

	RootWorkingDir string
	Client         ClientInfo      `yaml:"client"`
	LogSettings    LogSettings     `yaml:"log_settings"`
	RedisInfo      RedisInfo       `yaml:"redis_info"`
	DatabaseInfo   DatabaseInfo    `yaml:"database_info"`
	NatsInfo       NatsInfo        `yaml:"nats_info"`
	Insights       *InsightsConfig `yaml:"insights"`
	Capture        CaptureSettings `yaml:"capture"`
	Quota          QuotaSettings   `yaml:"quota"`
	Meeting        MeetingSettings `yaml:"meeting"`
}

type ClientInfo struct {
	Port           int            `yaml:"port"`
	Debug          bool           `yaml:"debug"`
	PrometheusConf PrometheusConf `yaml:"prometheus"`
	ProxyHeader    string         `yaml:"proxy_header"`
	// UserIdHeader is set by the gateway in front of this server once it
	// has authenticated the caller.
	UserIdHeader string `yaml:"user_id_header"`
}

type PrometheusConf struct {
	Enable      bool   `yaml:"enable"`
	MetricsPath string `yaml:"metrics_path"`
}

type LogSettings struct {
	LogFile    string  `yaml:"log_file"`
	MaxSize    int     `yaml:"max_size"`
	MaxBackups int     `yaml:"max_backups"`
	MaxAge     int     `yaml:"max_age"`
	LogLevel   *string `yaml:"log_level"`
	// Format is "text" (default) or "json".
	Format string `yaml:"format"`
	// RotateEvery rotates the file on a fixed interval as well as on size.
	RotateEvery time.Duration `yaml:"rotate_every"`
}

type DatabaseInfo struct {
	DriverName      string          `yaml:"driver_name"`
	Host            string          `yaml:"host"`
	Port            int32           `yaml:"port"`
	Username        string          `yaml:"username"`
	Password        string          `yaml:"password"`
	DBName          string          `yaml:"db"`
	Prefix          string          `yaml:"prefix"`
	Charset         *string         `yaml:"charset"`
	Loc             *string         `yaml:"loc"`
	ConnMaxLifetime *time.Duration  `yaml:"conn_max_lifetime"`
	MaxOpenConns    *int            `yaml:"max_open_conns"`
	Replicas        []ReplicaDBInfo `yaml:"replicas"`
}

// ReplicaDBInfo holds connection details for a read replica database.
type ReplicaDBInfo struct {
	Host     string `yaml:"host"`
	Port     int32  `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RedisInfo struct {
	Host              string        `yaml:"host"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	DBName            int           `yaml:"db"`
	UseTLS            bool          `yaml:"use_tls"`
	MasterName        string        `yaml:"sentinel_master_name"`
	SentinelUsername  string        `yaml:"sentinel_username"`
	SentinelPassword  string        `yaml:"sentinel_password"`
	SentinelAddresses []string      `yaml:"sentinel_addresses"`
	PoolSize          int           `yaml:"pool_size"`
	DialTimeout       time.Duration `yaml:"dial_timeout"`
}

type NatsInfo struct {
	NatsUrls   []string     `yaml:"nats_urls"`
	User       string       `yaml:"user"`
	Password   string       `yaml:"password"`
	QueueGroup string       `yaml:"queue_group"`
	Subjects   NatsSubjects `yaml:"subjects"`
}

type NatsSubjects struct {
	// Transcripts is the prefix, the meeting id is appended per meeting.
	Transcripts string `yaml:"transcripts"`
	SummaryJobs string `yaml:"summary_jobs"`
}

type QuotaSettings struct {
	// FreeSeconds is what a user gets on first use.
	FreeSeconds    int64    `yaml:"free_seconds"`
	PremiumUserIds []string `yaml:"premium_user_ids"`
}

type MeetingSettings struct {
	LanguageA      string        `yaml:"language_a"`
	LanguageB      string        `yaml:"language_b"`
	AutoSummarize  bool          `yaml:"auto_summarize"`
	SummaryLockTTL time.Duration `yaml:"summary_lock_ttl"`
	HistoryTTL     time.Duration `yaml:"history_ttl"`
}

// New fills the default values and keeps the config for global usage.
func New(appCnf *AppConfig) (*AppConfig, error) {
	if appCnf.Client.Port == 0 {
		appCnf.Client.Port = 8080
	}
	if appCnf.Client.UserIdHeader == "" {
		appCnf.Client.UserIdHeader = "X-User-Id"
	}
	if appCnf.Client.PrometheusConf.Enable && appCnf.Client.PrometheusConf.MetricsPath == "" {
		appCnf.Client.PrometheusConf.MetricsPath = "/metrics"
	}

	if appCnf.DatabaseInfo.Prefix != "" {
		dbTablePrefix = appCnf.DatabaseInfo.Prefix
	}

	if appCnf.NatsInfo.QueueGroup == "" {
		appCnf.NatsInfo.QueueGroup = "duolog-workers"
	}
	if appCnf.NatsInfo.Subjects.Transcripts == "" {
		appCnf.NatsInfo.Subjects.Transcripts = "duolog.meeting"
	}
	if appCnf.NatsInfo.Subjects.SummaryJobs == "" {
		appCnf.NatsInfo.Subjects.SummaryJobs = "duolog.jobs.summary"
	}

	if appCnf.Quota.FreeSeconds <= 0 {
		// one hour for every new user
		appCnf.Quota.FreeSeconds = 3600
	}

	if appCnf.Meeting.LanguageA == "" {
		appCnf.Meeting.LanguageA = "ko"
	}
	if appCnf.Meeting.LanguageB == "" {
		appCnf.Meeting.LanguageB = "en"
	}
	if appCnf.Meeting.LanguageA == appCnf.Meeting.LanguageB {
		return nil, fmt.Errorf("meeting default languages must differ, both are %q", appCnf.Meeting.LanguageA)
	}
	if appCnf.Meeting.SummaryLockTTL <= 0 {
		appCnf.Meeting.SummaryLockTTL = 2 * time.Minute
	}
	if appCnf.Meeting.HistoryTTL <= 0 {
		appCnf.Meeting.HistoryTTL = 24 * time.Hour
	}

	appCnf.Capture.setDefaults()

	appConfig = appCnf
	return appCnf, nil
}

func GetConfig() *AppConfig {
	return appConfig
}

// IsPremiumUser reports whether the user is excluded from the free time quota.
func (a *AppConfig) IsPremiumUser(userId string) bool {
	for _, id := range a.Quota.PremiumUserIds {
		if strings.EqualFold(id, userId) {
			return true
		}
	}
	return false
}

func FormatDBTable(table string) string {
	if dbTablePrefix != "" {
		return dbTablePrefix + table
	}
	return table
}
