package config

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ricirt/sender-queue/internal/domain"
)

// Config holds the run configuration. It is loaded once per invocation and
// passed by value or pointer into each component; nothing mutates it after Load.
//
// Section names match the legacy INI file so the same file works unchanged:
//
//	[DB_PARAM]      database connection
//	[DATA_PARAM]    metadata filter
//	[SENDER_PARAM]  queue feeding limits and the list file
//	[LOG]           log destination
//	[EMAIL]         empty-backlog notification
//	[METRICS]       optional Pushgateway
type Config struct {
	Database DBConfig      `mapstructure:"db_param"`
	Data     DataConfig    `mapstructure:"data_param"`
	Sender   SenderConfig  `mapstructure:"sender_param"`
	Log      LogConfig     `mapstructure:"log"`
	Email    EmailConfig   `mapstructure:"email"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
}

type DBConfig struct {
	// URL, when set, wins over the individual connection fields.
	URL         string `mapstructure:"url"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	SID         string `mapstructure:"sid"`
	ServiceName string `mapstructure:"service_name"`
	SSLMode     string `mapstructure:"sslmode"`
	MaxConns    int32  `mapstructure:"max_conns"`
}

type DataConfig struct {
	StartDate  string `mapstructure:"start_date"`
	EndDate    string `mapstructure:"end_date"`
	TesterType string `mapstructure:"tester_type"`
	DataType   string `mapstructure:"data_type"`
}

type SenderConfig struct {
	SenderID           int64  `mapstructure:"sender_id"`
	NumberOfDataToSend int    `mapstructure:"number_of_data_to_send"`
	CountLimitTrigger  int64  `mapstructure:"count_limit_trigger"`
	ListFile           string `mapstructure:"list_file"`

	// InsertRate caps inserts per second; zero means unlimited.
	InsertRate float64 `mapstructure:"insert_rate"`

	// SkipDuplicates drops list entries already present in the queue for
	// this sender instead of inserting them again.
	SkipDuplicates bool `mapstructure:"skip_duplicates"`
}

type LogConfig struct {
	File   string `mapstructure:"log_file"`
	Level  string `mapstructure:"level"`
	Stderr bool   `mapstructure:"stderr"`
}

type EmailConfig struct {
	Recipients    []string `mapstructure:"recipients"`
	Subject       string   `mapstructure:"subject"`
	Message       string   `mapstructure:"message"`
	HeaderSubject string   `mapstructure:"header_subject"`
	BodyTemplate  string   `mapstructure:"body_template"`
	From          string   `mapstructure:"from"`
	SMTPHost      string   `mapstructure:"smtp_host"`
	SMTPPort      int      `mapstructure:"smtp_port"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// EnvPrefix prefixes every environment override, e.g.
// SENDERQ_SENDER_PARAM_COUNT_LIMIT_TRIGGER.
const EnvPrefix = "SENDERQ"

// legacyKeys maps key names used by older config files to their current names.
var legacyKeys = map[string]string{
	"email.recepients": "email.recipients",
	"email.jira":       "email.message",
}

// dateLayouts are tried in order when parsing start_date and end_date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02-Jan-06",
	"02-Jan-2006",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_param.port", 5432)
	v.SetDefault("db_param.sslmode", "disable")
	v.SetDefault("db_param.max_conns", 2)

	v.SetDefault("sender_param.number_of_data_to_send", 10)
	v.SetDefault("sender_param.count_limit_trigger", 100)
	v.SetDefault("sender_param.list_file", "list.txt")
	v.SetDefault("sender_param.insert_rate", 0)
	v.SetDefault("sender_param.skip_duplicates", false)

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.stderr", false)

	v.SetDefault("email.header_subject", "Historical Loading")
	v.SetDefault("email.from", "sender-queue@localhost")
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 25)

	v.SetDefault("metrics.job", "sender_queue")
}

// Load reads the configuration file at path, applies SENDERQ_* environment
// overrides and validates the result. Files ending in .ini, .cfg or .conf are
// parsed as INI; other extensions are left to viper.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, Config{})

	if path != "" {
		v.SetConfigFile(path)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ini", ".cfg", ".conf":
			v.SetConfigType("ini")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	for legacy, current := range legacyKeys {
		if !v.IsSet(current) && v.IsSet(legacy) {
			v.Set(current, v.Get(legacy))
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvs registers every leaf key of cfg so environment variables are seen
// by Unmarshal even when the file does not mention the key.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(append([]string{}, parts...), tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, reflect.Zero(f.Type).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}

func (c *Config) normalize() {
	var recipients []string
	for _, r := range c.Email.Recipients {
		for _, part := range strings.Split(r, ",") {
			if p := strings.TrimSpace(part); p != "" {
				recipients = append(recipients, p)
			}
		}
	}
	c.Email.Recipients = recipients

	c.Data.TesterType = strings.TrimSpace(c.Data.TesterType)
	c.Data.DataType = strings.TrimSpace(c.Data.DataType)
	c.Sender.ListFile = strings.TrimSpace(c.Sender.ListFile)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

// Validate reports every problem at once, wrapped in domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		add("db_param.host or db_param.url is required")
	}
	if c.Database.URL == "" && c.Database.DatabaseName() == "" {
		add("db_param.sid or db_param.service_name is required")
	}
	if c.Database.MaxConns < 1 {
		add("db_param.max_conns must be at least 1")
	}

	if c.Data.TesterType == "" {
		add("data_param.tester_type is required")
	}
	if c.Data.DataType == "" {
		add("data_param.data_type is required")
	}
	from, to, err := c.Data.Range()
	if err != nil {
		add("%v", err)
	} else if to.Before(from) {
		add("data_param.end_date is before start_date")
	}

	if c.Sender.SenderID == 0 {
		add("sender_param.sender_id is required")
	}
	if c.Sender.NumberOfDataToSend < 1 {
		add("sender_param.number_of_data_to_send must be at least 1")
	}
	if c.Sender.CountLimitTrigger < 1 {
		add("sender_param.count_limit_trigger must be at least 1")
	}
	if c.Sender.ListFile == "" {
		add("sender_param.list_file is required")
	}
	if c.Sender.InsertRate < 0 {
		add("sender_param.insert_rate must not be negative")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		add("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}

	if c.Email.SMTPPort < 1 || c.Email.SMTPPort > 65535 {
		add("email.smtp_port %d is out of range", c.Email.SMTPPort)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// DatabaseName prefers the service name over the SID.
func (d DBConfig) DatabaseName() string {
	if d.ServiceName != "" {
		return d.ServiceName
	}
	return d.SID
}

// ConnString returns a pgx connection URL.
func (d DBConfig) ConnString() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.DatabaseName(),
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

// Range parses the configured date range.
func (d DataConfig) Range() (time.Time, time.Time, error) {
	from, err := parseDate(d.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data_param.start_date: %w", err)
	}
	to, err := parseDate(d.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data_param.end_date: %w", err)
	}
	return from, to, nil
}

// MetadataFilter builds the metadata view filter. It assumes Validate passed.
func (c *Config) MetadataFilter() domain.MetadataFilter {
	from, to, _ := c.Data.Range()
	return domain.MetadataFilter{
		From:       from,
		To:         to,
		TesterType: c.Data.TesterType,
		DataType:   c.Data.DataType,
	}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
