package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"

	defaultListenAddr = ":50051"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig                 `yaml:"server"`
	Logging  LoggingConfig                `yaml:"logging"`
	Source   SourceConfig                 `yaml:"source"`
	Database DatabaseConfig               `yaml:"database"`
	Audit    AuditConfig                  `yaml:"audit"`
	Mappings map[string]map[string]string `yaml:"mappings"`
	Output   OutputConfig                 `yaml:"output"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// LoggingConfig は zap ロガーの設定です。
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"`
	Development bool   `yaml:"development"`
}

// SourceConfig は入力テーブルの読み込み元です。
// driver が file のとき Files、postgres のとき Tables を種別名で引きます。
type SourceConfig struct {
	Driver string            `yaml:"driver"`
	Files  map[string]string `yaml:"files"`
	Tables map[string]string `yaml:"tables"`
}

// AuditConfig はルール評価のパラメータです。未指定の項目は既定値になります。
type AuditConfig struct {
	Profile             string   `yaml:"profile"`
	MinAttendanceDays   *int     `yaml:"min_attendance_days"`
	BenfordThresholdPct *float64 `yaml:"benford_threshold_pct"`
	BenfordEnabled      *bool    `yaml:"benford_enabled"`
}

// OutputConfig は結果ファイルの出力先です。
type OutputConfig struct {
	WorkbookPath string `yaml:"workbook_path"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// Default は設定ファイルを使わない場合の設定を返します。
func Default() *Config {
	cfg := &Config{}
	if err := cfg.validateAndNormalize(); err != nil {
		panic(err)
	}
	return cfg
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = defaultListenAddr
	}

	if err := c.Logging.validateAndNormalize(); err != nil {
		return err
	}

	c.Source.Driver = strings.ToLower(strings.TrimSpace(c.Source.Driver))
	switch c.Source.Driver {
	case "":
		c.Source.Driver = DriverFile
	case DriverFile, DriverPostgres:
	default:
		return fmt.Errorf("config: source.driver must be %q or %q, got %q", DriverFile, DriverPostgres, c.Source.Driver)
	}
	if err := checkKinds("source.files", c.Source.Files); err != nil {
		return err
	}
	if err := checkKinds("source.tables", c.Source.Tables); err != nil {
		return err
	}
	if err := checkKinds("mappings", c.Mappings); err != nil {
		return err
	}

	if c.Source.Driver == DriverPostgres {
		if err := c.Database.validateAndNormalize(); err != nil {
			return err
		}
	}

	if _, err := c.AuditParams(); err != nil {
		return fmt.Errorf("config: audit: %w", err)
	}
	return nil
}

func (l *LoggingConfig) validateAndNormalize() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	switch l.Level {
	case "":
		l.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.level %q is not supported", l.Level)
	}

	switch l.Encoding {
	case "":
		l.Encoding = "json"
	case "json", "console":
	default:
		return fmt.Errorf("config: logging.encoding %q is not supported", l.Encoding)
	}
	return nil
}

func checkKinds[V any](section string, m map[string]V) error {
	for k := range m {
		if _, err := dataset.ParseKind(k); err != nil {
			return fmt.Errorf("config: %s: %w", section, err)
		}
	}
	return nil
}

// ValidateDatabase は database セクションを検証します。source.driver が file のときでもマイグレーションで使用します。
func (c *Config) ValidateDatabase() error {
	return c.Database.validateAndNormalize()
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

// DSN は pgx 用の接続文字列を返します。認証情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// AuditParams は audit セクションを評価パラメータに変換します。
func (c *Config) AuditParams() (audit.Params, error) {
	p := audit.DefaultParams()
	p.Profile = audit.Profile(c.Audit.Profile)
	if c.Audit.MinAttendanceDays != nil {
		p.MinAttendanceDays = *c.Audit.MinAttendanceDays
	}
	if c.Audit.BenfordThresholdPct != nil {
		p.BenfordThresholdPct = *c.Audit.BenfordThresholdPct
	}
	if c.Audit.BenfordEnabled != nil {
		p.BenfordEnabled = *c.Audit.BenfordEnabled
	}
	return p.Validate()
}

// KindMappings は mappings セクションを種別ごとの手動対応付けに変換します。
func (c *Config) KindMappings() map[dataset.Kind]map[string]string {
	return byKind(c.Mappings)
}

// FilePaths は source.files を種別ごとのパスに変換します。
func (c *Config) FilePaths() map[dataset.Kind]string {
	return byKind(c.Source.Files)
}

// TableNames は source.tables を種別ごとのテーブル名に変換します。
func (c *Config) TableNames() map[dataset.Kind]string {
	return byKind(c.Source.Tables)
}

func byKind[V any](m map[string]V) map[dataset.Kind]V {
	out := make(map[dataset.Kind]V, len(m))
	for k, v := range m {
		kind, err := dataset.ParseKind(k)
		if err != nil {
			continue
		}
		out[kind] = v
	}
	return out
}
