package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Trinoooo/pingpong/consts"
	"github.com/Trinoooo/pingpong/errs"
	"github.com/Trinoooo/pingpong/logs"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Host           string
	Port           int
	Backlog        int
	ReadBufferSize int
	LogLevel       string
	DialTimeout    time.Duration // 0 表示不超时
	ReadTimeout    time.Duration // 0 表示不超时
	MetricsPushUrl string        // 为空时不推送
	MetricsJob     string
}

// New returns a viper instance carrying the defaults and PINGPONG_* env bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(consts.ConfigHost, consts.DefaultHost)
	v.SetDefault(consts.ConfigPort, consts.DefaultPort)
	v.SetDefault(consts.ConfigBacklog, consts.DefaultBacklog)
	v.SetDefault(consts.ConfigReadBufferSize, consts.ReadBufferSize)
	v.SetDefault(consts.ConfigLogLevel, "info")
	v.SetDefault(consts.ConfigDialTimeout, time.Duration(0))
	v.SetDefault(consts.ConfigReadTimeout, time.Duration(0))
	v.SetDefault(consts.ConfigMetricsPushUrl, "")
	v.SetDefault(consts.ConfigMetricsJob, "pingpong")

	v.SetEnvPrefix(consts.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads config.yaml from dir into v. A missing file is not an error,
// the defaults are enough to run both roles.
func Read(v *viper.Viper, dir string) error {
	if dir == "" {
		dir = consts.DefaultConfigPath
	}
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			logs.Logger.Debug("config file not found, use defaults", zap.String(consts.LogFieldAddr, dir))
			return nil
		}
		e := errs.NewReadConfigErr().WithErr(err)
		logs.Logger.Error(e.Error())
		return e
	}
	return nil
}

func Load(dir string) (*Config, error) {
	v := New()
	if err := Read(v, dir); err != nil {
		return nil, err
	}
	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func FromViper(v *viper.Viper) *Config {
	return &Config{
		Host:           v.GetString(consts.ConfigHost),
		Port:           v.GetInt(consts.ConfigPort),
		Backlog:        v.GetInt(consts.ConfigBacklog),
		ReadBufferSize: v.GetInt(consts.ConfigReadBufferSize),
		LogLevel:       v.GetString(consts.ConfigLogLevel),
		DialTimeout:    v.GetDuration(consts.ConfigDialTimeout),
		ReadTimeout:    v.GetDuration(consts.ConfigReadTimeout),
		MetricsPushUrl: v.GetString(consts.ConfigMetricsPushUrl),
		MetricsJob:     v.GetString(consts.ConfigMetricsJob),
	}
}

// Default is the configuration both roles run with when nothing is configured.
func Default() *Config {
	return FromViper(New())
}

func (c *Config) Validate() error {
	// port 0 只允许用于测试场景下的随机端口
	if c.Port < 0 || c.Port > 65535 {
		return invalidParam("port", int64(c.Port))
	}
	if c.Backlog <= 0 {
		return invalidParam("backlog", int64(c.Backlog))
	}
	if c.ReadBufferSize <= 0 || c.ReadBufferSize > consts.MB {
		return invalidParam("read_buffer_size", int64(c.ReadBufferSize))
	}
	if c.DialTimeout < 0 {
		return invalidParam("dial_timeout", int64(c.DialTimeout))
	}
	if c.ReadTimeout < 0 {
		return invalidParam("read_timeout", int64(c.ReadTimeout))
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func invalidParam(name string, value int64) error {
	e := errs.NewInvalidParamErr()
	logs.Logger.Error(e.Error(), zap.String(consts.LogFieldParams, name), zap.Int64(consts.LogFieldValue, value))
	return e
}
