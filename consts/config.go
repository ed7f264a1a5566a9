package consts

import (
	"fmt"

	"github.com/mitchellh/go-homedir"
)

// viper keys
const (
	ConfigHost           = "host"
	ConfigPort           = "port"
	ConfigBacklog        = "backlog"
	ConfigReadBufferSize = "read_buffer_size"
	ConfigLogLevel       = "log_level"
	ConfigDialTimeout    = "dial_timeout"
	ConfigReadTimeout    = "read_timeout"
	ConfigMetricsPushUrl = "metrics.push_url"
	ConfigMetricsJob     = "metrics.job"
)

func init() {
	home, _ := homedir.Dir()
	BaseDir = fmt.Sprintf("%s/pingpong", home)
	DefaultConfigPath = BaseDir
}

var (
	BaseDir           string
	DefaultConfigPath string
)
