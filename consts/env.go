package consts

const (
	EnvPrefix = "PINGPONG"           // viper 环境变量前缀
	Host      = "PINGPONG_HOST"      // 主机名，目前只支持ip
	Port      = "PINGPONG_PORT"      // 端口
	Backlog   = "PINGPONG_BACKLOG"   // 未accept连接队列长度
	LogLevel  = "PINGPONG_LOG_LEVEL" // 日志级别
	Config    = "PINGPONG_CONFIG"    // 配置文件目录
	Env       = "PINGPONG_ENV"       // 运行环境，test时使用开发日志
)
