package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Trinoooo/pingpong/config"
	"github.com/Trinoooo/pingpong/consts"
	"github.com/Trinoooo/pingpong/errs"
	"github.com/Trinoooo/pingpong/initiator"
	"github.com/Trinoooo/pingpong/logs"
	"github.com/Trinoooo/pingpong/metrics"
	"github.com/Trinoooo/pingpong/responder"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	FlagConfig = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   consts.DefaultConfigPath,
		Usage:   "directory holding config.yaml.",
		EnvVars: []string{consts.Config},
	}
	FlagHost = &cli.StringFlag{
		Name:    "host",
		Aliases: []string{"h"},
		Value:   consts.DefaultHost,
		Usage:   "server host name, only ip is supported.",
		EnvVars: []string{consts.Host},
	}
	FlagPort = &cli.IntFlag{
		Name:    "port",
		Aliases: []string{"p"},
		Value:   consts.DefaultPort,
		Usage:   "server port number, 0 < port < 65535 are available.",
		Action: func(c *cli.Context, port int) error {
			if port < 0 || port > 65535 {
				e := errs.NewInvalidParamErr()
				logs.Logger.Error(e.Error(), zap.String(consts.LogFieldParams, "port"), zap.Int(consts.LogFieldValue, port))
				return e
			}
			return nil
		},
		EnvVars: []string{consts.Port},
	}
	FlagLogLevel = &cli.StringFlag{
		Name:    "log-level",
		Aliases: []string{"l"},
		Value:   "info",
		Usage:   "debug, info, warn or error.",
		EnvVars: []string{consts.LogLevel},
	}
	flagBacklog = &cli.IntFlag{
		Name:    "backlog",
		Aliases: []string{"b"},
		Value:   consts.DefaultBacklog,
		Usage:   "pending connection queue depth, 0 < backlog <= 4000 are available.",
		Action: func(c *cli.Context, backlog int) error {
			if backlog <= 0 || backlog > 4000 {
				e := errs.NewInvalidParamErr()
				logs.Logger.Error(e.Error(), zap.String(consts.LogFieldParams, "backlog"), zap.Int(consts.LogFieldValue, backlog))
				return e
			}
			return nil
		},
		EnvVars: []string{consts.Backlog},
	}
)

type Wrapper struct {
	app *cli.App
}

// NewPingWrapper builds the initiator command: one exchange, then exit.
func NewPingWrapper() *Wrapper {
	wrapper := &Wrapper{
		app: &cli.App{
			Name:    "ping",
			Usage:   "connect to pong, send ping and wait for pong",
			Version: consts.Version,
		},
	}
	wrapper.modifyDefaultHelp()
	wrapper.withFlags(FlagConfig, FlagHost, FlagPort, FlagLogLevel)
	wrapper.withAction(pingAction)
	wrapper.withAuthor()
	return wrapper
}

// NewPongWrapper builds the responder command: serve until one ping is answered.
func NewPongWrapper() *Wrapper {
	wrapper := &Wrapper{
		app: &cli.App{
			Name:    "pong",
			Usage:   "listen for ping and answer pong",
			Version: consts.Version,
		},
	}
	wrapper.modifyDefaultHelp()
	wrapper.withFlags(FlagConfig, FlagHost, FlagPort, FlagLogLevel, flagBacklog)
	wrapper.withAction(pongAction)
	wrapper.withAuthor()
	return wrapper
}

func (wrapper *Wrapper) Run(args []string) error {
	return wrapper.app.Run(args)
}

func (wrapper *Wrapper) modifyDefaultHelp() {
	cli.HelpFlag = &cli.BoolFlag{
		Name: "help",
	}
	cli.AppHelpTemplate = consts.HelpTemplate
}

func (wrapper *Wrapper) withFlags(flags ...cli.Flag) {
	wrapper.app.Flags = flags
}

func (wrapper *Wrapper) withAction(action cli.ActionFunc) {
	wrapper.app.Action = action
}

func (wrapper *Wrapper) withAuthor() {
	wrapper.app.Authors = []*cli.Author{
		{
			Name:  "Trino",
			Email: "sujun.trinoooo@gmail.com",
		},
	}
}

// LoadConfig merges config.yaml, PINGPONG_* env and explicitly set flags, the
// latter winning, and applies the log level.
func LoadConfig(ctx *cli.Context) (*config.Config, error) {
	v := config.New()
	if err := config.Read(v, ctx.String(FlagConfig.Name)); err != nil {
		return nil, err
	}
	if ctx.IsSet(FlagHost.Name) {
		v.Set(consts.ConfigHost, ctx.String(FlagHost.Name))
	}
	if ctx.IsSet(FlagPort.Name) {
		v.Set(consts.ConfigPort, ctx.Int(FlagPort.Name))
	}
	if ctx.IsSet(FlagLogLevel.Name) {
		v.Set(consts.ConfigLogLevel, ctx.String(FlagLogLevel.Name))
	}
	if ctx.IsSet(flagBacklog.Name) {
		v.Set(consts.ConfigBacklog, ctx.Int(flagBacklog.Name))
	}

	cfg := config.FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logs.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	logs.Logger.Debug("config loaded",
		zap.String(consts.LogFieldAddr, cfg.Addr()),
		zap.Stringer("log_level", logs.Level()),
		zap.Duration("read_timeout", cfg.ReadTimeout))
	return cfg, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func pingAction(ctx *cli.Context) error {
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return err
	}

	mh := metrics.NewMetricsHelper(consts.RoleInitiator, cfg.MetricsPushUrl, cfg.MetricsJob)
	mh.Start()
	defer func() {
		if e := mh.Close(); e != nil {
			logs.Logger.Warn("flush metrics failed", zap.Error(e))
		}
	}()

	sigCtx, cancel := SignalContext()
	defer cancel()

	logs.Logger.Info("ping starting up", zap.String(consts.LogFieldAddr, cfg.Addr()))
	// 没收到pong不算失败，只有传输层错误才非0退出
	_, err = initiator.NewInitiator(cfg, mh).Run(sigCtx)
	if errors.Is(err, context.Canceled) {
		logs.Logger.Info("shutdown...")
		return nil
	}
	return err
}

func pongAction(ctx *cli.Context) error {
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return err
	}

	mh := metrics.NewMetricsHelper(consts.RoleResponder, cfg.MetricsPushUrl, cfg.MetricsJob)
	mh.Start()
	defer func() {
		if e := mh.Close(); e != nil {
			logs.Logger.Warn("flush metrics failed", zap.Error(e))
		}
	}()

	sigCtx, cancel := SignalContext()
	defer cancel()

	logs.Logger.Info("pong starting up", zap.String(consts.LogFieldAddr, cfg.Addr()))
	err = responder.NewResponder(cfg, mh).Run(sigCtx)
	if errors.Is(err, context.Canceled) {
		logs.Logger.Info("shutdown...")
		return nil
	}
	return err
}
