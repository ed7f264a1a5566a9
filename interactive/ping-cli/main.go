package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	pcli "github.com/Trinoooo/pingpong/cli"
	"github.com/Trinoooo/pingpong/config"
	"github.com/Trinoooo/pingpong/consts"
	"github.com/Trinoooo/pingpong/initiator"
	"github.com/Trinoooo/pingpong/message"
	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"
)

func main() {
	wrapper := NewCliWrapper()
	if err := wrapper.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type CliWrapper struct {
	app *cli.App
}

func NewCliWrapper() *CliWrapper {
	wrapper := &CliWrapper{
		app: &cli.App{
			Name:    "ping-cli",
			Usage:   "interactive console running ping exchanges on demand",
			Version: consts.Version,
		},
	}
	wrapper.modifyDefaultHelp()
	wrapper.withFlags()
	wrapper.withAction()
	wrapper.withAuthor()
	return wrapper
}

func (wrapper *CliWrapper) Run(args []string) error {
	return wrapper.app.Run(args)
}

func (wrapper *CliWrapper) modifyDefaultHelp() {
	cli.HelpFlag = &cli.BoolFlag{
		Name: "help",
	}
}

func (wrapper *CliWrapper) withFlags() {
	wrapper.app.Flags = []cli.Flag{
		pcli.FlagConfig,
		pcli.FlagHost,
		pcli.FlagPort,
		pcli.FlagLogLevel,
	}
}

func (wrapper *CliWrapper) withAction() {
	wrapper.app.Action = func(ctx *cli.Context) error {
		cfg, err := pcli.LoadConfig(ctx)
		if err != nil {
			return err
		}

		history := filepath.Join(consts.BaseDir, "cli", fmt.Sprintf("cmd_history_%s", time.Now().Format("20060102")))
		if err = os.MkdirAll(filepath.Dir(history), 0755); err != nil {
			return err
		}

		input, err := readline.NewEx(&readline.Config{
			Prompt: fmt.Sprintf("%s> ", cfg.Addr()),
			AutoComplete: readline.NewPrefixCompleter(
				readline.PcItem("ping"),
				readline.PcItem("send"),
				readline.PcItem("exit"),
			),
			HistoryFile: history,
		})
		if err != nil {
			return err
		}
		defer input.Close()

		ini := initiator.NewInitiator(cfg, nil)
		for {
			str, err := input.Readline()
			if err != nil {
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					return nil
				}
				log.Println(err)
				continue
			}
			if strings.EqualFold(strings.TrimSpace(str), "exit") {
				return nil
			}
			handleInput(ini, cfg, str)
		}
	}
}

func (wrapper *CliWrapper) withAuthor() {
	wrapper.app.Authors = []*cli.Author{
		{
			Name:  "Trino",
			Email: "sujun.trinoooo@gmail.com",
		},
	}
}

func handleInput(ini *initiator.Initiator, cfg *config.Config, input string) {
	payload, ok := parseInput(input)
	if !ok {
		return
	}

	// 每次交互单独监听信号，Ctrl-C 只打断当前这次
	ctx, cancel := pcli.SignalContext()
	defer cancel()

	result, err := ini.Exchange(ctx, payload)
	if err != nil {
		log.Printf("# exchange with %s failed, err: %v\n", cfg.Addr(), err)
		return
	}
	if result.Matched {
		log.Printf("# pong (%s)\n", result.ExchangeId)
		return
	}
	log.Printf("# no pong received, got %q (%s)\n", result.Reply, result.ExchangeId)
}

// parseInput 返回要发送的payload，输入不是可执行的命令时 ok 为 false
func parseInput(input string) (payload []byte, ok bool) {
	inputs := strings.Fields(input)
	if len(inputs) <= 0 {
		return nil, false
	}

	switch strings.ToLower(inputs[0]) {
	case "ping":
		return message.Ping.Bytes(), true
	case "send":
		// 原样发送，用来观察pong端对非法payload的处理
		if len(inputs) < 2 {
			log.Println("usage: send <text>")
			return nil, false
		}
		return []byte(strings.Join(inputs[1:], " ")), true
	default:
		log.Println("unsupported command:", inputs[0])
		return nil, false
	}
}
