package main

import (
	"os"

	"github.com/Trinoooo/pingpong/cli"
	"github.com/Trinoooo/pingpong/logs"
)

func main() {
	defer logs.Sync()
	wrapper := cli.NewPingWrapper()
	if err := wrapper.Run(os.Args); err != nil {
		logs.Logger.Fatal(err.Error())
	}
}
