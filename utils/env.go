package utils

import (
	"os"

	"github.com/Trinoooo/pingpong/consts"
)

func Env() string {
	return os.Getenv(consts.Env)
}

func IsTest() bool {
	return Env() == "test"
}
