package main

import (
	"os"

	"github.com/orcc/xronos-sub018/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
