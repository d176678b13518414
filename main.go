package main

import (
	"github.com/mj1618/fiberscope/cmd"
	_ "github.com/mj1618/fiberscope/internal/platform/chrome"
)

func main() {
	cmd.Execute()
}
