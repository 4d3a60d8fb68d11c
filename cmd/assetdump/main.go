package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pixil98/go-rotmg/cmd/assetdump/command"
)

func main() {
	if err := command.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
