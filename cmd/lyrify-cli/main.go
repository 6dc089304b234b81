package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lyrify/internal/cli"

	"github.com/alexflint/go-arg"
)

func main() {
	// Parse command-line arguments
	var args cli.Args
	parser := arg.MustParse(&args)

	if err := args.Validate(); err != nil {
		parser.Fail(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliHandler, err := cli.New(&args, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = cliHandler.Execute(ctx, &args)
	if closeErr := cliHandler.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error closing history store: %v\n", closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
