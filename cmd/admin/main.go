package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Antoney20/archives/internal/admin"
)

func main() {
	cmd := admin.NewRootCommand(os.Stdin, os.Stdout)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
