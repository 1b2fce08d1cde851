package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := NewCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
