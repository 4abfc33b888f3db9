package main

import (
	"fmt"
	"os"

	"github.com/jordanlanch/leadgrid/cmd/leadctl/cmds"
)

func main() {
	if err := cmds.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
