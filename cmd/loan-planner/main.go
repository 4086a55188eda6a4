package main

import (
	"os"

	"github.com/iwvelando/loan-planner/cmd/loan-planner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
