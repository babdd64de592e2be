package main

import (
	"os"

	"github.com/amzn/ion-cascading-config/cmd/ionconfig/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
