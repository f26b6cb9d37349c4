package main

import (
	"os"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
