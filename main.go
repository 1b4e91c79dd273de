package main

import "github.com/example/storefront/cli"

func main() {
	cli.Execute()
}
