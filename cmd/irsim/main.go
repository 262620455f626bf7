package main

import "github.com/irsim/irsim/internal/cli"

func main() {
	cli.Execute()
}
