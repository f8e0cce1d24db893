package main

import "github.com/rustyeddy/optionometer/internal/cli"

func main() {
	cli.Execute()
}
