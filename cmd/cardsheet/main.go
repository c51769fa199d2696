package main

import (
	"cardsheet/internal/cli"
)

func main() {
	cli.Execute()
}
