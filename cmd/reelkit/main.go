package main

import "reelkit/internal/cli"

func main() {
	cli.Execute()
}
