package main

import "github.com/anirudhraja/pureproto/internal/cli"

func main() {
	cli.Execute()
}
