package main

import "github.com/tessro/stave/internal/cli"

func main() {
	cli.Execute()
}
