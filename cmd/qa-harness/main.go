package main

import "github.com/davarch/qa-harness/cmd/qa-harness/cli"

func main() {
	cli.Execute()
}
