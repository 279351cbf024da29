package main

import "github.com/mchmarny/examscore/pkg/cli"

func main() {
	cli.Execute()
}
