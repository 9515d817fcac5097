package main

import "github.com/felo/eml-extractor/internal/cli"

func main() {
	cli.Execute()
}
