package main

import "github.com/mvp-joe/doclet-gen/internal/cli"

func main() {
	cli.Execute()
}
