package main

import "github.com/escuriola/edaitorial/internal/cli"

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	cli.Execute(version)
}
