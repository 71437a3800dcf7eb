package main

import "github.com/aalvaropc/linefit/internal/cli"

func main() {
	cli.Execute()
}
