package main

import "mmapbench/pkg/cli"

func main() {
	cli.Main(cli.NewPrepareCmd())
}
