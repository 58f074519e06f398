package main

import "docsnap/internal/cli"

func main() {
	cli.Execute()
}
