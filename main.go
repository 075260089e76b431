package main

import "newsclf/cli"

func main() {
	cli.Execute()
}
