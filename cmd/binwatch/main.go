package main

import "github.com/wnt/binwatch/cmd"

func main() {
	cmd.Execute()
}
