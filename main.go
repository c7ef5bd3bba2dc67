package main

import "github.com/scienceol/tea/cmd"

func main() {
	cmd.Execute()
}
