package main

import "github.com/moyu-x/doc-renamer/cmd"

func main() {
	cmd.Execute()
}
