package main

import "github.com/shelfline/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
