package main

import "github.com/pfrederiksen/league-schedule/internal/cli"

func main() {
	cli.Execute()
}
