package main

import "github.com/MrSnakeDoc/seek/internal/cli"

func main() {
	cli.Execute()
}
