package main

import "github.com/beldeveloper/gitflow-promoter/internal/cli"

func main() {
	cli.Execute()
}
