package main

import (
	"github.com/Laisky/notion-blog/cmd"
)

func main() {
	cmd.Execute()
}
