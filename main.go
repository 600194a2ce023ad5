package main

import (
	"github.com/shouni/go-web-cookbook/cmd"
)

func main() {
	cmd.Execute()
}
