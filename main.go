package main

import "github.com/theirongolddev/wburn/cmd"

func main() {
	cmd.Execute()
}
