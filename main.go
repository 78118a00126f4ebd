package main

import "github.com/xrsl/texcv/cmd"

func main() {
	cmd.Execute()
}
