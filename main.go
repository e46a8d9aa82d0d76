package main

import "github.com/novalabs/novawallet/cmd"

func main() {
	cmd.Execute()
}
