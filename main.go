package main

import "nathanbeddoewebdev/transip-dns/cmd"

func main() {
	cmd.Execute()
}
