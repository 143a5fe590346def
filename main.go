package main

import "mspro-labs/shop-sync/cmd"

func main() {
	cmd.Execute()
}
