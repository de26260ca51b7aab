package main

import "github.com/pfa/go-eigrp/cmd"

func main() {
	cmd.Execute()
}
