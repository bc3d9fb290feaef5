package main

import "github.com/shahzaib-autos/shahzaib-autos-api/cmd"

func main() {
	cmd.Execute()
}
