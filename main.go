package main

import "github.com/Mohsinsiddi/w3pool/cmd"

func main() {
	cmd.Execute()
}
