package main

import "github.com/jrsteele09/go-asset-console/cmd/assetctl/cmd"

func main() {
	cmd.Execute()
}
