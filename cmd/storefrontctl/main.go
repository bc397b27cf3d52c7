// Command storefrontctl is the operator CLI for the storefront service.
package main

import "storefront-service/cmd/storefrontctl/commands"

func main() {
	commands.Execute()
}
