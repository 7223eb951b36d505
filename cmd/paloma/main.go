/*
Package main is the entry point for the paloma CLI.

paloma is an accounting help assistant for SYSCOHADA bookkeeping. It
answers questions from a knowledge base and adapts its answers to each
user from the feedback it receives.

Usage:

	paloma [command]

Available Commands:

	ask         Ask the assistant a question
	feedback    Record feedback on the answer to a question
	insights    Show what the assistant has learned
	profile     Show the personalization state of a user
	learning    Manage the learning system
	knowledge   Inspect the knowledge base
	config      Manage the paloma configuration file
	serve       Run the assistant as a JSON-RPC server (stdio transport)
	version     Show version information

Examples:

	# Ask a question
	paloma ask "Comment créer une facture d'achat ?"

	# Tell the assistant the answer helped
	paloma feedback "Comment créer une facture d'achat ?" positive

	# Run as JSON-RPC server
	paloma serve
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/paloma/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
