// CLAUDE:SUMMARY folioctl CLI: import a document to HTML or Markdown, resolve slugs, extract tables of contents.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
