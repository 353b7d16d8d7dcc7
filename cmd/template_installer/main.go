package main

import (
	"os"

	"github.com/grandchild/template_installer"
)

func main() {
	os.Exit(template_installer.Run())
}
