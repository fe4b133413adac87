package main

import (
	"github.com/bimalpaudels/kleinPDF-ghostscript-binary/cmd"
)

func main() {
	cmd.Execute()
}
