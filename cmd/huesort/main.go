// Huesort - product photo colour classification
//
// Huesort extracts the dominant colour from product photographs and
// maps it to a configured colour category.
package main

import (
	"github.com/huesort/huesort/internal/cli"
)

func main() {
	cli.Execute()
}
