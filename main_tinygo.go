//go:build tinygo

package main

import (
	"canclock/app"
	"canclock/hal"
)

func main() {
	app.Start(hal.New())
}
