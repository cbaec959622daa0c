// cmd/cellscope/main.go
package main

import (
	"cellscope/internal/app"
	"cellscope/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
