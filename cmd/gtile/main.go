// cmd/gtile/main.go
package main

import (
	"gtile/internal/app"
	"gtile/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
