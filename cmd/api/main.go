package main

import (
	"go.uber.org/fx"

	"github.com/prg-dinamics/dynedu/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
