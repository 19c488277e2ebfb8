package main

import (
	"os"

	"github.com/opticini/opticini-cli/internal/adapter/driven/config"
	"github.com/opticini/opticini-cli/internal/adapter/driving/cli"
	"github.com/opticini/opticini-cli/pkg/console"
)

func main() {
	// Os casos de uso são montados depois que a configuração é lida
	app := cli.NewCLIApp(config.NewConfigRepository(), console.NewConsole())

	// Executa o aplicativo; o erro já foi exibido
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}
