// Modelka CLI — инструмент командной строки для управления
// training jobs, данными и model registry через HTTP API.
//
// Использование:
//
//	modelka [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	job       Управление training jobs
//	data      Управление обучающими данными
//	model     Просмотр model registry
//	pipeline  Статус pipeline'а
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Modelka/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "modelka",
		Short:         "Modelka CLI — training pipeline tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewJobCmd(clientFn, outputFn),
		cli.NewDataCmd(clientFn, outputFn),
		cli.NewModelCmd(clientFn, outputFn),
		cli.NewPipelineCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
