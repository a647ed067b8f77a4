package main

import (
	"fmt"
	"os"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/umlforge/umlforge/internal/api/v1/handlers"
	"github.com/umlforge/umlforge/internal/services"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "umlforge",
	Short: "umlforge - PlantUML rendering and assistant service",
	Long: `umlforge renders PlantUML diagrams, asks OpenAI assistants to write or
explain them, and keeps a per-user diagram library.

  umlforge serve                         Start the HTTP server
  umlforge render diagram.puml -o a.svg  Render a diagram through the PlantUML server
  umlforge scale diagram.puml --width 800  Insert a scale directive`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupRouter(services *services.Services) *mux.Router {
	r := mux.NewRouter()
	handlers.RegisterRoutes(r, services)
	return r
}
