package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/umlforge/umlforge/internal/config"
	"github.com/umlforge/umlforge/internal/infrastructure/plantuml"
)

var (
	renderFormat  string
	renderOutput  string
	renderURLOnly bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a PlantUML file through the PlantUML server",
	Long:  "Render a PlantUML file (or stdin when file is - or omitted) and write the image to --output or stdout.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "SVG", "image format: SVG or PNG")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write the image here instead of stdout")
	renderCmd.Flags().BoolVar(&renderURLOnly, "url", false, "print the render URL without fetching it")
	rootCmd.AddCommand(renderCmd)
}

func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

func runRender(cmd *cobra.Command, args []string) error {
	format, ok := plantuml.ParseFormat(strings.ToUpper(renderFormat))
	if !ok {
		return fmt.Errorf(`format must be "SVG" or "PNG", got %q`, renderFormat)
	}

	source, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	if renderURLOnly {
		encoded, err := plantuml.Encode(source)
		if err != nil {
			return fmt.Errorf("encoding source: %w", err)
		}
		base := strings.TrimRight(config.GetPlantUMLServerURL(), "/")
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s/%s\n", base, strings.ToLower(string(format)), encoded)
		return nil
	}

	svc := plantuml.NewService(config.GetPlantUMLServerURL(), config.GetPlantUMLTimeout())
	data, err := svc.Render(cmd.Context(), source, format)
	if err != nil {
		return err
	}

	if renderOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(renderOutput, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", renderOutput, err)
	}
	return nil
}
