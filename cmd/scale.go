package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/umlforge/umlforge/pkg/umltext"
)

var (
	scaleWidth  int
	scaleHeight int
	scaleMax    bool
)

var scaleCmd = &cobra.Command{
	Use:   "scale [file]",
	Short: "Insert a scale directive before @enduml",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScale,
}

func init() {
	scaleCmd.Flags().IntVar(&scaleWidth, "width", 0, "target width in pixels")
	scaleCmd.Flags().IntVar(&scaleHeight, "height", 0, "target height in pixels")
	scaleCmd.Flags().BoolVar(&scaleMax, "max", false, "only scale down to fit")
	rootCmd.AddCommand(scaleCmd)
}

func runScale(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	scaled, err := umltext.InsertScale(source, scaleWidth, scaleHeight, scaleMax)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), scaled)
	return nil
}
