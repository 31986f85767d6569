package main

import (
	"fmt"
	"os"

	"github.com/chaohung/png-decoder/internal/png"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [file]",
	Short: "Inspect PNG header and the normalization it needs",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	h, err := png.ReadHeader(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	fmt.Printf("File:        %s\n", path)
	fmt.Printf("Dimensions:  %d x %d\n", h.Width, h.Height)
	fmt.Printf("Color type:  %s\n", h.ColorType)
	fmt.Printf("Bit depth:   %d\n", h.BitDepth)
	fmt.Printf("Channels:    %d\n", h.Channels)
	fmt.Printf("Interlace:   %s\n", h.Interlace)
	fmt.Printf("Compression: %d\n", h.Compression)
	fmt.Printf("Filter:      %d\n", h.Filter)
	fmt.Printf("tRNS:        %v\n", h.HasTransparency)
	fmt.Printf("Transforms:  %s\n", png.Plan(h))
	fmt.Printf("RGBA size:   %d bytes\n", h.Width*h.Height*4)
	fmt.Printf("File size:   %d bytes (%.1f KB)\n", len(data), float64(len(data))/1024)
	fmt.Printf("libpng:      %s\n", png.LibpngVersion())

	return nil
}
