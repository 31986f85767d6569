package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaohung/png-decoder/internal/pipeline"
	"github.com/chaohung/png-decoder/internal/texture"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a PNG to raw RGBA (raw output + JSON sidecar)",
	RunE:  runDecode,
}

func init() {
	decodeCmd.Flags().StringP("input", "i", "", "Input PNG file")
	decodeCmd.Flags().StringP("output", "o", "", "Output raw RGBA file")
	decodeCmd.Flags().Bool("mem", false, "Read the whole file into memory before decoding")
	decodeCmd.Flags().Bool("flip", false, "Store rows bottom-up")
	decodeCmd.Flags().Int("width", 0, "Resize to this width (0 keeps source)")
	decodeCmd.Flags().Int("height", 0, "Resize to this height (0 keeps source)")
	decodeCmd.Flags().String("filter", "catmullrom", "Resize filter (catmullrom, bilinear, nearest)")
	decodeCmd.MarkFlagRequired("input")
	decodeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(decodeCmd)
}

type sourceMeta struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	BitDepth   int    `json:"bitDepth"`
	ColorType  string `json:"colorType"`
	Interlace  string `json:"interlace"`
	Transforms string `json:"transforms"`
}

type decodeMeta struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Format string     `json:"format"`
	Source sourceMeta `json:"source"`
}

func runDecode(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	inMemory, _ := cmd.Flags().GetBool("mem")
	flip, _ := cmd.Flags().GetBool("flip")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	filterStr, _ := cmd.Flags().GetString("filter")

	filter, err := texture.ParseFilter(filterStr)
	if err != nil {
		return err
	}
	metaPath, err := sidecarPath(outputPath)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		FlipVertical: flip,
		Width:        width,
		Height:       height,
		Filter:       filter,
	}

	var result *pipeline.Result
	if inMemory {
		inputData, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		result, err = pipeline.Run(inputData, opts)
		if err != nil {
			return err
		}
	} else {
		result, err = pipeline.RunFile(inputPath, opts)
		if err != nil {
			return err
		}
	}

	img := result.Image
	if err := os.WriteFile(outputPath, img.Pixels, 0644); err != nil {
		return fmt.Errorf("writing raw RGBA: %w", err)
	}

	// Write JSON sidecar
	meta := decodeMeta{
		Width:  img.Width,
		Height: img.Height,
		Format: "RGBA8",
		Source: sourceMeta{
			Width:      result.Source.Width,
			Height:     result.Source.Height,
			BitDepth:   result.Source.BitDepth,
			ColorType:  result.Source.ColorType.String(),
			Interlace:  result.Source.Interlace.String(),
			Transforms: result.Transforms.String(),
		},
	}
	metaJSON, _ := json.MarshalIndent(meta, "", "  ")
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return fmt.Errorf("writing sidecar: %w", err)
	}

	fmt.Printf("Decoded %s → %dx%d raw RGBA (%d bytes)\n", inputPath, img.Width, img.Height, len(img.Pixels))
	fmt.Printf("Sidecar: %s\n", metaPath)
	return nil
}

// sidecarPath names the JSON file written next to the raw output.
func sidecarPath(outputPath string) (string, error) {
	metaPath := strings.TrimSuffix(outputPath, ".rgba") + ".json"
	if filepath.Clean(metaPath) == filepath.Clean(outputPath) {
		return "", fmt.Errorf("output %s would be overwritten by its JSON sidecar", outputPath)
	}
	return metaPath, nil
}
