package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"inspectoradf/internal/config"
	"inspectoradf/internal/domain"
	"inspectoradf/internal/forensics"
	"inspectoradf/pkg/utils"
)

var (
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print reports as JSON lines",
	}

	legacyFlag = &cli.BoolFlag{
		Name:  "legacy",
		Usage: "Match the EXIF weight against the rendered hint text (old scoring)",
	}

	analyzeCmd = &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze image files or directories of images",
		ArgsUsage: "PATH...",
		Flags: []cli.Flag{
			jsonFlag,
			legacyFlag,
		},
		Action: cmdAnalyze,
	}
)

type fileReport struct {
	Path   string         `json:"path"`
	Report *domain.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func cmdAnalyze(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one path is required")
	}

	cfg, err := config.LoadForensic()
	if err != nil {
		return err
	}

	log := newLogger(c)
	defer log.Sync()

	opts := forensics.OptionsFromConfig(cfg)
	if c.Bool(legacyFlag.Name) {
		opts.Score.Legacy = true
	}
	analyzer := forensics.NewAnalyzer(opts, log)

	paths, err := expandPaths(utils.NewImageProcessor(log), c.Args().Slice())
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range paths {
		fr := fileReport{Path: path}

		data, err := os.ReadFile(path)
		if err == nil {
			fr.Report, err = analyzer.Analyze(data)
		}
		if err != nil {
			fr.Error = err.Error()
			failed++
		}

		if c.Bool(jsonFlag.Name) {
			if err := json.NewEncoder(c.App.Writer).Encode(fr); err != nil {
				return err
			}
			continue
		}
		printReport(c.App.Writer, fr)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be analyzed", failed, len(paths))
	}
	return nil
}

func expandPaths(p *utils.ImageProcessor, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		files, err := p.ListImageFiles(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, files...)
	}
	return paths, nil
}

func printReport(w io.Writer, fr fileReport) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "== %s\n", filepath.Base(fr.Path))

	if fr.Error != "" {
		color.New(color.FgRed).Fprintf(w, "error: %s\n\n", fr.Error)
		return
	}

	r := fr.Report
	fmt.Fprintf(w, "EXIF:\n%s\n\n", r.Exif.Render())
	fmt.Fprintf(w, "Noise: %.2f\n", r.Noise)
	fmt.Fprintf(w, "ELA: %.2f\n", r.ELA)
	fmt.Fprintf(w, "Score: %.1f\n", r.Score)
	verdictColor(r.Verdict).Fprintf(w, "Verdict: %s\n\n", r.Verdict.Text())
}

func verdictColor(v domain.Verdict) *color.Color {
	switch v {
	case domain.LowProbability:
		return color.New(color.FgGreen)
	case domain.SomeIndicators:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}
