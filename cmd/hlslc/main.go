// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command hlslc converts HLSL shaders to GLSL 4.60 for Vulkan.
//
// Usage:
//
//	hlslc [options] <input>...
//	cat shader.hlsl | hlslc -stage frag [options]
//
// The stage of each input is taken from its extension (.vert/.vs,
// .frag/.ps/.fs, .geom/.gs, optionally followed by .hlsl) unless -stage is
// given. A single input is written to stdout or to -o. Several inputs are
// converted in parallel and each is written next to its input with .glsl
// appended, or into the directory named by -o.
//
// Examples:
//
//	hlslc sky.frag                       # Print GLSL to stdout
//	hlslc -o sky.frag.glsl sky.frag      # Write to a file
//	hlslc -o build/ shaders/*.hlsl       # Convert a shader library
//	hlslc -entry PSMain -stage ps lit.hlsl
//
// Config file:
//
//	hlslc looks for hlslc.json or .hlslcrc in the directory of the first
//	input and its parents. Config file options are overridden by CLI flags.
//
// Example hlslc.json:
//
//	{
//	    "entryPoint": "main",
//	    "uniformSet": 0,
//	    "textureSet": 1,
//	    "samplerSet": 2,
//	    "parallelism": 4
//	}
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gogpu/hlslc"
	"github.com/gogpu/hlslc/internal/config"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

const stdinName = "<stdin>"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		stageName   string
		outputPath  string
		configFile  string
		noConfig    bool
		entryPoint  string
		parallelism int
		verbose     bool
		showVersion bool
	)

	flag.StringVar(&stageName, "stage", "", "Shader `stage` for all inputs (vert, frag, geom)")
	flag.StringVar(&outputPath, "o", "", "Write output to `file` or directory")
	flag.StringVar(&configFile, "config", "", "Use specific config `file`")
	flag.BoolVar(&noConfig, "no-config", false, "Ignore config files")
	flag.StringVar(&entryPoint, "entry", "main", "Entry point `function` name")
	flag.IntVar(&parallelism, "j", 0, "Convert up to `n` files in parallel (default: number of CPUs)")
	flag.BoolVar(&verbose, "v", false, "Log conversion diagnostics to stderr")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "hlslc - HLSL to GLSL converter v%s\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: hlslc [options] <input>...\n")
		fmt.Fprintf(os.Stderr, "       cat shader.hlsl | hlslc -stage frag [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConfig file:\n")
		fmt.Fprintf(os.Stderr, "  Searches for hlslc.json or .hlslcrc in the input directory and its parents.\n")
		fmt.Fprintf(os.Stderr, "  CLI flags override config file settings.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  hlslc sky.frag -o sky.frag.glsl\n")
		fmt.Fprintf(os.Stderr, "  hlslc -o build/ shaders/*.hlsl\n")
		fmt.Fprintf(os.Stderr, "  cat lit.hlsl | hlslc -stage ps -entry PSMain\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("hlslc v%s (%s)\n", version, commit)
		return nil
	}

	if verbose {
		hlslc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	jobs, err := readJobs(flag.Args(), stageName)
	if err != nil {
		return err
	}

	// Load config file
	var cfg *config.Config
	if !noConfig {
		var configPath string
		if configFile != "" {
			cfg, err = config.LoadFile(configFile)
			if err != nil {
				return fmt.Errorf("loading config file %s: %w", configFile, err)
			}
			configPath = configFile
		} else {
			startDir, _ := os.Getwd()
			if jobs[0].Path != stdinName {
				startDir = filepath.Dir(jobs[0].Path)
			}
			cfg, configPath, err = config.Load(startDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
		}
		if configPath != "" {
			hlslc.Logger().Debug("hlslc: using config", "path", configPath)
		}
	}

	// Only explicitly set flags override the config file.
	var cli config.MergeOptions
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "entry":
			cli.EntryPoint = &entryPoint
		case "j":
			cli.Parallelism = &parallelism
		}
	})
	opts := cfg.Merge(cli)
	opts.KeepGoing = true

	multi := len(jobs) > 1
	outIsDir := false
	if outputPath != "" {
		if fi, statErr := os.Stat(outputPath); statErr == nil && fi.IsDir() {
			outIsDir = true
		}
	}
	if _, err := outputFile(jobs[0].Path, outputPath, outIsDir, multi); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Job errors are reported per result below.
	results, _ := hlslc.ConvertAll(ctx, jobs, opts)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", r.Err)
			failed++
			continue
		}
		for _, w := range r.Info.Warnings {
			fmt.Fprintf(os.Stderr, "%s: warning: %s\n", r.Path, w)
		}

		dst, pathErr := outputFile(r.Path, outputPath, outIsDir, multi)
		if pathErr != nil {
			return pathErr
		}
		if writeErr := writeOutput(dst, r.GLSL); writeErr != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", r.Path, writeErr)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(jobs))
	}
	return nil
}

// readJobs reads the inputs named by args, or stdin if there are none.
func readJobs(args []string, stageName string) ([]hlslc.Job, error) {
	var forced *hlslc.Stage
	if stageName != "" {
		s, err := hlslc.ParseStage(stageName)
		if err != nil {
			return nil, err
		}
		forced = &s
	}

	if len(args) == 0 {
		stat, _ := os.Stdin.Stat()
		if stat == nil || stat.Mode()&os.ModeCharDevice != 0 {
			flag.Usage()
			return nil, errors.New("no input file specified")
		}
		if forced == nil {
			return nil, errors.New("-stage is required when reading stdin")
		}
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return []hlslc.Job{{Path: stdinName, Stage: *forced, Source: string(source)}}, nil
	}

	jobs := make([]hlslc.Job, 0, len(args))
	for _, path := range args {
		job, err := readJob(path, forced)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func readJob(path string, forced *hlslc.Stage) (hlslc.Job, error) {
	var stage hlslc.Stage
	if forced != nil {
		stage = *forced
	} else {
		s, err := hlslc.StageFromPath(path)
		if err != nil {
			return hlslc.Job{}, fmt.Errorf("%w (use -stage)", err)
		}
		stage = s
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return hlslc.Job{}, fmt.Errorf("reading input: %w", err)
	}
	return hlslc.Job{Path: path, Stage: stage, Source: string(source)}, nil
}

// outputFile returns where the GLSL for input is written. An empty result
// means stdout.
func outputFile(input, output string, outputIsDir, multi bool) (string, error) {
	switch {
	case outputIsDir && input == stdinName:
		return "", fmt.Errorf("-o %s must name a file when reading stdin", output)
	case outputIsDir:
		return filepath.Join(output, filepath.Base(input)+".glsl"), nil
	case multi && output != "":
		return "", fmt.Errorf("-o %s must be a directory when converting several files", output)
	case multi:
		return input + ".glsl", nil
	default:
		return output, nil
	}
}

func writeOutput(path, glsl string) error {
	if path == "" {
		_, err := io.WriteString(os.Stdout, glsl)
		return err
	}
	return os.WriteFile(path, []byte(glsl), 0644)
}
