// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlslc converts HLSL shader source into GLSL 4.60 for Vulkan.
//
// The converter handles the subset of HLSL an engine's shader library is
// written in: constant buffers, structs, textures and samplers, static
// arrays, helper functions and one entry point per stage. The output is meant
// to be compiled to SPIR-V by a GLSL front end such as glslang.
//
// Example usage:
//
//	source := `
//	Texture2D Albedo : register(t0);
//	SamplerState Linear : register(s0);
//	float4 main(float2 uv : TEXCOORD0) : SV_Target {
//	    return Albedo.Sample(Linear, uv);
//	}
//	`
//	glsl, err := hlslc.Convert(hlslc.StageFragment, source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Whole shader libraries are converted with [ConvertAll], which runs the
// independent stages in parallel and returns results in input order.
//
// For reflection data, use [ConvertWithOptions] or the glsl package directly:
//
//	out, info, err := glsl.Compile(glsl.StageVertex, source, glsl.DefaultOptions())
package hlslc

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/hlslc/glsl"
)

// Stage selects the shader stage a translation unit is converted for.
type Stage = glsl.Stage

const (
	StageVertex   = glsl.StageVertex
	StageFragment = glsl.StageFragment
	StageGeometry = glsl.StageGeometry
)

// ParseStage parses a stage name such as "vert", "fragment" or "gs".
func ParseStage(name string) (Stage, error) {
	return glsl.ParseStage(name)
}

// Options configures a single conversion.
type Options = glsl.Options

// TranslationInfo contains reflection data gathered during a conversion.
type TranslationInfo = glsl.TranslationInfo

// DefaultOptions returns the default conversion options.
func DefaultOptions() Options {
	return glsl.DefaultOptions()
}

// Convert converts include-expanded HLSL source to GLSL using default options.
func Convert(stage Stage, source string) (string, error) {
	out, _, err := ConvertWithOptions(stage, source, DefaultOptions())
	return out, err
}

// ConvertWithOptions converts HLSL source to GLSL with custom options.
// A nil opts.Logger is replaced by the package logger (see [SetLogger]).
func ConvertWithOptions(stage Stage, source string, opts Options) (string, TranslationInfo, error) {
	if opts.Logger == nil {
		opts.Logger = Logger()
	}
	out, info, err := glsl.Compile(stage, source, opts)
	if err != nil {
		return "", TranslationInfo{}, err
	}
	opts.Logger.Debug("hlslc: converted", "stage", stage, "in", len(source), "out", len(out),
		"warnings", len(info.Warnings))
	return out, info, nil
}

// StageFromPath infers the shader stage from a file name. The stage
// extension may be followed by .hlsl, so both "sky.frag" and "sky.frag.hlsl"
// are fragment shaders. Recognized extensions are .vert/.vs, .frag/.ps/.fs
// and .geom/.gs.
func StageFromPath(path string) (Stage, error) {
	base := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(base)
	if ext == ".hlsl" {
		ext = filepath.Ext(strings.TrimSuffix(base, ext))
	}
	if ext == "" {
		return 0, fmt.Errorf("hlslc: cannot infer shader stage of %s", path)
	}
	stage, err := glsl.ParseStage(ext[1:])
	if err != nil {
		return 0, fmt.Errorf("hlslc: cannot infer shader stage of %s: %w", path, err)
	}
	return stage, nil
}

// Job is one translation unit of a batch.
type Job struct {
	// Path identifies the job in errors and logs. It is not read.
	Path   string
	Stage  Stage
	Source string
}

// Result is the outcome of one Job.
type Result struct {
	Path string
	GLSL string
	Info TranslationInfo
	// Err is set if the job failed or was skipped after another job failed.
	Err error
}

// BatchOptions configures ConvertAll.
type BatchOptions struct {
	Options

	// Parallelism bounds the number of concurrent conversions.
	// Defaults to runtime.GOMAXPROCS(0) if zero or negative.
	Parallelism int

	// KeepGoing converts every job even if some fail. The returned error
	// joins all job errors.
	KeepGoing bool
}

// ConvertAll converts jobs concurrently. Results are returned in the order of
// jobs. Unless opts.KeepGoing is set, the first failure cancels the jobs that
// have not started and is returned; their results carry the context error.
func ConvertAll(ctx context.Context, jobs []Job, opts BatchOptions) ([]Result, error) {
	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = Logger()
	}

	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range jobs {
		i, job := i, job // per-iteration copies (Go 1.22 loopvar semantics)
		results[i].Path = job.Path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}

			jobOpts := opts.Options
			jobOpts.Logger = log.With("path", job.Path)
			out, info, err := ConvertWithOptions(job.Stage, job.Source, jobOpts)
			if err != nil {
				err = fmt.Errorf("%s: %w", job.Path, err)
				results[i].Err = err
				if opts.KeepGoing {
					return nil
				}
				return err
			}
			results[i].GLSL = out
			results[i].Info = info
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Debug("hlslc: batch aborted", "jobs", len(jobs), "err", err)
		return results, err
	}

	var errs []error
	for i := range results {
		if results[i].Err != nil {
			errs = append(errs, results[i].Err)
		}
	}
	log.Debug("hlslc: batch done", "jobs", len(jobs), "failed", len(errs))
	return results, errors.Join(errs...)
}
