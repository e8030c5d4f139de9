package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/barlabel/config"
	"github.com/ByLCY/barlabel/ingest"
	"github.com/ByLCY/barlabel/labels"
	"github.com/ByLCY/barlabel/layout"
)

func TestParseCustom(t *testing.T) {
	cfg, err := parseCustom("4inX1in x 2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g, err := layout.Resolve(cfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if g.Columns != 2 || g.PageWidthMM != 101.6 {
		t.Fatalf("unexpected geometry %+v", g)
	}
	for _, bad := range []string{"100", "abcx10", "1x2x3x4"} {
		if _, err := parseCustom(bad); !errors.Is(err, layout.ErrInvalidDimension) {
			t.Fatalf("parseCustom(%q) = %v", bad, err)
		}
	}
}

func TestBuildRequestMergesSources(t *testing.T) {
	req, err := buildRequest(cliOptions{
		input:    filepath.Join("examples", "demo.labels"),
		rangeArg: "X-:1:2",
		preset:   "3x2-1col",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// 2 literals + 12 range + 3 csv rows from the job file, then 2 from -range.
	if len(req.Entries) != 19 {
		t.Fatalf("entries = %d", len(req.Entries))
	}
	if req.Entries[2].Code != "BIN-01" || req.Entries[2].Caption != "Bin 01" {
		t.Fatalf("range entry = %+v", req.Entries[2])
	}
	if last := req.Entries[len(req.Entries)-1]; last.Code != "X-2" {
		t.Fatalf("last entry = %+v", last)
	}
	if req.Geometry.PresetID != "3x2-1col" {
		t.Fatalf("-preset should override the job geometry, got %+v", req.Geometry)
	}
	if req.Meta.Title != "Warehouse shelf labels" {
		t.Fatalf("meta = %+v", req.Meta)
	}

	if _, err := buildRequest(cliOptions{rangeArg: "1:2"}); !errors.Is(err, ingest.ErrInvalidRange) {
		t.Fatalf("malformed -range should fail, got %v", err)
	}
}

func TestRunWritesOutputs(t *testing.T) {
	svc, err := labels.NewService(serviceOptions(config.Default()))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	opts := cliOptions{
		rangeArg: "P-:1:3",
		custom:   "100x30x2",
		output:   filepath.Join(dir, "out", "labels.pdf"),
		pngDir:   filepath.Join(dir, "png"),
		debug:    filepath.Join(dir, "debug.json"),
	}
	res, err := run(context.Background(), svc, opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("pages = %d", len(res.Pages))
	}
	pdf, err := os.ReadFile(opts.output)
	if err != nil || !strings.HasPrefix(string(pdf), "%PDF") {
		t.Fatalf("pdf not written: %v", err)
	}
	pngs, err := os.ReadDir(opts.pngDir)
	if err != nil || len(pngs) != 3 || pngs[0].Name() != "0001-P-1.png" {
		t.Fatalf("png files = %v, %v", pngs, err)
	}
	if _, err := os.Stat(opts.debug); err != nil {
		t.Fatalf("debug json missing: %v", err)
	}

	if _, err := run(context.Background(), svc, cliOptions{output: opts.output}); err == nil {
		t.Fatalf("run without entries should fail")
	}
}
