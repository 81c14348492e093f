// Command roictl replays gesture scripts and inspects ROI-set files without a display.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roiboard/roiboard/internal/asset"
	"github.com/roiboard/roiboard/internal/config"
	"github.com/roiboard/roiboard/internal/document"
	"github.com/roiboard/roiboard/internal/engine"
	"github.com/roiboard/roiboard/internal/prefs"
	"github.com/roiboard/roiboard/internal/script"
)

const usage = `usage: roictl <command> [flags] <file>

commands:
  replay   run a YAML gesture script and write the resulting ROI set
  inspect  print the status line of every ROI in a set file
  recent   list recently used files
`

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "replay":
		err = runReplay(os.Stdout, args)
	case "inspect":
		err = runInspect(os.Stdout, args)
	case "recent":
		err = runRecent(os.Stdout, args)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error(os.Args[1], "error", err)
		os.Exit(1)
	}
}

func openPrefs() *prefs.Store {
	p, err := prefs.Open(prefs.AppName)
	if err != nil {
		slog.Warn("preferences unavailable", "error", err)
		if p == nil {
			return prefs.New(nil)
		}
	}
	return p
}

func runReplay(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	out := fs.String("o", "", "output ROI-set file (default: <script>.rois.json)")
	profile := fs.String("profile", os.Getenv("ENGINE_PROFILE"), "engine profile YAML")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("replay needs exactly one script file")
	}
	scriptPath := fs.Arg(0)

	opts, err := config.LoadEngine(*profile)
	if err != nil {
		return err
	}
	s, err := script.Load(scriptPath)
	if err != nil {
		return err
	}

	e := engine.New(opts)
	intents, err := script.Run(e, s)
	if err != nil {
		return err
	}
	for _, in := range intents {
		fmt.Fprintf(w, "%-12s %s\n", in.Kind, in.ROIID)
	}

	set, err := e.Document()
	if err != nil {
		return err
	}
	if *out == "" {
		*out = strings.TrimSuffix(scriptPath, filepath.Ext(scriptPath)) + ".rois.json"
	}
	if err := document.WriteFile(*out, set); err != nil {
		return err
	}
	fmt.Fprintln(w, e.Status())
	fmt.Fprintf(w, "wrote %d ROIs to %s\n", len(set.ROIs), *out)

	p := openPrefs()
	p.AddRecent(*out)
	p.SetZoom(e.Viewport().Scale)
	if err := p.Save(); err != nil {
		slog.Warn("save preferences", "error", err)
	}
	return nil
}

func runInspect(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	stats := fs.Bool("stats", false, "print an area summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("inspect needs exactly one ROI-set file")
	}
	path := fs.Arg(0)

	set, err := document.ReadFile(path)
	if err != nil {
		return err
	}

	e := engine.New(engine.DefaultOptions())
	imagePath := set.ImagePath
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(filepath.Dir(path), imagePath)
	}
	if size, err := asset.ProbeFile(imagePath); err == nil {
		if err := e.LoadImage(set.ImagePath, size); err != nil {
			return err
		}
	} else {
		slog.Warn("image not readable, status lines omit it", "image", imagePath, "error", err)
	}
	if err := e.LoadROISet(set); err != nil {
		return err
	}

	fmt.Fprintln(w, e.Status())
	for _, r := range e.ROIs() {
		if err := e.Select(r.ID); err != nil {
			return err
		}
		fmt.Fprintln(w, e.Status())
	}

	if *stats {
		printSummary(w, document.Summarize(set))
	}

	p := openPrefs()
	p.AddRecent(path)
	if err := p.Save(); err != nil {
		slog.Warn("save preferences", "error", err)
	}
	return nil
}

func printSummary(w io.Writer, s document.Summary) {
	fmt.Fprintf(w, "ROIs: %d | Total area: %.0f px²\n", s.Count, s.TotalArea)
	if s.Count == 0 {
		return
	}
	fmt.Fprintf(w, "Area: mean %.1f | sd %.1f | median %.0f | min %.0f | max %.0f\n",
		s.MeanArea, s.StdDevArea, s.MedianArea, s.MinArea, s.MaxArea)
	for _, t := range s.TagNames() {
		fmt.Fprintf(w, "  %-20s %d\n", t, s.Tags[t])
	}
}

func runRecent(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("recent", flag.ContinueOnError)
	clearList := fs.Bool("clear", false, "forget the recent files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := openPrefs()
	if *clearList {
		p.ClearRecent()
		return p.Save()
	}
	for i, path := range p.Recent() {
		fmt.Fprintf(w, "%2d  %s\n", i+1, path)
	}
	fmt.Fprintf(w, "last zoom: %.2f×\n", p.Zoom())
	return nil
}
