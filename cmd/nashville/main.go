// Command nashville renders Nashville Number System chord charts into
// lettered keys, as plain text or typeset XeLaTeX/PDF sheets.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/chartworks/nashville/core/bundle"
	"github.com/chartworks/nashville/core/key"
	"github.com/chartworks/nashville/core/library"
	"github.com/chartworks/nashville/core/sqlite"
	"github.com/chartworks/nashville/core/tex"
	"github.com/chartworks/nashville/core/tokenize"
	"github.com/chartworks/nashville/core/transpose"
	"github.com/chartworks/nashville/internal/fileutil"
	"github.com/chartworks/nashville/internal/logging"
)

const version = "0.2.0"

// defaultKeys is the full render set: the NNS passthrough plus the
// twelve major keys.
var defaultKeys = strings.Join(key.DefaultNames, ",")

// CLI defines the command-line interface for nashville.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"text"`
	DB        string `name:"db" help:"Chart library database path" default:"nashville.db" type:"path"`

	Render  RenderCmd    `cmd:"" default:"withargs" help:"Render a chart into one or more keys"`
	Library LibraryGroup `cmd:"" help:"Stored chart operations"`
	Version VersionCmd   `cmd:"" help:"Print version information"`
}

// LibraryGroup contains stored chart operations.
type LibraryGroup struct {
	Add     LibraryAddCmd     `cmd:"" help:"Store a chart source under a name"`
	List    LibraryListCmd    `cmd:"" help:"List stored charts"`
	Show    LibraryShowCmd    `cmd:"" help:"Print a stored chart source"`
	Remove  LibraryRemoveCmd  `cmd:"" help:"Remove a stored chart"`
	History LibraryHistoryCmd `cmd:"" help:"Show the render history of a stored chart"`
}

// RenderCmd renders a chart source into every requested key.
type RenderCmd struct {
	Input string `arg:"" optional:"" help:"Chart source file ('-' or empty reads stdin)" type:"path"`
	Chart string `help:"Render a stored library chart instead of a file"`

	Keys    string  `short:"k" default:"${default_keys}" help:"Comma-separated target keys"`
	Name    string  `short:"n" help:"Output base name (defaults to the input stem)"`
	Size    float64 `short:"s" default:"10" help:"Body font size in points"`
	Tex     bool    `help:"Write .tex sources without compiling PDFs"`
	Print   bool    `short:"p" help:"Print transposed charts as text to stdout"`
	Out     string  `short:"o" default:"." help:"Output directory" type:"path"`
	Bundle  string  `help:"Pack outputs into a .tar.gz or .tar.xz bundle" type:"path"`
	Workers int     `help:"Concurrent key renders (0 = all CPUs)"`
}

// Run executes the render command.
func (c *RenderCmd) Run() error {
	if c.Input != "" && c.Chart != "" {
		return fmt.Errorf("pass a source file or --chart, not both")
	}

	lines, name, chartID, err := c.source()
	if err != nil {
		return err
	}
	if c.Name != "" {
		name = c.Name
	}

	res := tokenize.Parse(lines, tokenize.DefaultOptions())
	for _, diag := range res.Diagnostics {
		logging.Warn("formatting", "detail", diag.Error())
	}
	if len(res.ChordErrors) > 0 {
		for _, cerr := range res.ChordErrors {
			fmt.Fprintln(os.Stderr, cerr.Error())
		}
		return fmt.Errorf("%d invalid chord(s)", len(res.ChordErrors))
	}
	if res.Document.Title != "" && name == "chart" {
		name = res.Document.Title
	}

	texCfg := tex.DefaultConfig()
	texCfg.FontSize = c.Size
	if err := texCfg.Validate(); err != nil {
		return err
	}

	keyNames := splitKeys(c.Keys)
	run := transpose.New(transpose.DefaultConfig()).Run(res.Document, keyNames, c.Workers)
	for _, failure := range run.Failures {
		logging.Error("render failed", "key", failure.Key, "error", failure.Err.Error())
	}

	if c.Print {
		for _, doc := range run.Documents {
			fmt.Printf("=== %s ===\n", doc.Key)
			for _, line := range doc.Text() {
				fmt.Println(line)
			}
			fmt.Println()
		}
		return c.finish(run.Failures)
	}

	outDir := c.Out
	if c.Bundle != "" {
		tmp, err := os.MkdirTemp("", "nashville-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmp)
		outDir = tmp
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	renderer := tex.NewRenderer(texCfg)
	compiler := &tex.Compiler{KeepTex: false}

	for _, doc := range run.Documents {
		start := time.Now()
		src, err := renderer.Render(doc)
		if err != nil {
			return err
		}

		texPath := filepath.Join(outDir, tex.FileName(name, doc.Key)+".tex")
		if err := os.WriteFile(texPath, []byte(src), 0644); err != nil {
			return fmt.Errorf("write %s: %w", texPath, err)
		}

		if !c.Tex {
			result, err := compiler.Compile(context.Background(), texPath)
			if err != nil {
				return err
			}
			logging.RenderComplete(name, doc.Key, result.Duration, "output", result.PDFPath)
		} else {
			logging.RenderComplete(name, doc.Key, time.Since(start), "output", texPath)
		}

		if chartID != "" {
			if err := c.recordRender(chartID, doc.Key); err != nil {
				logging.Warn("render history not recorded", "error", err.Error())
			}
		}
	}

	if c.Bundle != "" {
		if err := bundle.Create(outDir, c.Bundle); err != nil {
			return err
		}
		logging.Info("bundle written", "path", c.Bundle)
	}

	return c.finish(run.Failures)
}

// source resolves the chart lines and default output name from the
// input file, stdin, or the library.
func (c *RenderCmd) source() (lines []string, name, chartID string, err error) {
	if c.Chart != "" {
		store, err := library.Open(CLI.DB)
		if err != nil {
			return nil, "", "", err
		}
		defer store.Close()

		stored, err := store.Get(c.Chart)
		if err != nil {
			return nil, "", "", err
		}
		return stored.Lines(), stored.Name, stored.ID, nil
	}

	if c.Input == "" || c.Input == "-" {
		lines, err = fileutil.ReadLinesFrom(os.Stdin)
		return lines, "chart", "", err
	}

	lines, err = fileutil.ReadLines(c.Input)
	if err != nil {
		return nil, "", "", err
	}
	stem := strings.TrimSuffix(filepath.Base(c.Input), filepath.Ext(c.Input))
	return lines, stem, "", nil
}

// recordRender logs one render into the library's history.
func (c *RenderCmd) recordRender(chartID, keyName string) error {
	store, err := library.Open(CLI.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRender(chartID, keyName)
}

// finish converts per-key failures into the command's exit error.
func (c *RenderCmd) finish(failures []transpose.KeyFailure) error {
	if len(failures) > 0 {
		return fmt.Errorf("%d key(s) failed to render", len(failures))
	}
	return nil
}

// splitKeys splits a comma-separated key list, trimming blanks.
func splitKeys(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LibraryAddCmd stores a chart source under a name.
type LibraryAddCmd struct {
	Input string `arg:"" help:"Chart source file" type:"existingfile"`
	Name  string `short:"n" help:"Chart name (defaults to the input stem)"`
}

// Run executes the library add command.
func (c *LibraryAddCmd) Run() error {
	name := c.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(c.Input), filepath.Ext(c.Input))
	}

	lines, err := fileutil.ReadLines(c.Input)
	if err != nil {
		return err
	}

	// Reject sources with invalid chords before they enter the library.
	res := tokenize.Parse(lines, tokenize.DefaultOptions())
	if len(res.ChordErrors) > 0 {
		for _, cerr := range res.ChordErrors {
			fmt.Fprintln(os.Stderr, cerr.Error())
		}
		return fmt.Errorf("%d invalid chord(s)", len(res.ChordErrors))
	}

	store, err := library.Open(CLI.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	stored, err := store.Save(name, lines)
	if err != nil {
		return err
	}
	fmt.Printf("stored %s (%s)\n", stored.Name, stored.ID)
	return nil
}

// LibraryListCmd lists stored charts.
type LibraryListCmd struct{}

// Run executes the library list command.
func (c *LibraryListCmd) Run() error {
	store, err := library.Open(CLI.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	charts, err := store.List()
	if err != nil {
		return err
	}
	for _, chart := range charts {
		fmt.Printf("%-30s %s  updated %s\n",
			chart.Name, chart.Fingerprint[:12], chart.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// LibraryShowCmd prints a stored chart source.
type LibraryShowCmd struct {
	Name string `arg:"" help:"Chart name"`
}

// Run executes the library show command.
func (c *LibraryShowCmd) Run() error {
	store, err := library.Open(CLI.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	chart, err := store.Get(c.Name)
	if err != nil {
		return err
	}
	for _, line := range chart.Lines() {
		fmt.Println(line)
	}
	return nil
}

// LibraryRemoveCmd removes a stored chart.
type LibraryRemoveCmd struct {
	Name string `arg:"" help:"Chart name"`
}

// Run executes the library remove command.
func (c *LibraryRemoveCmd) Run() error {
	store, err := library.Open(CLI.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(c.Name); err != nil {
		return err
	}
	fmt.Printf("removed %s\n", c.Name)
	return nil
}

// LibraryHistoryCmd shows the render history of a stored chart.
type LibraryHistoryCmd struct {
	Name string `arg:"" help:"Chart name"`
}

// Run executes the library history command.
func (c *LibraryHistoryCmd) Run() error {
	store, err := library.Open(CLI.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	chart, err := store.Get(c.Name)
	if err != nil {
		return err
	}
	renders, err := store.Renders(chart.ID)
	if err != nil {
		return err
	}
	for _, r := range renders {
		fmt.Printf("%s  %s\n", r.RenderedAt.Format(time.RFC3339), r.KeyName)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run() error {
	info := sqlite.GetInfo()
	fmt.Printf("nashville %s (sqlite driver: %s/%s)\n", version, info.DriverName, info.DriverType)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("nashville"),
		kong.Description("Nashville Number System chart transposer and typesetter"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{"default_keys": defaultKeys},
	)

	level, err := logging.ParseLevel(CLI.LogLevel)
	ctx.FatalIfErrorf(err)
	format, err := logging.ParseFormat(CLI.LogFormat)
	ctx.FatalIfErrorf(err)
	logging.InitLogger(level, format)

	err = ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
