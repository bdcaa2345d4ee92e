// Command mindweb runs the scrape, summarize and mind map stages from the
// command line without the HTTP server or a job store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"mindweb/internal/config"
	"mindweb/internal/domain"
	"mindweb/internal/logger"
	"mindweb/internal/ports"
	"mindweb/internal/services/extractor"
	"mindweb/internal/services/mindmap"
	"mindweb/internal/services/summarizer"
	"mindweb/internal/workers/pipelinerunner"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for input errors and 1 for everything else.
func exitCode(err error) int {
	if domain.KindOf(err) == domain.KindValidation {
		return 2
	}
	return 1
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	lengthFlag := &cli.IntFlag{Name: "length", Aliases: []string{"n"}, Usage: "summary length in words (0 uses the configured default)"}
	typeFlag := &cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "mind map type: visual, network, hierarchical or all", Value: string(domain.MindMapAll)}

	return &cli.App{
		Name:      "mindweb",
		Usage:     "turn web pages into summaries and mind maps",
		Reader:    in,
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to config.yml", EnvVars: []string{"CONFIG_PATH"}, Value: config.DefaultPath},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
		},
		Commands: []*cli.Command{
			{
				Name:      "process",
				Usage:     "scrape a URL, summarize it and build mind maps",
				ArgsUsage: "<url>",
				Flags:     []cli.Flag{lengthFlag, typeFlag},
				Action:    processAction,
			},
			{
				Name:  "summarize",
				Usage: "summarize text read from --file or stdin",
				Flags: []cli.Flag{
					lengthFlag,
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "read text from `FILE` instead of stdin"},
					&cli.StringFlag{Name: "title", Usage: "document title"},
				},
				Action: summarizeAction,
			},
			{
				Name:      "mindmap",
				Usage:     "build mind maps from a title and key concepts",
				ArgsUsage: "<concept> [concept...]",
				Flags: []cli.Flag{
					typeFlag,
					&cli.StringFlag{Name: "title", Required: true, Usage: "central topic"},
					&cli.StringFlag{Name: "summary", Usage: "summary text appended to the visual map"},
				},
				Action: mindmapAction,
			},
			{
				Name:   "types",
				Usage:  "list the supported mind map types",
				Action: typesAction,
			},
		},
	}
}

type toolkit struct {
	cfg       *config.Config
	log       logger.Logger
	extractor *extractor.Service
	summary   *summarizer.Service
	builder   *mindmap.Builder
}

func setup(c *cli.Context) (*toolkit, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.Bool("quiet") {
		cfg.Logging.Level = "error"
	}
	cfg.Logging.OutputPaths = []string{"stderr"}
	lg, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	opts := []summarizer.Option{summarizer.WithDefaultLength(cfg.Summary.DefaultLength)}
	if cfg.LLM.Enabled() {
		opts = append(opts, summarizer.WithModel(summarizer.NewAnthropicModel(cfg.LLM)))
	}
	return &toolkit{
		cfg:       cfg,
		log:       lg,
		extractor: extractor.New(cfg.Fetch, lg),
		summary:   summarizer.New(lg, opts...),
		builder:   mindmap.New(),
	}, nil
}

func processAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return domain.ValidationError("expected exactly one url, got %d arguments", c.NArg())
	}
	tk, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = tk.log.Sync() }()

	typ, err := domain.ParseMindMapType(c.String("type"))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context, tk.cfg.Workers.JobTimeout)
	defer cancel()

	pipeline := pipelinerunner.NewPipeline(tk.extractor, tk.summary, tk.builder, nil)
	res, err := pipeline.Run(ctx, ports.ScrapeRequest{
		URL:           c.Args().First(),
		SummaryLength: c.Int("length"),
		MindMapType:   typ,
	}, func(_ context.Context, stage string, progress int) error {
		tk.log.Info("progress", logger.String("stage", stage), logger.Int("progress", progress))
		return nil
	})
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, res)
}

func summarizeAction(c *cli.Context) error {
	tk, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = tk.log.Sync() }()

	var src io.Reader = c.App.Reader
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	body, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return domain.ValidationError("no text to summarize")
	}
	res, err := tk.summary.Summarize(c.Context, summarizer.FromText(c.String("title"), string(body)), c.Int("length"))
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, res)
}

func mindmapAction(c *cli.Context) error {
	set, err := mindmap.New().Build(c.String("title"), c.Args().Slice(), c.String("summary"), domain.MindMapType(c.String("type")))
	if err != nil {
		return err
	}
	if set.Visual != "" && c.String("type") == string(domain.MindMapVisual) {
		_, err := fmt.Fprintln(c.App.Writer, set.Visual)
		return err
	}
	return printJSON(c.App.Writer, set)
}

func typesAction(c *cli.Context) error {
	for _, t := range mindmap.Types() {
		if _, err := fmt.Fprintf(c.App.Writer, "%-13s %s\n", t.Type, t.Description); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
