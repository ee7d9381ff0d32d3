package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/413232903/markdown2word-mcp/internal/config"
	"github.com/413232903/markdown2word-mcp/internal/convert"
	"github.com/413232903/markdown2word-mcp/internal/mcpserver"
	"github.com/413232903/markdown2word-mcp/internal/outline"
)

const version = "1.0.0"

var errUsage = errors.New("wrong number of arguments")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout belongs to command output and, for mcp, to the protocol.
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	app := &cli.Command{
		Name:            "md2doc",
		Usage:           "converts Markdown to Word documents",
		Version:         version,
		HideHelpCommand: true,
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "Converts a Markdown file to .docx",
				ArgsUsage: "SOURCE [DESTINATION]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "document `TITLE`, overrides front matter"},
					&cli.BoolFlag{Name: "keep-template", Usage: "keep the intermediate <DESTINATION>_template.docx"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runConvert(ctx, cmd, log)
				},
			},
			{
				Name:      "outline",
				Usage:     "Prints the heading tree of a .md or .docx file",
				ArgsUsage: "FILE",
				Action:    runOutline,
			},
			{
				Name:  "mcp",
				Usage: "Serves the conversion tools over MCP stdio",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runMCP(log)
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "md2doc:", err)
		os.Exit(1)
	}
}

func newConverter(cfg config.Config, log *slog.Logger) *convert.Converter {
	return convert.New(convert.Options{
		OutputDir:     cfg.OutputDir,
		DefaultTitle:  cfg.DefaultTitle,
		ImageTimeout:  cfg.ImageTimeout,
		ImageMaxWidth: cfg.ImageMaxWidth,
	}, log)
}

func runConvert(ctx context.Context, cmd *cli.Command, log *slog.Logger) error {
	if cmd.NArg() < 1 || cmd.NArg() > 2 {
		return fmt.Errorf("convert: %w, expected SOURCE [DESTINATION]", errUsage)
	}
	src, dst := cmd.Args().Get(0), cmd.Args().Get(1)

	res, err := newConverter(config.Load(), log).ConvertFile(ctx, src, dst, convert.Request{
		Title:        cmd.String("title"),
		KeepTemplate: cmd.Bool("keep-template"),
	})
	if err != nil {
		return err
	}
	fmt.Println(res.Path)
	if res.Template != "" {
		fmt.Println(res.Template)
	}
	for _, key := range res.Substitute.Unresolved {
		fmt.Fprintf(os.Stderr, "warning: unresolved placeholder ${%s}\n", key)
	}
	return nil
}

func runOutline(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("outline: %w, expected FILE", errUsage)
	}
	name := cmd.Args().First()
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	o, err := outline.Read(f, name)
	if err != nil {
		return err
	}
	return o.Write(os.Stdout)
}

func runMCP(log *slog.Logger) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Info("serving mcp over stdio", "output_dir", cfg.OutputDir)
	return mcpserver.ServeStdio(mcpserver.NewTools(newConverter(cfg, log), cfg.DownloadBaseURL, log))
}
