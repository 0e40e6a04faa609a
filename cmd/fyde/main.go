// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 11:20:31 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/app"
	"github.com/ternarybob/fyde/internal/common"
	"github.com/ternarybob/fyde/internal/worker"
	"github.com/ternarybob/fyde/pkg/models"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	storageMode  = flag.String("mode", "", "Storage mode: memory or file (overrides config)")
	dbPath       = flag.String("db", "", "Database path (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
	flag.Usage = usage
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: fyde [flags] <command> [args]\n\n")
	fmt.Fprintf(out, "Commands:\n")
	fmt.Fprintf(out, "  ingest [-workers n] <path>...     Ingest one or more files\n")
	fmt.Fprintf(out, "  list [-after id] [-limit n]       List stored documents\n")
	fmt.Fprintf(out, "  show <id>                         Print document metadata as JSON\n")
	fmt.Fprintf(out, "  preview <id> -o file.png          Write the PNG preview\n")
	fmt.Fprintf(out, "  content <id> -o file              Write the original file\n")
	fmt.Fprintf(out, "  compose -i notes.md -o notes.pdf  Lay out markdown as a PDF\n")
	fmt.Fprintf(out, "  version                           Print version information\n\n")
	fmt.Fprintf(out, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	defer common.RecoverWithCrashFile()

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Fyde version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	command, rest := args[0], args[1:]
	if command == "version" {
		common.PrintBanner(common.GetVersion())
		fmt.Println(common.GetFullVersion())
		return
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("fyde.toml"); err == nil {
			configFiles = append(configFiles, "fyde.toml")
		}
	}

	// Startup sequence: defaults -> files -> env -> CLI flags, then logger
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}
	common.ApplyFlagOverrides(config, *storageMode, *dbPath)
	if err := config.Validate(); err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Invalid command-line overrides")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	logger.Debug().
		Str("storage_type", config.Storage.Type).
		Str("storage_mode", config.Storage.Mode).
		Str("log_level", config.Logging.Level).
		Strs("config_files", configFiles).
		Msg("Resolved configuration")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}

	// Interrupt stops dispatching new files; an ingestion already running completes
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, application, command, rest)
	stop()
	if closeErr := application.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fyde %s: %v\n", command, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "ingest":
		return runIngest(ctx, a, args)
	case "list":
		return runList(ctx, a, args)
	case "show":
		return runShow(ctx, a, args)
	case "preview":
		return runBlob(ctx, a, "preview", args)
	case "content":
		return runBlob(ctx, a, "content", args)
	case "compose":
		return runCompose(a, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runIngest(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	workers := fs.Int("workers", 1, "Number of files ingested concurrently")
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return fmt.Errorf("at least one path is required")
	}

	pool := worker.NewWorkerPool(a.DocumentService.SaveFileFromPath, a.Logger, *workers)

	failed := 0
	for _, result := range pool.Run(ctx, paths) {
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", result.Path, result.Err)
			failed++
			continue
		}
		meta := result.Document.Metadata
		fmt.Printf("%s\t%s\t%s\n", meta.ID, meta.Checksum, meta.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func runList(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	after := fs.String("after", "", "Only list documents after this id")
	limit := fs.Int("limit", models.DefaultListLimit, "Page size (max 100)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := &models.ListOptions{Limit: limit}
	if *after != "" {
		id, err := uuid.Parse(*after)
		if err != nil {
			return fmt.Errorf("invalid -after id: %w", err)
		}
		opts.After = &models.Metadata{ID: id}
	}

	docs, err := a.DocumentService.List(ctx, opts)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSIZE\tCREATED")
	for _, meta := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			meta.ID, meta.Name, meta.DetectedType, meta.Size, meta.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func runShow(ctx context.Context, a *app.App, args []string) error {
	meta, err := lookup(ctx, a, args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func runBlob(ctx context.Context, a *app.App, kind string, args []string) error {
	fs := flag.NewFlagSet(kind, flag.ContinueOnError)
	output := fs.String("o", "", "Output file")
	if err := fs.Parse(reorderFlags(args)); err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("-o is required")
	}

	meta, err := lookup(ctx, a, fs.Args())
	if err != nil {
		return err
	}

	var blob []byte
	if kind == "preview" {
		blob, err = a.DocumentService.GetPreview(ctx, meta)
	} else {
		blob, err = a.DocumentService.GetContent(ctx, meta)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(*output, blob, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *output, err)
	}
	fmt.Printf("wrote %d bytes to %s\n", len(blob), *output)
	return nil
}

func runCompose(a *app.App, args []string) error {
	fs := flag.NewFlagSet("compose", flag.ContinueOnError)
	input := fs.String("i", "", "Markdown input file")
	output := fs.String("o", "", "PDF output file")
	title := fs.String("title", "", "Document title (defaults to the input file name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" || *output == "" {
		return fmt.Errorf("-i and -o are required")
	}

	markdown, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *input, err)
	}

	docTitle := *title
	if docTitle == "" {
		docTitle = strings.TrimSuffix(filepath.Base(*input), filepath.Ext(*input))
	}

	content, err := a.Composer.ComposeFromMarkdown(string(markdown), docTitle)
	if err != nil {
		return err
	}

	if err := os.WriteFile(*output, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *output, err)
	}
	fmt.Printf("wrote %d bytes to %s\n", len(content), *output)
	return nil
}

func lookup(ctx context.Context, a *app.App, args []string) (*models.Metadata, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("exactly one document id is required")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}
	return a.DocumentService.GetByID(ctx, id)
}

// reorderFlags moves flags ahead of positional arguments so "preview <id> -o x" parses
func reorderFlags(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			flags = append(flags, arg)
			if !strings.Contains(arg, "=") && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		positional = append(positional, arg)
	}
	return append(flags, positional...)
}
