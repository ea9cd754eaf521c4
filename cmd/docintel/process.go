package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"docintel/internal/config"
	"docintel/internal/domain"
	"docintel/internal/export"
	"docintel/internal/pipeline"
	"docintel/internal/port"
	"docintel/internal/service"
	s3storage "docintel/internal/storage/s3"
	"docintel/internal/summary"
)

type processOptions struct {
	keywords string
	output   string
	csvPath  string
	xlsxPath string
}

func newProcessCommand() *cobra.Command {
	var opts processOptions
	cmd := &cobra.Command{
		Use:   "process <path|s3://bucket/key>",
		Short: "Run the document pipeline on one file and print the JSON result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runProcess(ctx, args[0], opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.keywords, "keywords", "k", "", "Comma-separated keywords for the abstract")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the JSON result to this file instead of stdout")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "Also write key-value pairs as CSV to this file")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "Also write extracted tables as XLSX to this file")
	return cmd
}

func runProcess(ctx context.Context, src string, opts processOptions, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var storage port.ObjectStorage
	if strings.HasPrefix(src, "s3://") {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}
	data, name, err := readSource(ctx, storage, src)
	if err != nil {
		return err
	}

	// The CLI neither archives sources nor persists results.
	cfg.S3.Bucket = ""
	svc, err := pipeline.Build(cfg, nil, nil)
	if err != nil {
		return err
	}

	res, err := svc.Process(ctx, service.ProcessInput{
		SourceName: name,
		Data:       data,
		Keywords:   summary.ParseKeywords(opts.keywords),
	})
	if err != nil {
		return err
	}

	if err := writeJSON(res, opts.output, stdout); err != nil {
		return err
	}
	if opts.csvPath != "" {
		if err := writeFile(opts.csvPath, func(w io.Writer) error { return export.WriteKeyValuesCSV(w, res) }); err != nil {
			return err
		}
	}
	if opts.xlsxPath != "" {
		if err := writeFile(opts.xlsxPath, func(w io.Writer) error { return export.WriteTablesXLSX(w, res) }); err != nil {
			return err
		}
	}

	for _, w := range res.Warnings {
		log.Printf("docintel.process: warning: %s", w)
	}
	if res.Status == domain.StatusPartial {
		for _, pe := range res.PageErrors {
			log.Printf("docintel.process: page %d failed: %s", pe.PageIndex, pe.Reason)
		}
		return errPartial
	}
	return nil
}

// readSource reads a local file or, for s3:// URLs, downloads the object.
func readSource(ctx context.Context, storage port.ObjectStorage, src string) (data []byte, name string, err error) {
	if rest, ok := strings.CutPrefix(src, "s3://"); ok {
		bucket, key, found := strings.Cut(rest, "/")
		if !found || bucket == "" || key == "" {
			return nil, "", fmt.Errorf("invalid s3 url %q: want s3://bucket/key", src)
		}
		data, err = storage.Download(ctx, bucket, key)
		if err != nil {
			return nil, "", fmt.Errorf("downloading %s: %w", src, err)
		}
		return data, path.Base(key), nil
	}

	data, err = os.ReadFile(src)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", src, err)
	}
	return data, filepath.Base(src), nil
}

func writeJSON(res *domain.DocumentResult, output string, stdout io.Writer) error {
	encode := func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if output == "" {
		return encode(stdout)
	}
	return writeFile(output, encode)
}

func writeFile(name string, write func(io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
