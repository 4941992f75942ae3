package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"drawsheet/internal/csvexport"
	"drawsheet/internal/domain"
	"drawsheet/internal/parser"
	"drawsheet/internal/xlsxexport"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var csvPath string
	var xlsxPath string
	var showRaw bool

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract parameters from a JPG or PNG drawing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.schema()
			if err != nil {
				return err
			}
			opts, err := ctx.options()
			if err != nil {
				return err
			}

			image, err := readImage(args[0], ctx.cfg.Extraction.MaxImageSizeMB<<20)
			if err != nil {
				return err
			}

			backend, err := parser.BuildBackend(&ctx.cfg.Parser)
			if err != nil {
				return fmt.Errorf("initialize vision backend: %w", err)
			}
			extractor := parser.NewExtractor(backend, s, opts)

			// Interrupt stops waiting; the record is only shown on a complete answer.
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := extractor.Extract(runCtx, image, "")
			if err != nil {
				if runCtx.Err() != nil {
					return context.Canceled
				}
				return err
			}

			out := cmd.OutOrStdout()
			if showRaw {
				fmt.Fprintln(out, result.Response.Text)
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, renderRecord(result.Record))
			fmt.Fprintf(out, "model: %s (%s)\n", result.Response.ModelUsed, result.Response.Provider)

			if csvPath != "" {
				if err := writeFile(csvPath, func(w io.Writer) error {
					return csvexport.Export(w, result.Record, ctx.cfg.Extraction.CSVBOM)
				}); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", csvPath)
			}
			if xlsxPath != "" {
				if err := writeFile(xlsxPath, func(w io.Writer) error {
					return xlsxexport.Export(w, result.Record, "")
				}); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", xlsxPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the record to this CSV file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the record to this XLSX file")
	cmd.Flags().BoolVar(&showRaw, "raw", false, "Print the backend's raw answer before the record")

	return cmd
}

func readImage(path string, maxBytes int64) ([]byte, error) {
	ext := filepath.Ext(path)
	if len(ext) > 1 {
		ext = ext[1:]
	}
	if _, ok := domain.AllowedExtensions[strings.ToLower(ext)]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrFileTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func renderRecord(rec domain.Record) string {
	rows := make([][]string, 0, rec.Len())
	for _, f := range rec.Fields {
		rows = append(rows, []string{f.Name, f.Value})
	}
	return renderTable([]string{"Parameter", "Value"}, rows, nil)
}
