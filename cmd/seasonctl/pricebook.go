package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"seasonplan/pkg/pricebook/sheet"
)

func (a *app) pricebookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricebook",
		Short: "Price book sheet tools",
	}
	var in, out string
	conv := &cobra.Command{
		Use:   "convert",
		Short: "Convert a price sheet between CSV and XLSX",
		Long:  "Reads --in and writes --out; the format of each side comes from its extension.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPriceBookConvert(in, out)
		},
	}
	conv.Flags().StringVar(&in, "in", "", "source sheet (.csv or .xlsx)")
	conv.Flags().StringVar(&out, "out", "", "destination sheet (.csv or .xlsx)")
	_ = conv.MarkFlagRequired("in")
	_ = conv.MarkFlagRequired("out")
	cmd.AddCommand(conv)
	return cmd
}

func sheetFormat(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".xlsx":
		return ext, nil
	default:
		return "", fmt.Errorf("%s: unsupported sheet type %q", path, ext)
	}
}

func (a *app) runPriceBookConvert(in, out string) error {
	inFmt, err := sheetFormat(in)
	if err != nil {
		return err
	}
	outFmt, err := sheetFormat(out)
	if err != nil {
		return err
	}

	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()
	read := sheet.ReadCSV
	if inFmt == ".xlsx" {
		read = sheet.ReadXLSX
	}
	rows, rowErrs, err := read(src)
	if err != nil {
		return err
	}
	for _, e := range rowErrs {
		fmt.Fprintf(a.out, "line %d: %s\n", e.Line, e.Error)
	}

	dst, err := os.Create(out)
	if err != nil {
		return err
	}
	write := sheet.WriteCSV
	if outFmt == ".xlsx" {
		write = sheet.WriteXLSX
	}
	if err := write(dst, rows); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	a.logger.Debug("sheet converted", zap.String("in", in), zap.String("out", out), zap.Int("rows", len(rows)))
	fmt.Fprintf(a.out, "wrote %d rows to %s\n", len(rows), out)
	return nil
}
