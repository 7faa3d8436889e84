package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"depot-helpdesk/internal/export"
	"depot-helpdesk/internal/filter"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var exportOpts struct {
	format string
	out    string
	search string
	status string
	typ    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export requests to CSV or Excel",
	Long: `Write the requests matching the filters, sorted by ETA date, to a CSV or
XLSX file. The default file name is requests_export_YYYY-MM-DD.<format>.`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOpts.format, "format", "csv", "csv or xlsx")
	f.StringVar(&exportOpts.out, "out", "", "output file, - for stdout")
	f.StringVar(&exportOpts.search, "search", "", "free text filter")
	f.StringVar(&exportOpts.status, "status", filter.All, "status filter")
	f.StringVar(&exportOpts.typ, "type", filter.All, "type filter (Purchase or Sales)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	var write func(io.Writer, []export.Row) error
	switch exportOpts.format {
	case "csv":
		write = export.WriteCSV
	case "xlsx":
		write = export.WriteXLSX
	default:
		return errors.Errorf("unknown format %q", exportOpts.format)
	}

	repo, closeStore, err := openRepository(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	entries := filter.FilterAndSort(repo.List(), filter.Criteria{
		Search: exportOpts.search,
		Status: exportOpts.status,
		Type:   exportOpts.typ,
	})
	rows := export.ToFlatRows(filter.Requests(entries))

	out := exportOpts.out
	if out == "" {
		out = export.Filename(time.Now(), exportOpts.format)
	}
	if out == "-" {
		return write(cmd.OutOrStdout(), rows)
	}

	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := write(bw, rows); err != nil {
		return errors.Wrap(err, "write export")
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "write export")
	}
	log.Info().Str("file", out).Int("rows", len(rows)).Msg("Export written")
	return nil
}
