package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/distkit/distkit/pkg/archive"
	"github.com/distkit/distkit/pkg/progress"
)

// extractCommand creates the extract command for unpacking archives.
func (c *CLI) extractCommand() *cobra.Command {
	var (
		dest    string
		format  string
		toCache bool
	)

	cmd := &cobra.Command{
		Use:   "extract <archive>",
		Short: "Unpack a distribution archive",
		Long: `Unpack a zip, tar, tar.gz, tar.bz2, or tar.xz archive.

Every entry is validated before anything is written: an entry that would
escape the destination directory aborts the extraction.

With --cache the archive is unpacked into the local cache directory keyed
by the archive path, and reused on later calls.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if toCache && dest != "" {
				return fmt.Errorf("--dest and --cache are mutually exclusive")
			}
			return c.runExtract(args[0], dest, format, toCache)
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination directory (default: archive name without extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "archive format (default: detect from file name)")
	cmd.Flags().BoolVar(&toCache, "cache", false, "extract into the cache directory and print its path")

	return cmd
}

// runExtract unpacks the archive, reporting entry progress on stderr.
func (c *CLI) runExtract(src, dest, format string, toCache bool) error {
	if toCache {
		dir, err := archive.ExtractToCache(src)
		if err != nil {
			return err
		}
		printSuccess("Extracted to cache")
		fmt.Println(dir)
		return nil
	}

	if dest == "" {
		dest = trimArchiveExt(src)
	}

	var meter *progress.Meter
	opts := archive.Options{
		Format: archive.Format(format),
		Progress: func(done, total int) {
			if meter == nil {
				meter = progress.New(0, int64(total)).Start()
			}
			_ = meter.Update(int64(done))
			fmt.Fprintf(os.Stderr, "\r%s  %s ", meter.Percentage(), meter.ETA())
		},
	}
	if err := archive.ExtractWith(src, dest, opts); err != nil {
		if meter != nil {
			fmt.Fprintln(os.Stderr)
		}
		return err
	}
	if meter != nil {
		meter.Stop()
		fmt.Fprintf(os.Stderr, "\r%s  %s \n", meter.Percentage(), meter.ETA())
	}

	printSuccess("Extracted %s", src)
	printFile(dest)
	return nil
}

// trimArchiveExt strips a known archive suffix from path to derive a
// destination directory name.
func trimArchiveExt(path string) string {
	for _, ext := range []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tgz", ".tbz", ".txz", ".tar", ".zip", ".whl"} {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path + ".extracted"
}
