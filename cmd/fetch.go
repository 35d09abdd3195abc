package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/spatial-cli/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download and unpack a zipped shapefile",
	Long:  "Downloads a zipped shapefile archive over HTTP or FTP, extracts it, and prints the path of the .shp file, ready for the match and neighbors commands.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dest, _ := cmd.Flags().GetString("dest")
		if dest == "" {
			dest = cfg.Fetch.TempDir
		}

		f := fetch.New(fetch.Options{
			Timeout:        time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			RequestsPerSec: cfg.Fetch.RequestsPerSec,
		})
		shpPath, err := f.Shapefile(ctx, args[0], dest)
		if err != nil {
			return err
		}

		fmt.Println(shpPath)
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("dest", "", "destination directory for the download")
	rootCmd.AddCommand(fetchCmd)
}
