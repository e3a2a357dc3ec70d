package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"inspectoradf/internal/config"
	"inspectoradf/internal/domain"
	"inspectoradf/internal/repository"
)

var (
	limitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of reports to list (0 for all)",
		Value: 50,
	}

	archiveCmd = &cli.Command{
		Name:  "archive",
		Usage: "Browse reports archived by the bot (requires S3_* settings)",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List archived report IDs",
				Flags:  []cli.Flag{limitFlag},
				Action: cmdArchiveList,
			},
			{
				Name:      "show",
				Usage:     "Print one archived report",
				ArgsUsage: "ID",
				Action:    cmdArchiveShow,
			},
		},
	}
)

func openArchive(c *cli.Context) (repository.S3Repository, error) {
	cfg := config.LoadS3()
	if !cfg.Enabled {
		return nil, fmt.Errorf("archive is disabled, set S3_ENABLED=true")
	}
	return repository.NewS3Repository(c.Context, &cfg, newLogger(c))
}

func cmdArchiveList(c *cli.Context) error {
	repo, err := openArchive(c)
	if err != nil {
		return err
	}

	keys, err := repo.ListFiles(c.Context, repository.ReportPrefix)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}

	limit := c.Int(limitFlag.Name)
	for i, key := range keys {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintln(c.App.Writer, reportID(key))
	}
	return nil
}

func cmdArchiveShow(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("report ID is required")
	}

	repo, err := openArchive(c)
	if err != nil {
		return err
	}

	rc, err := repo.DownloadFile(c.Context, repository.ReportPrefix+c.Args().First()+".json")
	if err != nil {
		return fmt.Errorf("download report: %w", err)
	}
	defer rc.Close()

	var record domain.ArchiveRecord
	if err := json.NewDecoder(rc).Decode(&record); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "id: %s\nchat: %d\nreceived: %s\nsize: %d\n\n",
		record.ID, record.ChatID, record.ReceivedAt.Format("2006-01-02 15:04:05"), record.Size)
	if record.Report != nil {
		printReport(c.App.Writer, fileReport{Path: record.ID, Report: record.Report})
	}
	return nil
}

func reportID(key string) string {
	return strings.TrimSuffix(strings.TrimPrefix(key, repository.ReportPrefix), ".json")
}
