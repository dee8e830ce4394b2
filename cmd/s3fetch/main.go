package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"s3fetch/internal/bucket"
	"s3fetch/internal/config"
	"s3fetch/internal/errors"
	"s3fetch/internal/fetch"
	"s3fetch/internal/prompt"
	"s3fetch/internal/selector"
	"s3fetch/pkg/logger"
)

func sharedFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "bucket",
			Usage:   "Bucket to read from",
			Value:   cfg.Bucket.Name,
			EnvVars: []string{"S3FETCH_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "prefix",
			Usage:   "Only consider keys under this prefix",
			Value:   cfg.Bucket.Prefix,
			EnvVars: []string{"S3FETCH_PREFIX"},
		},
		&cli.IntFlag{
			Name:  "days",
			Usage: "Select objects modified in the last N days",
			Value: 3,
		},
		&cli.StringFlag{
			Name:  "date",
			Usage: "Select objects modified on an exact date (DD-MM-YYYY)",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Only select keys containing this substring (case-sensitive)",
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "AWS region",
			Value:   cfg.Bucket.Region,
			EnvVars: []string{"S3FETCH_REGION"},
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "Custom S3 endpoint for S3-compatible services",
			Value:   cfg.Bucket.Endpoint,
			EnvVars: []string{"S3FETCH_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "access-key",
			Usage:   "Static access key (default AWS credential chain when empty)",
			Value:   cfg.Bucket.AccessKey,
			EnvVars: []string{"S3FETCH_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:    "secret-key",
			Usage:   "Static secret key",
			Value:   cfg.Bucket.SecretKey,
			EnvVars: []string{"S3FETCH_SECRET_KEY"},
		},
		&cli.BoolFlag{
			Name:    "path-style",
			Usage:   "Use path-style addressing (required by most S3-compatible services)",
			Value:   cfg.Bucket.ForcePathStyle,
			EnvVars: []string{"S3FETCH_PATH_STYLE"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (trace, debug, info, warn, error)",
			Value:   cfg.Logging.Level,
			EnvVars: []string{"S3FETCH_LOG_LEVEL"},
		},
	}
}

func main() {
	cfg := config.Load()

	app := &cli.App{
		Name:  "s3fetch",
		Usage: "List and download bucket objects filtered by recency or filename",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the objects the criteria select, with sizes",
				Flags:  sharedFlags(cfg),
				Action: runList,
			},
			{
				Name:  "get",
				Usage: "Download the objects the criteria select",
				Flags: append(sharedFlags(cfg),
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "Download directory",
						Value:   cfg.App.DownloadDir,
						EnvVars: []string{"S3FETCH_DOWNLOAD_DIR"},
					},
					&cli.BoolFlag{
						Name:  "interactive",
						Usage: "Ask for the criteria interactively instead of using flags",
					},
				),
				Action: runGet,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("s3fetch failed")
	}
}

// criteriaFromFlags builds selection criteria from the command line.
// --date switches to exact-date mode; otherwise the last-N-days window
// applies. Supplying both is contradictory and rejected.
func criteriaFromFlags(c *cli.Context) (selector.Criteria, error) {
	if c.IsSet("date") && c.IsSet("days") {
		return selector.Criteria{}, errors.NewError("criteria", errors.ErrInvalidCriteria).
			WithMessage("--days and --date are mutually exclusive")
	}

	criteria := selector.Criteria{
		NamePattern: c.String("name"),
	}

	if c.IsSet("date") {
		date, err := prompt.ParseDate(c.String("date"))
		if err != nil {
			return selector.Criteria{}, err
		}
		criteria.Mode = selector.ModeExactDate
		criteria.Date = date
	} else {
		criteria.Mode = selector.ModeLastNDays
		criteria.Days = c.Int("days")
	}

	if err := criteria.Validate(); err != nil {
		return selector.Criteria{}, err
	}
	return criteria, nil
}

func newClient(c *cli.Context) (*bucket.Client, error) {
	opts := []bucket.Option{
		bucket.WithRegion(c.String("region")),
		bucket.WithForcePathStyle(c.Bool("path-style")),
	}
	if endpoint := c.String("endpoint"); endpoint != "" {
		opts = append(opts, bucket.WithEndpoint(endpoint))
	}
	if c.String("access-key") != "" && c.String("secret-key") != "" {
		opts = append(opts, bucket.WithStaticCredentials(c.String("access-key"), c.String("secret-key")))
	}
	return bucket.New(opts...)
}

func requireBucket(c *cli.Context) (string, error) {
	name := c.String("bucket")
	if name == "" {
		return "", errors.NewError("criteria", errors.ErrInvalidInput).
			WithMessage("bucket is required (--bucket or S3FETCH_BUCKET)")
	}
	return name, nil
}

func runList(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))

	bucketName, err := requireBucket(c)
	if err != nil {
		return err
	}
	criteria, err := criteriaFromFlags(c)
	if err != nil {
		return err
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	runner := fetch.NewRunner(client, bucketName, c.String("prefix"), "", logger.Log)
	selection, err := runner.List(c.Context, criteria)
	if err != nil {
		return err
	}

	for _, obj := range selection.Objects {
		fmt.Printf("%s\t%s\t%s\n",
			obj.LastModified.Format("2006-01-02 15:04:05"),
			humanize.Bytes(uint64(obj.Size)),
			obj.Key,
		)
	}
	fmt.Printf("%d objects, %s total\n", len(selection.Objects), humanize.Bytes(uint64(selection.TotalBytes)))
	return nil
}

func runGet(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))

	bucketName, err := requireBucket(c)
	if err != nil {
		return err
	}

	var criteria selector.Criteria
	dir := c.String("dir")

	if c.Bool("interactive") {
		prompter := prompt.New(os.Stdin, os.Stdout)
		criteria, err = prompter.Criteria()
		if err != nil {
			return err
		}
		dir, err = prompter.Dir(dir)
		if err != nil {
			return err
		}
		if pattern := c.String("name"); pattern != "" && criteria.NamePattern == "" {
			criteria.NamePattern = pattern
		}
	} else {
		criteria, err = criteriaFromFlags(c)
		if err != nil {
			return err
		}
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}

	runner := fetch.NewRunner(client, bucketName, c.String("prefix"), dir, logger.Log)
	summary, err := runner.Run(c.Context, criteria)
	if err != nil {
		return err
	}

	if len(summary.Failed) > 0 {
		return errors.NewError("get", errors.ErrDownloadFailed).
			WithBucket(bucketName).
			WithMessage(fmt.Sprintf("%d of %d downloads failed", len(summary.Failed), summary.Selected))
	}
	return nil
}
