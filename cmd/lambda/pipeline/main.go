// pipeline Lambda executes one full ETL run per scheduled invocation.
package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/datalith/predictit-etl/internal/config"
	"github.com/datalith/predictit-etl/internal/pipeline"
)

type deps struct {
	driver *pipeline.Driver
	logger *slog.Logger
}

var (
	shared   *deps
	initOnce sync.Once
	initErr  error
)

func getDeps(ctx context.Context) (*deps, error) {
	initOnce.Do(func() {
		logger := slog.Default()
		cfg, err := config.Load(os.Getenv("ETL_CONFIG_PATH"))
		if err != nil {
			initErr = err
			return
		}
		if err := cfg.ResolveSecrets(ctx, nil); err != nil {
			initErr = err
			return
		}
		// The cleanup is dropped: the run log pool lives for the
		// lifetime of the Lambda execution environment.
		driver, _, err := pipeline.FromConfig(ctx, cfg, logger)
		if err != nil {
			initErr = err
			return
		}
		shared = &deps{driver: driver, logger: logger}
	})
	return shared, initErr
}

// response is the invocation summary returned to the scheduler.
type response struct {
	RunID      string `json:"runID"`
	Status     string `json:"status"`
	RawRows    int64  `json:"rawRows"`
	StorageKey string `json:"storageKey,omitempty"`
	Error      string `json:"error,omitempty"`
}

func handler(ctx context.Context) (response, error) {
	d, err := getDeps(ctx)
	if err != nil {
		return response{}, err
	}

	res := d.driver.Run(ctx)
	resp := response{
		RunID:      res.RunID,
		Status:     res.Status,
		RawRows:    res.RawRows,
		StorageKey: res.StorageKey,
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
		// The error is returned so the schedule's retry and DLQ policy
		// see the failure.
		return resp, res.Err
	}
	return resp, nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	awslambda.Start(handler)
}
