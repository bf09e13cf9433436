package uploader

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultConcurrency bounds how many uploads run at once per batch.
const DefaultConcurrency = 3

// File is one entry in an upload batch.
type File struct {
	Name string
	Size int64
	Data io.Reader
}

// Result reports the outcome for one file, in input order. A batch
// with some failures is still a success for the files that made it;
// Err attributes each failure to its file.
type Result struct {
	Name string
	URL  string
	Err  error
}

// UploadFunc performs one upload and returns the stored URL. The
// backend client's upload methods satisfy this shape.
type UploadFunc func(ctx context.Context, filename string, r io.Reader) (string, error)

// Batch validates and uploads a set of files on a bounded worker pool.
// Files failing validation are rejected without being sent and without
// aborting the rest. Results preserve input order.
func Batch(ctx context.Context, logger zerolog.Logger, kind Kind, files []File, upload UploadFunc, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]Result, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				f := files[i]
				results[i].Name = f.Name

				if err := Validate(kind, f.Name, f.Size); err != nil {
					logger.Warn().Str("file", f.Name).Err(err).Msg("upload rejected")
					results[i].Err = err
					continue
				}

				url, err := upload(ctx, f.Name, f.Data)
				if err != nil {
					logger.Warn().Str("file", f.Name).Err(err).Msg("upload failed")
					results[i].Err = err
					continue
				}
				results[i].URL = url
			}
		}()
	}

	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			results[i] = Result{Name: files[i].Name, Err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// Accepted filters a result set down to the successfully stored URLs,
// preserving order.
func Accepted(results []Result) []string {
	var urls []string
	for _, r := range results {
		if r.Err == nil {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// Failures filters a result set down to the per-file errors.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
