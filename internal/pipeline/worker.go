package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/413232903/markdown2word-mcp/internal/convert"
)

// Worker converts queued jobs one at a time.
type Worker struct {
	conv    *convert.Converter
	baseURL string
	log     *slog.Logger
}

func NewWorker(conv *convert.Converter, baseURL string, log *slog.Logger) *Worker {
	return &Worker{conv: conv, baseURL: baseURL, log: log}
}

// Process runs one conversion and records its outcome on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	defer job.release()

	phase := convert.PhaseParse
	job.SetStatus(StatusConverting, phase)
	res, err := w.conv.Convert(ctx, convert.Request{
		Markdown: job.Markdown(),
		Title:    job.Title,
		Progress: func(p string) {
			phase = p
			job.SetStatus(StatusConverting, p)
		},
	})
	if err != nil {
		log.Error("conversion failed", "phase", phase, "error", err)
		job.AddError(fmt.Sprintf("%s: %s", phase, err))
		job.SetStatus(StatusFailed, phase)
		return
	}

	job.Complete(res.FileName, convert.DownloadURL(w.baseURL, res.FileName), Progress{
		Replaced:   res.Substitute.Replaced,
		Unresolved: res.Substitute.Unresolved,
		Images:     res.Substitute.Images,
		Tables:     res.Substitute.Tables,
		Charts:     res.Rebind.Charts,
	})
	log.Info("job complete", "file", res.FileName, "duration_ms", res.Duration.Milliseconds())
}
