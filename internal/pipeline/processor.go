package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/dianabombi/student-advisor-sub000/constants"
	"github.com/dianabombi/student-advisor-sub000/internal/classify"
	"github.com/dianabombi/student-advisor-sub000/internal/common"
	"github.com/dianabombi/student-advisor-sub000/internal/fields"
	"github.com/dianabombi/student-advisor-sub000/internal/imaging"
	"github.com/dianabombi/student-advisor-sub000/internal/ocr"
	"github.com/dianabombi/student-advisor-sub000/internal/repository"
)

// Analysis is the document-level outcome of the OCR, classification and
// extraction stages, independent of job bookkeeping.
type Analysis struct {
	Text           string          `json:"text"`
	Pages          int             `json:"pages"`
	OCRConfidence  float64         `json:"ocr_confidence"`
	LowConfidence  bool            `json:"low_confidence"`
	Classification classify.Result `json:"classification"`
	Extraction     fields.Result   `json:"extraction"`
	ExtractedJSON  json.RawMessage `json:"-"`
}

// Processor coordinates OCR (with escalating retries), classification and
// field extraction, and records progress on the job record at each stage
// boundary.
type Processor struct {
	pdf        *ocr.PDF
	retryer    *ocr.Retryer
	classifier *classify.Classifier
	extractor  *fields.Extractor
	files      *repository.FileRepository
	jobs       *repository.JobRepository
	languages  []string
	logger     *slog.Logger
}

func NewProcessor(
	pdf *ocr.PDF,
	retryer *ocr.Retryer,
	classifier *classify.Classifier,
	extractor *fields.Extractor,
	files *repository.FileRepository,
	jobs *repository.JobRepository,
	languages []string,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		pdf:        pdf,
		retryer:    retryer,
		classifier: classifier,
		extractor:  extractor,
		files:      files,
		jobs:       jobs,
		languages:  languages,
		logger:     logger,
	}
}

// ProcessFile runs the full pipeline for an ingested file, tracking it on a
// job record. The returned jobID is valid even when processing failed; the
// failure is recorded on the record.
func (p *Processor) ProcessFile(ctx context.Context, fileID uuid.UUID) (uuid.UUID, error) {
	file, err := p.files.GetByID(ctx, fileID)
	if err != nil {
		return uuid.Nil, err
	}
	format := constants.MapExtToFormat(file.FileExt)
	if format == "" {
		return uuid.Nil, common.NewAppError(common.CodePipelineFailure, "unsupported extension "+file.FileExt, common.ErrUnsupportedFormat)
	}

	job, err := p.jobs.Create(ctx, file.ID, format)
	if err != nil {
		return uuid.Nil, err
	}
	if err := p.jobs.MarkProcessing(ctx, job.ID); err != nil {
		return job.ID, err
	}
	p.checkpoint(ctx, job.ID, constants.ProgressAccepted)

	analysis, err := p.run(ctx, job.ID, file.SourcePath, file.Filename, format)
	if err != nil {
		p.logger.Error("pipeline failed", "job_id", job.ID, "file", file.Filename, "error", err)
		if dbErr := p.jobs.FinishFailure(ctx, job.ID, err.Error()); dbErr != nil {
			p.logger.Error("failed to record job failure", "job_id", job.ID, "error", dbErr)
		}
		return job.ID, err
	}

	if err := p.jobs.FinishSuccess(ctx, job.ID,
		string(analysis.Classification.Type),
		analysis.Classification.Confidence,
		analysis.LowConfidence,
		analysis.ExtractedJSON,
	); err != nil {
		return job.ID, err
	}
	p.logger.Info("pipeline completed",
		"job_id", job.ID,
		"file", file.Filename,
		"type", analysis.Classification.Type,
		"confidence", analysis.Classification.Confidence,
		"pages", analysis.Pages,
		"low_confidence", analysis.LowConfidence,
	)
	return job.ID, nil
}

// Analyze runs the pipeline stages on a file without touching job records.
// Used by the one-shot CLI.
func (p *Processor) Analyze(ctx context.Context, path, filename string, format constants.FileFormat) (*Analysis, error) {
	return p.run(ctx, uuid.Nil, path, filename, format)
}

// run is the stage sequence. jobID may be uuid.Nil, in which case progress
// checkpoints are skipped.
func (p *Processor) run(ctx context.Context, jobID uuid.UUID, path, filename string, format constants.FileFormat) (*Analysis, error) {
	a := &Analysis{}

	var err error
	switch format {
	case constants.PDF:
		err = p.runPDF(ctx, path, a)
	case constants.IMAGE:
		err = p.runImage(ctx, path, a)
	default:
		err = common.ErrUnsupportedFormat
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeOCRFailure, "text extraction failed", err)
	}
	p.checkpoint(ctx, jobID, constants.ProgressOCRDone)

	a.Classification = p.classifier.Classify(a.Text, classify.Hints{Filename: filename})
	p.checkpoint(ctx, jobID, constants.ProgressClassified)

	a.Extraction = p.extractor.Extract(a.Text, a.Classification.Type)
	p.checkpoint(ctx, jobID, constants.ProgressExtracted)

	a.ExtractedJSON, err = fields.MarshalValidated(a.Extraction)
	if err != nil {
		return nil, common.NewAppError(common.CodePipelineFailure, "serialize extraction", err)
	}
	p.checkpoint(ctx, jobID, constants.ProgressPersisted)

	return a, nil
}

// runPDF prefers the embedded-text shortcut and falls back to per-page OCR
// for pages without a text layer. A page whose OCR fails outright
// contributes an empty string so the remaining pages still yield a result.
func (p *Processor) runPDF(ctx context.Context, path string, a *Analysis) error {
	pages, err := p.pdf.EmbeddedText(ctx, path)
	if err != nil {
		return err
	}
	a.Pages = len(pages)

	needOCR := false
	for _, pg := range pages {
		if strings.TrimSpace(pg) == "" {
			needOCR = true
			break
		}
	}

	if !needOCR {
		a.Text = strings.Join(pages, "\n\n")
		a.OCRConfidence = 1.0
		return nil
	}

	rasters, cleanup, err := p.pdf.Rasterize(ctx, path)
	if err != nil {
		return err
	}
	defer cleanup()

	if len(rasters) > len(pages) {
		rasters = rasters[:len(pages)]
	}

	var confSum float64
	for i, pg := range pages {
		if strings.TrimSpace(pg) != "" {
			confSum += 1.0
			continue
		}
		if i >= len(rasters) {
			pages[i] = ""
			continue
		}
		outcome, err := p.retryer.Run(ctx, rasters[i], p.languages)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.logger.Warn("page ocr failed, keeping empty text", "page", i+1, "error", err)
			pages[i] = ""
			a.LowConfidence = true
			continue
		}
		pages[i] = outcome.Text
		confSum += outcome.Confidence
		if outcome.LowConfidence {
			a.LowConfidence = true
		}
	}

	a.Text = strings.Join(pages, "\n\n")
	if a.Pages > 0 {
		a.OCRConfidence = confSum / float64(a.Pages)
	}
	return nil
}

func (p *Processor) runImage(ctx context.Context, path string, a *Analysis) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	page, err := imaging.DecodeBytes(data)
	if err != nil {
		return err
	}
	outcome, err := p.retryer.Run(ctx, page, p.languages)
	if err != nil {
		return err
	}
	a.Pages = 1
	a.Text = outcome.Text
	a.OCRConfidence = outcome.Confidence
	a.LowConfidence = outcome.LowConfidence
	return nil
}

func (p *Processor) checkpoint(ctx context.Context, jobID uuid.UUID, progress int) {
	if jobID == uuid.Nil || p.jobs == nil {
		return
	}
	if err := p.jobs.UpdateProgress(ctx, jobID, progress); err != nil {
		p.logger.Warn("failed to update job progress", "job_id", jobID, "progress", progress, "error", err)
	}
}
