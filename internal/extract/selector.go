package extract

import (
	"context"

	"github.com/sirupsen/logrus"
)

const (
	// LocalTextThreshold is the minimum local extraction yield considered
	// sufficient to skip remote OCR entirely.
	LocalTextThreshold = 500

	// MinUsableText is the absolute floor: below it the combined extraction
	// attempt is a soft failure.
	MinUsableText = 100

	// FailurePlaceholder stands in for text when both strategies come up
	// short; it is user-facing, not an error.
	FailurePlaceholder = "Failed to extract text from document. Please try a different file format."
)

const pdfMimeType = "application/pdf"

// Selector picks between in-process PDF extraction and the remote OCR
// fallback for one file.
type Selector struct {
	ocr    OCRClient
	logger *logrus.Logger
}

func NewSelector(ocr OCRClient, logger *logrus.Logger) *Selector {
	if logger == nil {
		logger = logrus.New()
	}
	return &Selector{ocr: ocr, logger: logger}
}

// Extract runs the strategy cascade: PDFs try local extraction first and
// keep the result when it clears LocalTextThreshold; everything else, plus
// thin local results, goes to remote OCR. A combined yield under
// MinUsableText is reported as a soft failure carrying a placeholder, never
// as an error.
func (s *Selector) Extract(ctx context.Context, in Input) Result {
	var text string
	var pages int
	source := SourceFailed

	if in.FileType == pdfMimeType {
		text, pages = extractPDFText(in.Data)
		s.logger.WithFields(logrus.Fields{
			"file_name": in.FileName,
			"chars":     len(text),
			"pages":     pages,
		}).Info("local pdf extraction")

		if len(text) >= LocalTextThreshold {
			return Result{Text: text, Source: SourceLocal, Pages: pages}
		}
		source = SourceLocal
	}

	remoteText, remotePages, err := s.ocr.ExtractText(ctx, in)
	if err != nil {
		// Remote OCR failure is non-terminal; local text may still carry the run.
		s.logger.WithError(err).WithField("file_name", in.FileName).Warn("remote ocr failed")
	} else if len(remoteText) > len(text) {
		text = remoteText
		source = SourceRemote
		if remotePages > 0 {
			pages = remotePages
		}
	}

	if len(text) < MinUsableText {
		return Result{Text: FailurePlaceholder, Source: SourceFailed, Pages: pages}
	}

	return Result{Text: text, Source: source, Pages: pages}
}
