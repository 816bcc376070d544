package extract

import "context"

// Source tags where extracted text came from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
	SourceFailed Source = "failed"
)

// Input describes one file handed to the selector. StorageURL, when set,
// lets the remote OCR client reference the already-stored copy instead of
// re-transmitting bytes.
type Input struct {
	FileName   string
	FileType   string
	Data       []byte
	StorageURL string
}

// Result is transient: it lives for one pipeline run only. Text may be a
// human-readable placeholder when Source is SourceFailed.
type Result struct {
	Text   string
	Source Source
	Pages  int
}

// Failed reports whether extraction produced nothing usable.
func (r Result) Failed() bool {
	return r.Source == SourceFailed
}

// OCRClient is the remote fallback. Implementations return empty text on
// any transport or API failure rather than an error the caller must handle.
type OCRClient interface {
	ExtractText(ctx context.Context, in Input) (string, int, error)
}
