package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"rfpdesk/internal/analysis"
	"rfpdesk/internal/extract"
	"rfpdesk/pkg/types"
)

type fakeObjectStore struct {
	uploads int
	deletes int
	fail    bool
}

func (f *fakeObjectStore) Upload(_ context.Context, key string, _ io.Reader, _ string) (string, error) {
	if f.fail {
		return "", errors.New("bucket unavailable")
	}
	f.uploads++
	return key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, _ string) error {
	f.deletes++
	return nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "https://objects.example.test/" + key
}

type fakeDocumentStore struct {
	created []*types.Document
	fail    bool
}

func (f *fakeDocumentStore) CreateDocument(_ context.Context, doc *types.Document) error {
	if f.fail {
		return errors.New("insert failed")
	}
	f.created = append(f.created, doc)
	return nil
}

type fakeAnalysisStore struct {
	created    *types.DocumentAnalysis
	updated    *types.DocumentAnalysis
	failCreate bool
	failUpdate bool
}

func (f *fakeAnalysisStore) CreateAnalysis(_ context.Context, a *types.DocumentAnalysis) error {
	if f.failCreate {
		return errors.New("insert failed")
	}
	snapshot := *a
	f.created = &snapshot
	return nil
}

func (f *fakeAnalysisStore) UpdateAnalysis(_ context.Context, a *types.DocumentAnalysis) error {
	if f.failUpdate {
		return errors.New("update failed")
	}
	snapshot := *a
	f.updated = &snapshot
	return nil
}

type fakeExtractor struct {
	result extract.Result
	calls  int
}

func (f *fakeExtractor) Extract(_ context.Context, _ extract.Input) extract.Result {
	f.calls++
	return f.result
}

type fakeAnalyzer struct {
	record analysis.Record
	err    error
	calls  int
	input  string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, text string) (analysis.Record, error) {
	f.calls++
	f.input = text
	return f.record, f.err
}

func validUpload() Upload {
	data := []byte(strings.Repeat("x", 2048))
	return Upload{
		UserID:   "user-1",
		FileName: "rfp.pdf",
		FileType: "application/pdf",
		Size:     int64(len(data)),
		Data:     data,
	}
}

func fullRecord() analysis.Record {
	return analysis.Record{Fields: types.AnalysisFields{
		ProjectName:  "Railway Signaling System Upgrade",
		Deadline:     "October 15, 2023",
		Summary:      "Signaling upgrade across the northeastern corridor.",
		Requirements: []string{"Replace signaling equipment", "Train operations staff"},
	}}
}

func newTestPipeline(objects *fakeObjectStore, docs *fakeDocumentStore, analyses *fakeAnalysisStore, ext *fakeExtractor, az *fakeAnalyzer) *Pipeline {
	return New(Config{MaxUploadBytes: 10 * 1024 * 1024}, objects, docs, analyses, ext, az, nil)
}

func TestValidate(t *testing.T) {
	p := newTestPipeline(&fakeObjectStore{}, &fakeDocumentStore{}, &fakeAnalysisStore{}, &fakeExtractor{}, &fakeAnalyzer{})

	cases := []struct {
		name   string
		mutate func(*Upload)
		wantOK bool
	}{
		{"pdf ok", func(_ *Upload) {}, true},
		{"png ok", func(u *Upload) { u.FileType = "image/png" }, true},
		{"jpeg ok", func(u *Upload) { u.FileType = "image/jpeg" }, true},
		{"rejects text", func(u *Upload) { u.FileType = "text/plain" }, false},
		{"rejects unknown", func(u *Upload) { u.FileType = "" }, false},
		{"rejects oversize", func(u *Upload) { u.Size = 11 * 1024 * 1024 }, false},
		{"rejects empty", func(u *Upload) { u.Size = 0; u.Data = nil }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			up := validUpload()
			tc.mutate(&up)

			err := p.Validate(up)
			if tc.wantOK && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tc.wantOK {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("Validate() = %v, want ValidationError", err)
				}
			}
		})
	}
}

func TestRunCompletes(t *testing.T) {
	objects := &fakeObjectStore{}
	docs := &fakeDocumentStore{}
	analyses := &fakeAnalysisStore{}
	ext := &fakeExtractor{result: extract.Result{Text: strings.Repeat("t", 600), Source: extract.SourceLocal, Pages: 3}}
	az := &fakeAnalyzer{record: fullRecord()}

	p := newTestPipeline(objects, docs, analyses, ext, az)

	var reported []int
	docID, err := p.Run(context.Background(), validUpload(), func(progress int) {
		reported = append(reported, progress)
	})
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if docID == "" {
		t.Fatal("Run returned empty document ID")
	}

	if objects.uploads != 1 {
		t.Fatalf("object uploads = %d, want 1", objects.uploads)
	}
	if len(docs.created) != 1 {
		t.Fatalf("documents created = %d, want 1", len(docs.created))
	}
	if docs.created[0].ID != docID {
		t.Fatal("returned document ID does not match the created row")
	}

	// Interim write holds raw text with status pending; the final write
	// carries the structured fields.
	if analyses.created == nil || analyses.created.Status != types.AnalysisStatusPending {
		t.Fatalf("interim analysis = %+v, want pending", analyses.created)
	}
	if analyses.updated == nil || analyses.updated.Status != types.AnalysisStatusComplete {
		t.Fatalf("final analysis = %+v, want complete", analyses.updated)
	}
	if analyses.updated.ProjectName == nil || *analyses.updated.ProjectName != "Railway Signaling System Upgrade" {
		t.Fatal("final analysis lost the project name")
	}

	if len(reported) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(reported); i++ {
		if reported[i] <= reported[i-1] {
			t.Fatalf("progress not strictly increasing: %v", reported)
		}
	}
	if reported[len(reported)-1] != 100 {
		t.Fatalf("final progress = %d, want 100", reported[len(reported)-1])
	}
}

func TestRunValidationStopsBeforeSideEffects(t *testing.T) {
	objects := &fakeObjectStore{}
	docs := &fakeDocumentStore{}
	ext := &fakeExtractor{}
	az := &fakeAnalyzer{}

	p := newTestPipeline(objects, docs, &fakeAnalysisStore{}, ext, az)

	up := validUpload()
	up.FileType = "text/plain"

	_, err := p.Run(context.Background(), up, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Run() = %v, want ValidationError", err)
	}
	if objects.uploads != 0 || len(docs.created) != 0 || ext.calls != 0 || az.calls != 0 {
		t.Fatal("rejected upload still produced side effects")
	}
}

func TestRunStorageFailureIsTerminal(t *testing.T) {
	objects := &fakeObjectStore{fail: true}
	docs := &fakeDocumentStore{}
	ext := &fakeExtractor{}

	p := newTestPipeline(objects, docs, &fakeAnalysisStore{}, ext, &fakeAnalyzer{})

	_, err := p.Run(context.Background(), validUpload(), nil)
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("Run() = %v, want StorageError", err)
	}
	if len(docs.created) != 0 || ext.calls != 0 {
		t.Fatal("storage failure did not stop the run")
	}
}

func TestRunPersistenceFailureIsTerminal(t *testing.T) {
	analyses := &fakeAnalysisStore{failCreate: true}
	ext := &fakeExtractor{result: extract.Result{Text: strings.Repeat("t", 600), Source: extract.SourceLocal}}
	az := &fakeAnalyzer{record: fullRecord()}

	p := newTestPipeline(&fakeObjectStore{}, &fakeDocumentStore{}, analyses, ext, az)

	_, err := p.Run(context.Background(), validUpload(), nil)
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("Run() = %v, want PersistenceError", err)
	}
	if az.calls != 0 {
		t.Fatal("analysis attempted after the interim write failed")
	}
}

func TestRunAnalysisSoftFailure(t *testing.T) {
	analyses := &fakeAnalysisStore{}
	ext := &fakeExtractor{result: extract.Result{Text: strings.Repeat("t", 600), Source: extract.SourceLocal}}
	az := &fakeAnalyzer{record: analysis.Record{Err: "analysis request failed"}, err: errors.New("dial tcp: timeout")}

	p := newTestPipeline(&fakeObjectStore{}, &fakeDocumentStore{}, analyses, ext, az)

	docID, err := p.Run(context.Background(), validUpload(), nil)
	if err != nil {
		t.Fatalf("Run() = %v, want nil on analysis soft failure", err)
	}
	if docID == "" {
		t.Fatal("soft failure run returned no document ID")
	}
	if analyses.updated == nil || analyses.updated.Status != types.AnalysisStatusFailed {
		t.Fatalf("final analysis = %+v, want failed", analyses.updated)
	}
	// The raw extracted text survives in the summary for audit.
	if analyses.updated.Summary == nil || *analyses.updated.Summary == "" {
		t.Fatal("soft failure dropped the raw summary text")
	}
}

func TestRunExtractionSoftFailureIsPartial(t *testing.T) {
	analyses := &fakeAnalysisStore{}
	ext := &fakeExtractor{result: extract.Result{Text: "Failed to extract text from document. Please try a different file format.", Source: extract.SourceFailed}}
	az := &fakeAnalyzer{record: fullRecord()}

	p := newTestPipeline(&fakeObjectStore{}, &fakeDocumentStore{}, analyses, ext, az)

	if _, err := p.Run(context.Background(), validUpload(), nil); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if analyses.updated.Status != types.AnalysisStatusPartial {
		t.Fatalf("status = %q, want partial when extraction failed", analyses.updated.Status)
	}
}

func TestRunIncompleteFieldsArePartial(t *testing.T) {
	analyses := &fakeAnalysisStore{}
	ext := &fakeExtractor{result: extract.Result{Text: strings.Repeat("t", 600), Source: extract.SourceLocal}}
	az := &fakeAnalyzer{record: analysis.Record{Fields: types.AnalysisFields{Summary: "A short summary."}}}

	p := newTestPipeline(&fakeObjectStore{}, &fakeDocumentStore{}, analyses, ext, az)

	if _, err := p.Run(context.Background(), validUpload(), nil); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if analyses.updated.Status != types.AnalysisStatusPartial {
		t.Fatalf("status = %q, want partial without project name and requirements", analyses.updated.Status)
	}
	if analyses.updated.Summary == nil || *analyses.updated.Summary != "A short summary." {
		t.Fatal("model summary did not replace the raw text")
	}
}

func TestStorageKeyIsNamespaced(t *testing.T) {
	key := storageKey("user-1", "proposal.pdf")
	if !strings.HasPrefix(key, "user-1/") {
		t.Fatalf("key %q not namespaced by user", key)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("key %q lost the file extension", key)
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&ValidationError{Message: "The uploaded file is empty"}, "The uploaded file is empty"},
		{&StorageError{Err: errors.New("x")}, "Failed to upload file to storage"},
		{&PersistenceError{Err: errors.New("x")}, "Failed to save document record"},
		{errors.New("x"), "Document processing failed"},
	}

	for _, tc := range cases {
		if got := UserMessage(tc.err); got != tc.want {
			t.Errorf("UserMessage(%T) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

type fakeOCRClient struct {
	calls int
}

func (f *fakeOCRClient) ExtractText(_ context.Context, _ extract.Input) (string, int, error) {
	f.calls++
	return "", 0, nil
}

// buildTestPDF assembles a minimal well-formed PDF with one Helvetica text
// object per page and a byte-accurate xref table.
func buildTestPDF(t *testing.T, pageTexts ...string) []byte {
	t.Helper()

	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"", // pages node, filled in once the kids are known
		"3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n",
	}

	kids := make([]string, 0, len(pageTexts))
	for i, text := range pageTexts {
		pageNum := 4 + i*2
		contentNum := pageNum + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))

		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>\nendobj\n", pageNum, contentNum),
			fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", contentNum, len(stream), stream),
		)
	}
	objects[1] = fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), len(pageTexts))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		buf.WriteString(obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func TestRunTextPDFNeverReachesOCR(t *testing.T) {
	// A real multi-page PDF with enough embedded text flows through the
	// whole run on local extraction alone.
	page := strings.Repeat("signal upgrade scope item ", 24)
	data := buildTestPDF(t, page, page)

	ocr := &fakeOCRClient{}
	analyses := &fakeAnalysisStore{}
	az := &fakeAnalyzer{record: fullRecord()}

	p := New(Config{MaxUploadBytes: 10 * 1024 * 1024}, &fakeObjectStore{}, &fakeDocumentStore{}, analyses, extract.NewSelector(ocr, nil), az, nil)

	up := Upload{
		UserID:   "user-1",
		FileName: "rfp.pdf",
		FileType: "application/pdf",
		Size:     int64(len(data)),
		Data:     data,
	}

	if _, err := p.Run(context.Background(), up, nil); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	if ocr.calls != 0 {
		t.Fatalf("ocr calls = %d, sufficient local text must never reach OCR", ocr.calls)
	}
	if az.calls != 1 {
		t.Fatalf("analyzer calls = %d, want 1", az.calls)
	}
	if !strings.Contains(az.input, "signal upgrade scope item") {
		t.Fatalf("analyzer did not receive the extracted text: %q", az.input)
	}
	if len(az.input) < 1000 {
		t.Fatalf("analyzer received %d chars, expected both pages", len(az.input))
	}
	if analyses.created == nil || analyses.created.Summary == nil || !strings.Contains(*analyses.created.Summary, "signal upgrade scope item") {
		t.Fatal("interim analysis lost the raw extracted text")
	}
	if analyses.updated == nil || analyses.updated.Status != types.AnalysisStatusComplete {
		t.Fatalf("final analysis = %+v, want complete", analyses.updated)
	}
}
