package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeOCR struct {
	text  string
	pages int
	err   error
	calls int
}

func (f *fakeOCR) ExtractText(_ context.Context, _ Input) (string, int, error) {
	f.calls++
	return f.text, f.pages, f.err
}

func TestExtractNonPDFGoesStraightToOCR(t *testing.T) {
	ocr := &fakeOCR{text: strings.Repeat("scanned text ", 20), pages: 1}
	s := NewSelector(ocr, nil)

	res := s.Extract(context.Background(), Input{
		FileName: "scan.png",
		FileType: "image/png",
		Data:     []byte{0x89, 0x50, 0x4e, 0x47},
	})

	if ocr.calls != 1 {
		t.Fatalf("ocr calls = %d, want 1", ocr.calls)
	}
	if res.Source != SourceRemote {
		t.Fatalf("source = %q, want remote", res.Source)
	}
	if res.Failed() {
		t.Fatal("usable remote text reported as failure")
	}
}

func TestExtractCorruptPDFFallsBackToOCR(t *testing.T) {
	ocr := &fakeOCR{text: strings.Repeat("recovered text ", 20), pages: 2}
	s := NewSelector(ocr, nil)

	res := s.Extract(context.Background(), Input{
		FileName: "broken.pdf",
		FileType: "application/pdf",
		Data:     []byte("%PDF-1.4 this is not really a pdf"),
	})

	if ocr.calls != 1 {
		t.Fatalf("ocr calls = %d, want 1", ocr.calls)
	}
	if res.Source != SourceRemote {
		t.Fatalf("source = %q, want remote", res.Source)
	}
	if res.Pages != 2 {
		t.Fatalf("pages = %d, want remote page count", res.Pages)
	}
}

func TestExtractSoftFailureProducesPlaceholder(t *testing.T) {
	ocr := &fakeOCR{err: errors.New("ocr unavailable")}
	s := NewSelector(ocr, nil)

	res := s.Extract(context.Background(), Input{
		FileName: "scan.jpg",
		FileType: "image/jpeg",
		Data:     []byte{0xff, 0xd8},
	})

	if !res.Failed() {
		t.Fatal("extraction with no usable text not reported as failure")
	}
	if res.Text != FailurePlaceholder {
		t.Fatalf("text = %q, want the failure placeholder", res.Text)
	}
}

func TestExtractThinRemoteTextIsStillFailure(t *testing.T) {
	// Remote OCR succeeded but returned less than the usable floor.
	ocr := &fakeOCR{text: "too short"}
	s := NewSelector(ocr, nil)

	res := s.Extract(context.Background(), Input{
		FileName: "scan.png",
		FileType: "image/png",
		Data:     []byte{0x89},
	})

	if !res.Failed() {
		t.Fatalf("%d chars cleared the %d char floor", len("too short"), MinUsableText)
	}
}

func TestExtractPDFTextSurvivesGarbage(t *testing.T) {
	text, pages := extractPDFText([]byte("definitely not a pdf"))
	if text != "" || pages != 0 {
		t.Fatalf("garbage input produced text=%q pages=%d", text, pages)
	}

	text, pages = extractPDFText(nil)
	if text != "" || pages != 0 {
		t.Fatalf("nil input produced text=%q pages=%d", text, pages)
	}
}

// buildPDF assembles a minimal well-formed PDF with one Helvetica text
// object per page and a byte-accurate xref table.
func buildPDF(t *testing.T, pageTexts ...string) []byte {
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

func TestExtractSufficientLocalTextSkipsOCR(t *testing.T) {
	ocr := &fakeOCR{text: "remote text that must never be requested"}
	s := NewSelector(ocr, nil)

	body := strings.Repeat("requirements and deadlines for the signaling upgrade ", 12)
	res := s.Extract(context.Background(), Input{
		FileName: "rfp.pdf",
		FileType: "application/pdf",
		Data:     buildPDF(t, body),
	})

	if ocr.calls != 0 {
		t.Fatalf("local text over the threshold still triggered %d OCR calls", ocr.calls)
	}
	if res.Source != SourceLocal {
		t.Fatalf("source = %q, want %q", res.Source, SourceLocal)
	}
	if res.Pages != 1 {
		t.Fatalf("pages = %d, want 1", res.Pages)
	}
	if len(res.Text) < LocalTextThreshold {
		t.Fatalf("extracted %d chars, expected at least %d", len(res.Text), LocalTextThreshold)
	}
	if !strings.Contains(res.Text, "requirements and deadlines") {
		t.Fatalf("extracted text lost the page content: %q", res.Text)
	}
}
