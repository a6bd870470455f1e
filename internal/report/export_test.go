package report

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/qacapture/internal/clock"
	"github.com/blackwell-systems/qacapture/internal/records"
)

var now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type fakeRenderer struct {
	docs  []*Document
	paths []string
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, doc *Document, path string, progress ProgressFunc) error {
	f.docs = append(f.docs, doc)
	f.paths = append(f.paths, path)
	if err := os.WriteFile(path, []byte("%PDF-fake"), 0644); err != nil {
		return err
	}
	for i := range doc.Pages {
		if progress != nil {
			progress(i+1, len(doc.Pages))
		}
	}
	return f.err
}

func completeHeader() records.HeaderData {
	return records.HeaderData{
		TestName:      "pass",
		System:        "checkout",
		TestCycle:     "C1",
		TestCase:      "TC-101",
		TestType:      "sprint",
		TestTypeValue: "42",
	}
}

func setup(t *testing.T, h records.HeaderData, shots ...string) (*records.Store, *records.TestRecord) {
	t.Helper()
	dir := t.TempDir()
	st := records.New(filepath.Join(dir, "tests.json"), records.WithClock(clock.Fake(now)))
	rec, err := st.CreateTest(filepath.Join(dir, "evidence"), &h)
	require.NoError(t, err)
	for _, name := range shots {
		writePNG(t, filepath.Join(rec.FolderPath, name))
		_, err := st.AddScreenshot(rec.ID, name, false)
		require.NoError(t, err)
	}
	return st, rec
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: 100, B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestExport(t *testing.T) {
	st, rec := setup(t, completeHeader(), "screenshot-001.png", "screenshot-002.png")
	_, err := st.ReorderScreenshots(rec.ID, []string{"screenshot-002.png", "screenshot-001.png"})
	require.NoError(t, err)

	r := &fakeRenderer{}
	var calls []int
	exp := New(st, r, clock.Fake(now), zerolog.Nop())

	res, err := exp.Export(context.Background(), rec.ID, func(done, total int) {
		calls = append(calls, done)
		assert.Equal(t, 2, total)
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(rec.FolderPath, "TC-101-evidence.pdf"), res.Path)
	assert.Equal(t, 2, res.Pages)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, []int{1, 2}, calls)

	require.Len(t, r.docs, 1)
	doc := r.docs[0]
	assert.Equal(t, "screenshot-002.png", doc.Pages[0].Filename)
	assert.Equal(t, "screenshot-001.png", doc.Pages[1].Filename)
	assert.Equal(t, completeHeader(), doc.Header)
	assert.True(t, doc.GeneratedAt.Equal(now))

	got := st.GetTest(rec.ID)
	assert.True(t, got.PDFGenerated)
	assert.Equal(t, res.Path, got.PDFPath)
	assert.Equal(t, records.StatusCompleted, got.Status)
}

func TestExport_DoesNotOverwrite(t *testing.T) {
	st, rec := setup(t, completeHeader())
	exp := New(st, &fakeRenderer{}, nil, zerolog.Nop())

	first, err := exp.Export(context.Background(), rec.ID, nil)
	require.NoError(t, err)
	second, err := exp.Export(context.Background(), rec.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, "TC-101-evidence.pdf", filepath.Base(first.Path))
	assert.Equal(t, "TC-101-evidence (2).pdf", filepath.Base(second.Path))
	assert.Equal(t, second.Path, st.GetTest(rec.ID).PDFPath)
}

func TestExport_Validation(t *testing.T) {
	h := completeHeader()
	h.TestName = ""
	st, rec := setup(t, h)
	r := &fakeRenderer{}

	_, err := New(st, r, nil, zerolog.Nop()).Export(context.Background(), rec.ID, nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"testName"}, verr.Missing)
	assert.Contains(t, err.Error(), "testName")
	assert.Empty(t, r.docs)
	assert.False(t, st.GetTest(rec.ID).PDFGenerated)
}

func TestExport_NotFound(t *testing.T) {
	st, _ := setup(t, completeHeader())
	_, err := New(st, &fakeRenderer{}, nil, zerolog.Nop()).Export(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExport_SkipsMissingFiles(t *testing.T) {
	st, rec := setup(t, completeHeader(), "screenshot-001.png", "screenshot-002.png")
	require.NoError(t, os.Remove(filepath.Join(rec.FolderPath, "screenshot-001.png")))

	res, err := New(st, &fakeRenderer{}, nil, zerolog.Nop()).Export(context.Background(), rec.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, []string{"screenshot-001.png"}, res.Skipped)
}

func TestExport_RenderFailure(t *testing.T) {
	st, rec := setup(t, completeHeader(), "screenshot-001.png")
	r := &fakeRenderer{err: errors.New("disk full")}

	_, err := New(st, r, nil, zerolog.Nop()).Export(context.Background(), rec.ID, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.NoFileExists(t, r.paths[0])
	got := st.GetTest(rec.ID)
	assert.False(t, got.PDFGenerated)
	assert.Equal(t, records.StatusInProgress, got.Status)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "TC-101-evidence.pdf", Filename(records.HeaderData{TestCase: "TC-101"}))
	assert.Equal(t, "a-b-evidence.pdf", Filename(records.HeaderData{TestCase: "a/b"}))
	assert.Equal(t, "report-evidence.pdf", Filename(records.HeaderData{}))
}

func TestPDFRenderer(t *testing.T) {
	st, rec := setup(t, completeHeader(), "screenshot-001.png", "screenshot-002.png")
	notes := "Checked totals\nand the receipt email."
	_, err := st.UpdateTest(rec.ID, records.TestUpdate{Notes: &notes})
	require.NoError(t, err)

	res, err := New(st, PDFRenderer{}, clock.Fake(now), zerolog.Nop()).Export(context.Background(), rec.ID, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.True(t, len(data) > 100)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFRenderer_Cancelled(t *testing.T) {
	st, rec := setup(t, completeHeader(), "screenshot-001.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(st, PDFRenderer{}, nil, zerolog.Nop()).Export(ctx, rec.ID, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, st.GetTest(rec.ID).PDFGenerated)
	assert.NoFileExists(t, filepath.Join(rec.FolderPath, "TC-101-evidence.pdf"))
}
