package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"sync"
	"testing"

	"github.com/qiraa-project/qiraa/pkg/compose"
	"github.com/qiraa-project/qiraa/pkg/raster"
	"github.com/qiraa-project/qiraa/pkg/recognition"
	"github.com/qiraa-project/qiraa/pkg/selection"
	"github.com/qiraa-project/qiraa/pkg/space"
)

// 400 px render width plus the surface margin, so display space equals page space.
const containerWidth = 464

var origin = space.Pt[space.Screen](10, 20)

// fakePDF renders 200 x 300 point pages in a shade that depends on the page number.
type fakePDF struct {
	pages    int
	failPage int

	mu                 sync.Mutex
	closed             bool
	closedDuringRender bool

	// When set, renders of pages after the first wait for release. gateFirst extends the
	// wait to the first page.
	entered   chan struct{}
	release   chan struct{}
	gateFirst bool
}

func (f *fakePDF) NumPage() int {
	return f.pages
}

func (f *fakePDF) ImageDPI(pageNumber int, dpi float64) (*image.RGBA, error) {
	if f.entered != nil && (pageNumber > 0 || f.gateFirst) {
		f.entered <- struct{}{}
		<-f.release
		if f.isClosed() {
			f.mu.Lock()
			f.closedDuringRender = true
			f.mu.Unlock()
		}
	}
	if f.failPage > 0 && pageNumber == f.failPage-1 {
		return nil, errors.New("broken page")
	}
	img := image.NewRGBA(image.Rect(0, 0, int(200*dpi/72), int(300*dpi/72)))
	shade := uint8(40 * (pageNumber + 1))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = shade, shade, shade, 255
	}
	return img, nil
}

func (f *fakePDF) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakePDF) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeGateway struct {
	calls  int
	images []recognition.Image
	result *recognition.Result
	err    error
	// Runs inside the call, while the session lock is not held.
	during func()
}

func (f *fakeGateway) Analyze(ctx context.Context, image recognition.Image) (*recognition.Result, error) {
	f.calls++
	f.images = append(f.images, image)
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newSession(pdf *fakePDF, gateway *fakeGateway) *Session {
	rasterizer := raster.NewWithPDFOpener(func(data []byte) (raster.PDFDocument, error) {
		return pdf, nil
	})
	return New(rasterizer, gateway, nil, containerWidth)
}

func openPDF(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Open(context.Background(), []byte("%PDF-1.7"), "application/pdf", 0); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
}

func pngBytes(t *testing.T, width int, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// drag performs a gesture given in surface coordinates.
func drag(t *testing.T, s *Session, x0, y0, x1, y1 float64) selection.Effect {
	t.Helper()
	screen := func(x, y float64) space.Point[space.Screen] {
		return space.Pt[space.Screen](x+origin.X, y+origin.Y)
	}
	for _, step := range []struct {
		kind selection.EventKind
		at   space.Point[space.Screen]
	}{
		{selection.PointerDown, screen(x0, y0)},
		{selection.PointerMove, screen(x1, y1)},
	} {
		if _, err := s.Pointer(step.kind, step.at, origin); err != nil {
			t.Fatalf("Pointer(%s) error = %v", step.kind, err)
		}
	}
	effect, err := s.Pointer(selection.PointerUp, screen(x1, y1), origin)
	if err != nil {
		t.Fatalf("Pointer(up) error = %v", err)
	}
	return effect
}

func TestOpenPDF(t *testing.T) {
	s := newSession(&fakePDF{pages: 3}, &fakeGateway{})
	openPDF(t, s)

	state := s.State()
	if state.PageCount != 3 || state.CurrentPage != 1 {
		t.Errorf("State() = page %d of %d, want 1 of 3", state.CurrentPage, state.PageCount)
	}
	if state.Geometry.Width != 400 || state.Geometry.Height != 600 || state.Geometry.Scale != 1 {
		t.Errorf("Geometry = %+v, want 400x600 at scale 1", state.Geometry)
	}
	if state.Mode != selection.ModeNavigate || state.ShowHint {
		t.Errorf("new session should start in navigate mode without a hint")
	}
}

func TestOpenImageReplacesDocument(t *testing.T) {
	pdf := &fakePDF{pages: 2}
	s := newSession(pdf, &fakeGateway{})
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)
	drag(t, s, 0, 0, 50, 50)

	if err := s.Open(context.Background(), pngBytes(t, 232, 100), "image/png", 0); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	state := s.State()
	if state.PageCount != 1 || state.CurrentPage != 1 {
		t.Errorf("State() = page %d of %d, want 1 of 1", state.CurrentPage, state.PageCount)
	}
	if state.Geometry.Width != 400 || state.Geometry.Height != 172 {
		t.Errorf("Geometry = %+v, want 400x172", state.Geometry)
	}
	if len(state.Labels) != 0 {
		t.Errorf("selection survived opening a new file: %+v", state.Labels)
	}
	if !pdf.closed {
		t.Errorf("previous document was not closed")
	}
}

func TestFailedOpenKeepsPreviousDocument(t *testing.T) {
	pdf := &fakePDF{pages: 2}
	s := newSession(pdf, &fakeGateway{})
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)
	drag(t, s, 0, 0, 50, 50)

	// The new width belongs to the new document and must not touch the current surface.
	err := s.Open(context.Background(), []byte("just some notes"), "text/plain", 264)
	if !errors.Is(err, raster.ErrUnsupportedFormat) {
		t.Fatalf("Open() error = %v, want ErrUnsupportedFormat", err)
	}
	state := s.State()
	if state.PageCount != 2 || len(state.Labels) != 1 || pdf.closed {
		t.Errorf("failed load changed the session: %+v, closed=%v", state, pdf.closed)
	}
	if state.Geometry.Width != 400 {
		t.Errorf("failed load resized the surface to %d, want 400", state.Geometry.Width)
	}
}

func TestOpenAppliesContainerWidth(t *testing.T) {
	s := newSession(&fakePDF{pages: 2}, &fakeGateway{})
	if err := s.Open(context.Background(), []byte("%PDF-1.7"), "application/pdf", 264); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if geometry := s.State().Geometry; geometry.Width != 200 || geometry.Height != 300 {
		t.Errorf("Geometry = %+v, want 200x300", geometry)
	}
}

func TestChangePageClearsSelection(t *testing.T) {
	s := newSession(&fakePDF{pages: 3}, &fakeGateway{})
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)
	drag(t, s, 0, 0, 50, 50)
	s.Pointer(selection.PointerDown, space.Pt[space.Screen](100, 100), origin)

	if err := s.ChangePage(context.Background(), 1); err != nil {
		t.Fatalf("ChangePage() error = %v", err)
	}
	state := s.State()
	if state.CurrentPage != 2 {
		t.Errorf("CurrentPage = %d, want 2", state.CurrentPage)
	}
	if len(state.Labels) != 0 || state.Transient != nil || state.Dragging {
		t.Errorf("selection survived the page change: %+v", state)
	}
	if state.Mode != selection.ModeSelectRegion {
		t.Errorf("page change altered the mode")
	}
}

func TestPageBounds(t *testing.T) {
	s := newSession(&fakePDF{pages: 3}, &fakeGateway{})
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)
	drag(t, s, 0, 0, 50, 50)

	for _, delta := range []int{-1, 3, 0} {
		if err := s.ChangePage(context.Background(), delta); err != nil {
			t.Errorf("ChangePage(%d) error = %v", delta, err)
		}
	}
	if state := s.State(); state.CurrentPage != 1 || len(state.Labels) != 1 {
		t.Errorf("out of range moves changed the session: %+v", state)
	}

	for _, page := range []int{0, 4} {
		if err := s.GoToPage(context.Background(), page); !errors.Is(err, raster.ErrPageOutOfRange) {
			t.Errorf("GoToPage(%d) error = %v, want ErrPageOutOfRange", page, err)
		}
	}
	if err := s.GoToPage(context.Background(), 3); err != nil {
		t.Fatalf("GoToPage(3) error = %v", err)
	}
	if s.State().CurrentPage != 3 {
		t.Errorf("CurrentPage = %d, want 3", s.State().CurrentPage)
	}
}

func TestRenderFailureKeepsCurrentPage(t *testing.T) {
	s := newSession(&fakePDF{pages: 3, failPage: 2}, &fakeGateway{})
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)
	drag(t, s, 0, 0, 50, 50)

	if err := s.ChangePage(context.Background(), 1); !errors.Is(err, raster.ErrRenderFailure) {
		t.Fatalf("ChangePage() error = %v, want ErrRenderFailure", err)
	}
	if state := s.State(); state.CurrentPage != 1 || len(state.Labels) != 1 {
		t.Errorf("failed render changed the session: %+v", state)
	}
}

func TestRenderIsSingleFlight(t *testing.T) {
	pdf := &fakePDF{pages: 3}
	s := newSession(pdf, &fakeGateway{})
	openPDF(t, s)

	pdf.entered = make(chan struct{})
	pdf.release = make(chan struct{})
	done := make(chan error)
	go func() {
		done <- s.ChangePage(context.Background(), 1)
	}()
	<-pdf.entered

	if err := s.ChangePage(context.Background(), 1); !errors.Is(err, ErrBusy) {
		t.Errorf("ChangePage() while rendering error = %v, want ErrBusy", err)
	}
	if err := s.GoToPage(context.Background(), 3); !errors.Is(err, ErrBusy) {
		t.Errorf("GoToPage() while rendering error = %v, want ErrBusy", err)
	}
	if err := s.Open(context.Background(), pngBytes(t, 10, 10), "image/png", 0); !errors.Is(err, ErrBusy) {
		t.Errorf("Open() while rendering error = %v, want ErrBusy", err)
	}

	close(pdf.release)
	if err := <-done; err != nil {
		t.Fatalf("ChangePage() error = %v", err)
	}
	if s.State().CurrentPage != 2 {
		t.Errorf("CurrentPage = %d, want 2", s.State().CurrentPage)
	}
}

// waitUntilClosed returns once Close has marked the session, while it may still be waiting
// for the in-flight render.
func waitUntilClosed(s *Session) {
	for !s.isClosed() {
		runtime.Gosched()
	}
}

func TestCloseWaitsForRender(t *testing.T) {
	pdf := &fakePDF{pages: 3}
	s := newSession(pdf, &fakeGateway{})
	openPDF(t, s)

	pdf.entered = make(chan struct{})
	pdf.release = make(chan struct{})
	rendered := make(chan error)
	go func() {
		rendered <- s.ChangePage(context.Background(), 1)
	}()
	<-pdf.entered

	closed := make(chan error)
	go func() {
		closed <- s.Close()
	}()
	waitUntilClosed(s)
	select {
	case <-closed:
		t.Fatal("Close() returned while a page was rendering")
	default:
	}

	close(pdf.release)
	if err := <-rendered; !errors.Is(err, ErrClosed) {
		t.Errorf("ChangePage() error = %v, want ErrClosed", err)
	}
	if err := <-closed; err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if pdf.closedDuringRender {
		t.Error("document was closed while a page was rendering")
	}
	if !pdf.isClosed() || s.State().PageCount != 0 {
		t.Error("Close() did not release the document")
	}
}

func TestCloseDuringOpenDiscardsDocument(t *testing.T) {
	pdf := &fakePDF{pages: 3, entered: make(chan struct{}), release: make(chan struct{}), gateFirst: true}
	s := newSession(pdf, &fakeGateway{})

	opened := make(chan error)
	go func() {
		opened <- s.Open(context.Background(), []byte("%PDF-1.7"), "application/pdf", 0)
	}()
	<-pdf.entered

	closed := make(chan error)
	go func() {
		closed <- s.Close()
	}()
	waitUntilClosed(s)
	close(pdf.release)

	if err := <-opened; !errors.Is(err, ErrClosed) {
		t.Errorf("Open() error = %v, want ErrClosed", err)
	}
	if err := <-closed; err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !pdf.isClosed() {
		t.Error("document loaded during Close() was never closed")
	}
	if state := s.State(); state.PageCount != 0 || state.CurrentPage != 0 {
		t.Errorf("closed session came back: %+v", state)
	}
	if err := s.Open(context.Background(), []byte("%PDF-1.7"), "application/pdf", 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Open() after Close() error = %v, want ErrClosed", err)
	}
}

func TestWithoutDocument(t *testing.T) {
	s := newSession(&fakePDF{pages: 1}, &fakeGateway{})
	if err := s.ChangePage(context.Background(), 1); !errors.Is(err, ErrNoDocument) {
		t.Errorf("ChangePage() error = %v, want ErrNoDocument", err)
	}
	if _, err := s.Pointer(selection.PointerDown, origin, origin); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Pointer() error = %v, want ErrNoDocument", err)
	}
	if _, err := s.Frame(); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Frame() error = %v, want ErrNoDocument", err)
	}
	if _, err := s.Analyze(context.Background()); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Analyze() error = %v, want ErrNoDocument", err)
	}
}

func TestModeChanges(t *testing.T) {
	s := newSession(&fakePDF{pages: 1}, &fakeGateway{})
	openPDF(t, s)

	if effect := drag(t, s, 0, 0, 50, 50); effect != selection.EffectNone {
		t.Errorf("drag in navigate mode = %q, want none", effect)
	}
	if err := s.SetMode("zoom"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("SetMode() error = %v, want ErrInvalidMode", err)
	}

	s.SetMode(selection.ModeSelectRegion)
	if !s.State().ShowHint {
		t.Errorf("hint hidden in an empty select mode")
	}
	drag(t, s, 0, 0, 50, 50)
	if s.State().ShowHint {
		t.Errorf("hint shown with a committed box")
	}

	s.SetMode(selection.ModeSelectRegion)
	if len(s.State().Labels) != 1 {
		t.Errorf("re-selecting the same mode dropped the selection")
	}
	s.SetMode(selection.ModeNavigate)
	if len(s.State().Labels) != 0 {
		t.Errorf("switching mode kept the selection")
	}
}

func TestPointerIsClampedToSurface(t *testing.T) {
	s := newSession(&fakePDF{pages: 1}, &fakeGateway{})
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)

	drag(t, s, 350, 550, 900, 900)
	labels := s.State().Labels
	if len(labels) != 1 {
		t.Fatalf("Labels() = %+v, want one box", labels)
	}
	want := space.Box[space.Display]{X: 350, Y: 550, Width: 50, Height: 50}
	if labels[0].Box != want {
		t.Errorf("box = %+v, want %+v", labels[0].Box, want)
	}
}

func TestUndoClearAndFrame(t *testing.T) {
	s := newSession(&fakePDF{pages: 1}, &fakeGateway{})
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)
	drag(t, s, 0, 0, 50, 50)
	drag(t, s, 0, 100, 60, 160)

	s.Undo()
	labels := s.State().Labels
	if len(labels) != 1 || labels[0].Box.Y != 0 {
		t.Errorf("Undo() left %+v", labels)
	}
	s.Clear()
	s.Clear()
	if len(s.State().Labels) != 0 {
		t.Errorf("Clear() left boxes behind")
	}

	frame, err := s.Frame()
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if frame.Bounds().Dx() != 400 || frame.Bounds().Dy() != 600 {
		t.Errorf("Frame() = %v, want 400x600", frame.Bounds())
	}
}

func TestResizeRefitsSurface(t *testing.T) {
	s := newSession(&fakePDF{pages: 1}, &fakeGateway{})
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)
	drag(t, s, 0, 0, 50, 50)

	s.Resize(containerWidth)
	if len(s.State().Labels) != 1 {
		t.Errorf("resize to the same width dropped the selection")
	}

	s.Resize(264)
	state := s.State()
	if state.Geometry.Width != 200 || state.Geometry.Height != 300 {
		t.Errorf("Geometry = %+v, want 200x300", state.Geometry)
	}
	if len(state.Labels) != 0 {
		t.Errorf("resize kept boxes drawn on the previous bitmap")
	}

	s.Resize(0)
	if g := s.State().Geometry; g.Width != 0 || g.Height != 0 {
		t.Errorf("Geometry for a zero container = %+v, want zero area", g)
	}
}

func TestAnalyzeEmptySelectionSkipsGateway(t *testing.T) {
	gateway := &fakeGateway{result: &recognition.Result{RawText: "x"}}
	s := newSession(&fakePDF{pages: 1}, gateway)
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)

	if _, err := s.Analyze(context.Background()); !errors.Is(err, compose.ErrEmptySelection) {
		t.Errorf("Analyze() error = %v, want ErrEmptySelection", err)
	}
	if gateway.calls != 0 {
		t.Errorf("gateway called %d times for an empty selection", gateway.calls)
	}
}

func TestAnalyze(t *testing.T) {
	gateway := &fakeGateway{result: &recognition.Result{RawText: "كتاب", TranslatedText: "livre"}}
	s := newSession(&fakePDF{pages: 2}, gateway)
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)
	drag(t, s, 10, 300, 110, 340)
	drag(t, s, 20, 50, 170, 110)

	analysis, err := s.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if gateway.calls != 1 || gateway.images[0].MIMEType != "image/png" {
		t.Fatalf("gateway calls = %d, images = %d", gateway.calls, len(gateway.images))
	}
	decoded, err := png.Decode(bytes.NewReader(gateway.images[0].Data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if decoded.Bounds().Dx() != 150 || decoded.Bounds().Dy() != 110 {
		t.Errorf("composite = %v, want 150x110", decoded.Bounds())
	}

	if analysis.ID == "" || analysis.Page != 1 {
		t.Errorf("analysis stamp = %q on page %d", analysis.ID, analysis.Page)
	}
	if analysis.Result.VocalizedText != "كتاب" || analysis.Result.Words == nil {
		t.Errorf("result was not normalized: %+v", analysis.Result)
	}
	if last, ok := s.LastAnalysis(); !ok || last != analysis {
		t.Errorf("LastAnalysis() = %v, %v", last, ok)
	}
	if len(s.State().Labels) != 2 {
		t.Errorf("Analyze() changed the selection")
	}

	s.ChangePage(context.Background(), 1)
	if _, ok := s.LastAnalysis(); ok {
		t.Errorf("analysis outlived its page")
	}
}

func TestAnalyzeFailureKeepsSelection(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("quota exceeded")}
	s := newSession(&fakePDF{pages: 1}, gateway)
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)
	drag(t, s, 0, 0, 50, 50)

	if _, err := s.Analyze(context.Background()); !errors.Is(err, recognition.ErrGatewayFailure) {
		t.Errorf("Analyze() error = %v, want ErrGatewayFailure", err)
	}
	if len(s.State().Labels) != 1 {
		t.Errorf("failed analysis cleared the selection")
	}
	if _, ok := s.LastAnalysis(); ok {
		t.Errorf("failed analysis was recorded")
	}
}

func TestStaleAnalysisIsDiscarded(t *testing.T) {
	gateway := &fakeGateway{result: &recognition.Result{RawText: "x"}}
	s := newSession(&fakePDF{pages: 1}, gateway)
	openPDF(t, s)
	s.SetMode(selection.ModeSelectRegion)
	drag(t, s, 0, 0, 50, 50)
	drag(t, s, 0, 100, 50, 150)
	gateway.during = s.Undo

	if _, err := s.Analyze(context.Background()); !errors.Is(err, ErrStaleAnalysis) {
		t.Errorf("Analyze() error = %v, want ErrStaleAnalysis", err)
	}
	if _, ok := s.LastAnalysis(); ok {
		t.Errorf("stale analysis was recorded")
	}
	if len(s.State().Labels) != 1 {
		t.Errorf("stale analysis overwrote the selection")
	}
}

func TestClose(t *testing.T) {
	pdf := &fakePDF{pages: 1}
	s := newSession(pdf, &fakeGateway{})
	openPDF(t, s)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !pdf.closed || s.State().PageCount != 0 {
		t.Errorf("Close() did not release the document")
	}
}
