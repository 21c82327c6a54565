// Package session is the single-user reading context: the open document, the current page,
// its display surface, the interaction mode and the selection drawn over it.
//
// Only Open and page changes replace the document or page; only pointer events, Undo and
// Clear change the committed boxes. Every replacement of the display bitmap resets the
// selection so boxes never outlive the pixels they were drawn against.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qiraa-project/qiraa/pkg/compose"
	"github.com/qiraa-project/qiraa/pkg/font"
	"github.com/qiraa-project/qiraa/pkg/raster"
	"github.com/qiraa-project/qiraa/pkg/recognition"
	"github.com/qiraa-project/qiraa/pkg/selection"
	"github.com/qiraa-project/qiraa/pkg/space"
	"github.com/qiraa-project/qiraa/pkg/surface"
)

var (
	ErrBusy          = errors.New("a page is already being rendered")
	ErrNoDocument    = errors.New("no document is open")
	ErrInvalidMode   = errors.New("invalid mode")
	ErrStaleAnalysis = errors.New("selection changed while the analysis was running")
	ErrClosed        = errors.New("session is closed")
)

// Analysis is a recognition result stamped with the selection snapshot it was produced from.
type Analysis struct {
	ID        string
	Page      int
	Composite *compose.Composite
	Result    *recognition.Result
	CreatedAt time.Time
}

// State is a read-only view of the session for the UI.
type State struct {
	PageCount   int
	CurrentPage int
	Mode        selection.Mode
	Geometry    surface.Geometry
	Labels      []selection.Label
	Transient   *space.Box[space.Display]
	Dragging    bool
	// The empty-state hint is shown in select mode before the first box is drawn.
	ShowHint bool
}

type Session struct {
	rasterizer *raster.Rasterizer
	gateway    recognition.Gateway
	fonts      font.FontProvider

	// Held while a document load or page render is in flight. Loads and renders only
	// TryLock it; Close waits for it so a document is never closed under MuPDF.
	rendering sync.Mutex

	mu             sync.Mutex
	closed         bool
	doc            *raster.Document
	page           *raster.RenderedPage
	surface        *surface.Surface
	containerWidth int
	mode           selection.Mode
	machine        selection.Machine
	// Incremented on every change of the committed boxes or of the bitmap they refer to.
	generation uint64
	last       *Analysis
}

func New(rasterizer *raster.Rasterizer, gateway recognition.Gateway, fonts font.FontProvider, containerWidth int) *Session {
	if fonts == nil {
		fonts = font.Default()
	}
	return &Session{
		rasterizer:     rasterizer,
		gateway:        gateway,
		fonts:          fonts,
		containerWidth: containerWidth,
		mode:           selection.ModeNavigate,
		machine:        selection.Reset(),
	}
}

// Open loads a new file and shows its first page fitted to containerWidth, or to the current
// width when containerWidth is not positive. On failure the previous document, its surface
// and its selection stay exactly as they were.
func (s *Session) Open(ctx context.Context, data []byte, mimeType string, containerWidth int) error {
	if !s.rendering.TryLock() {
		return ErrBusy
	}
	defer s.rendering.Unlock()
	if s.isClosed() {
		return ErrClosed
	}

	doc, err := s.rasterizer.Load(data, mimeType)
	if err != nil {
		return err
	}
	page, err := s.rasterizer.Render(ctx, doc, 1, raster.RenderScale)
	if err != nil {
		doc.Close()
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		doc.Close()
		return ErrClosed
	}
	previous := s.doc
	s.doc = doc
	if containerWidth > 0 {
		s.containerWidth = containerWidth
	}
	s.showLocked(page)
	s.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	return nil
}

// ChangePage moves by delta pages. Moves past either end are ignored.
func (s *Session) ChangePage(ctx context.Context, delta int) error {
	if !s.rendering.TryLock() {
		return ErrBusy
	}
	defer s.rendering.Unlock()

	doc, current, err := s.currentDocument()
	if err != nil {
		return err
	}

	target := current + delta
	if delta == 0 || target < 1 || target > doc.PageCount() {
		return nil
	}
	return s.render(ctx, doc, target)
}

// GoToPage jumps to a 1-based page index.
func (s *Session) GoToPage(ctx context.Context, pageIndex int) error {
	if !s.rendering.TryLock() {
		return ErrBusy
	}
	defer s.rendering.Unlock()

	doc, current, err := s.currentDocument()
	if err != nil {
		return err
	}

	if pageIndex < 1 || pageIndex > doc.PageCount() {
		return fmt.Errorf("%w: page %d of %d", raster.ErrPageOutOfRange, pageIndex, doc.PageCount())
	}
	if pageIndex == current {
		return nil
	}
	return s.render(ctx, doc, pageIndex)
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) currentDocument() (*raster.Document, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, 0, ErrClosed
	}
	if s.doc == nil {
		return nil, 0, ErrNoDocument
	}
	return s.doc, s.currentPageLocked(), nil
}

// Must hold the rendering lock. A failed render leaves the current page displayed.
func (s *Session) render(ctx context.Context, doc *raster.Document, pageIndex int) error {
	page, err := s.rasterizer.Render(ctx, doc, pageIndex, raster.RenderScale)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.doc != doc {
		return ErrNoDocument
	}
	s.showLocked(page)
	return nil
}

func (s *Session) showLocked(page *raster.RenderedPage) {
	s.page = page
	s.surface = surface.New(page, s.containerWidth, s.fonts)
	s.resetSelectionLocked()
	s.last = nil
}

func (s *Session) resetSelectionLocked() {
	s.machine = selection.Reset()
	s.generation++
}

func (s *Session) currentPageLocked() int {
	if s.page == nil {
		return 0
	}
	return s.page.Index
}

// SetMode switches between navigation and region selection. Switching to a different mode
// drops the selection.
func (s *Session) SetMode(mode selection.Mode) error {
	if mode != selection.ModeNavigate && mode != selection.ModeSelectRegion {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == s.mode {
		return nil
	}
	s.mode = mode
	s.resetSelectionLocked()
	return nil
}

// Resize refits the display surface to a new container width.
func (s *Session) Resize(containerWidth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if containerWidth == s.containerWidth {
		return
	}
	s.containerWidth = containerWidth
	if s.page == nil {
		return
	}
	// The display bitmap is rebuilt at the new size, so boxes drawn on the old one are dropped.
	s.surface = surface.New(s.page, containerWidth, s.fonts)
	s.resetSelectionLocked()
}

// Pointer feeds a pointer event given in screen coordinates together with the surface's
// on-screen origin. The position is clamped to the surface.
func (s *Session) Pointer(kind selection.EventKind, at space.Point[space.Screen], origin space.Point[space.Screen]) (selection.Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil {
		return selection.EffectNone, ErrNoDocument
	}

	geometry := s.surface.Geometry()
	point := space.Clamp(space.ToDisplay(at, origin), float64(geometry.Width), float64(geometry.Height))

	var effect selection.Effect
	s.machine, effect = selection.Transition(s.machine, s.mode, selection.Event{Kind: kind, At: point})
	if effect == selection.EffectCommitted {
		s.generation++
	}
	return effect, nil
}

func (s *Session) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.Len() == 0 {
		return
	}
	s.machine = selection.Undo(s.machine)
	s.generation++
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.Len() == 0 {
		return
	}
	s.machine = selection.Clear(s.machine)
	s.generation++
}

// Frame draws the current page with its overlays.
func (s *Session) Frame() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil {
		return nil, ErrNoDocument
	}

	var transient *space.Box[space.Display]
	if box, ok := s.machine.Transient(); ok {
		transient = &box
	}
	return s.surface.Draw(s.machine.Committed(), transient), nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		CurrentPage: s.currentPageLocked(),
		Mode:        s.mode,
		Labels:      selection.Labels(s.machine),
		Dragging:    s.machine.State() == selection.StateDragging,
	}
	if s.doc != nil {
		state.PageCount = s.doc.PageCount()
	}
	if s.surface != nil {
		state.Geometry = s.surface.Geometry()
	}
	if box, ok := s.machine.Transient(); ok {
		state.Transient = &box
	}
	state.ShowHint = s.mode == selection.ModeSelectRegion && len(state.Labels) == 0 && !state.Dragging
	return state
}

// Analyze composes the committed boxes and sends the composite to the gateway. The boxes
// and bitmap are snapshotted first; if the selection changes before the gateway answers,
// the result is discarded and ErrStaleAnalysis is returned. A failed call keeps the
// selection so it can be retried.
func (s *Session) Analyze(ctx context.Context) (*Analysis, error) {
	s.mu.Lock()
	if s.surface == nil {
		s.mu.Unlock()
		return nil, ErrNoDocument
	}
	boxes := s.machine.Committed()
	bitmap := s.surface.Bitmap()
	generation := s.generation
	pageIndex := s.currentPageLocked()
	s.mu.Unlock()

	composite, err := compose.Compose(bitmap, boxes)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.Analyze(ctx, recognition.Image{Data: composite.PNG, MIMEType: composite.MIMEType()})
	if err != nil {
		if errors.Is(err, recognition.ErrGatewayFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", recognition.ErrGatewayFailure, err)
	}
	result.Normalize()

	analysis := &Analysis{
		ID:        uuid.NewString(),
		Page:      pageIndex,
		Composite: composite,
		Result:    result,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return nil, ErrStaleAnalysis
	}
	s.last = analysis
	return analysis, nil
}

// LastAnalysis returns the most recent analysis that is still valid for the current page.
func (s *Session) LastAnalysis() (*Analysis, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.last != nil
}

// Close releases the open document. It waits for an in-flight load or render to finish
// first; that load or render then fails with ErrClosed. A closed session cannot be reopened.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.rendering.Lock()
	defer s.rendering.Unlock()

	s.mu.Lock()
	doc := s.doc
	s.doc = nil
	s.page = nil
	s.surface = nil
	s.machine = selection.Reset()
	s.generation++
	s.last = nil
	s.mu.Unlock()

	if doc == nil {
		return nil
	}
	return doc.Close()
}
