package cover

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"media-covers/internal/artwork"
)

var (
	red   = color.NRGBA{R: 220, G: 40, B: 40, A: 255}
	green = color.NRGBA{R: 40, G: 200, B: 60, A: 255}
	blue  = color.NRGBA{R: 40, G: 80, B: 220, A: 255}
	gray  = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
)

func solidArt(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	return img
}

// memSource is an in-memory artwork source. Libraries keep insertion order.
type memSource struct {
	mu    sync.Mutex
	order []string
	items map[string][]memItem
}

type memItem struct {
	id   string
	data []byte
}

func newMemSource() *memSource {
	return &memSource{items: make(map[string][]memItem)}
}

func (m *memSource) add(library string, data ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[library]; !ok {
		m.order = append(m.order, library)
		m.items[library] = nil
	}
	for _, d := range data {
		n := len(m.items[library])
		m.items[library] = append(m.items[library], memItem{
			id:   library + "/" + string(rune('a'+n)),
			data: d,
		})
	}
}

func (m *memSource) addSolid(t *testing.T, library string, w, h int, colors ...color.NRGBA) {
	t.Helper()
	for _, c := range colors {
		m.add(library, encodePNG(t, solidArt(w, h, c)))
	}
}

func (m *memSource) Libraries(_ context.Context) ([]artwork.Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	libs := make([]artwork.Library, 0, len(m.order))
	for _, name := range m.order {
		libs = append(libs, artwork.Library{ID: name, Name: name, ItemCount: len(m.items[name])})
	}
	return libs, nil
}

func (m *memSource) List(_ context.Context, libraryID string, limit int) ([]artwork.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.items[libraryID]
	if !ok {
		return nil, artwork.ErrLibraryNotFound
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	items := make([]artwork.Item, len(entries))
	for i, e := range entries {
		items[i] = artwork.Item{ID: e.id, Name: e.id}
	}
	return items, nil
}

func (m *memSource) Fetch(_ context.Context, itemID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	library, _, _ := strings.Cut(itemID, "/")
	for _, e := range m.items[library] {
		if e.id == itemID {
			return e.data, nil
		}
	}
	return nil, artwork.ErrItemNotFound
}

func newTestService(t *testing.T, src artwork.Source, opts ...Option) *Service {
	t.Helper()
	s, err := NewService(src, append([]Option{WithFetchWorkers(2)}, opts...)...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func seed(v uint64) *uint64 {
	return &v
}

// recordingObserver counts events.
type recordingObserver struct {
	mu       sync.Mutex
	started  int
	finished []string
	failed   int
	phases   map[string]int
	frames   int
	outputs  map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{phases: map[string]int{}, outputs: map[string]int{}}
}

func (o *recordingObserver) GenerationStarted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *recordingObserver) GenerationFinished(style, kind string, _ float64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, style+"/"+kind)
	if err != nil {
		o.failed++
	}
}

func (o *recordingObserver) PhaseFinished(phase string, _ float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases[phase]++
}

func (o *recordingObserver) FrameRendered() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.frames++
}

func (o *recordingObserver) OutputEncoded(format string, size int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outputs[format] += size
}

// smallLayout is a scaled-down collage for fast tests.
func smallLayout() CollageLayout {
	return CollageLayout{
		Canvas: image.Pt(240, 135),
		Tile: TileSpec{
			CellWidth:     30,
			CellHeight:    45,
			CornerRadius:  4,
			ShadowOffset:  2,
			ShadowBlur:    2,
			ShadowOpacity: 216,
		},
		Margin:        3,
		Rotation:      -15.8,
		Start:         image.Pt(100, -40),
		ColumnSpacing: 10,
	}
}

func channelDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func closeTo(got color.Color, want color.NRGBA, tol int) bool {
	g := color.NRGBAModel.Convert(got).(color.NRGBA)
	return channelDiff(g.R, want.R) <= tol &&
		channelDiff(g.G, want.G) <= tol &&
		channelDiff(g.B, want.B) <= tol &&
		channelDiff(g.A, want.A) <= tol
}
