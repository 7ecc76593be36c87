package text

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	xlang "golang.org/x/text/language"

	"github.com/gogpu/lumen"
)

// GoTextProvider shapes with go-text/typesetting's HarfBuzz port and
// rasterizes with golang.org/x/image. Shaping picks up kerning,
// ligatures and script-specific substitution; rasterization produces
// grayscale A8 masks.
//
// The provider is safe for concurrent use. The parsed fonts are
// read-only and shared; the shaper and x/image faces have mutable state
// and are pooled or created per call.
type GoTextProvider struct {
	tag    string
	gtFont *gtfont.Font
	otFont *opentype.Font

	// shaperPool pools HarfbuzzShaper instances; they carry an internal
	// buffer and are not safe for concurrent use.
	shaperPool sync.Pool

	// maskMu guards maskCache, keyed by glyph rune and size so repeated
	// glyphs across runs share rasterization.
	maskMu    sync.Mutex
	maskCache map[maskKey]cachedMask

	// lang is the canonical BCP-47 tag handed to the shaper.
	lang language.Language
}

type maskKey struct {
	r      rune
	sizePx uint32
}

type cachedMask struct {
	mask   *GlyphMask
	offset lumen.Point
}

// NewGoTextProvider parses TTF/OTF font data. The tag names the
// configuration in glyph cache keys; two providers with different fonts
// must not share a tag.
func NewGoTextProvider(fontData []byte, tag string) (*GoTextProvider, error) {
	gtFace, err := gtfont.ParseTTF(bytes.NewReader(fontData))
	if err != nil {
		return nil, fmt.Errorf("lumen/text: parse font for shaping: %w", err)
	}
	otFont, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("lumen/text: parse font for rasterization: %w", err)
	}
	p := &GoTextProvider{
		tag:       tag,
		gtFont:    gtFace.Font,
		otFont:    otFont,
		maskCache: make(map[maskKey]cachedMask),
		lang:      language.NewLanguage("en"),
	}
	p.shaperPool = sync.Pool{
		New: func() any { return &shaping.HarfbuzzShaper{} },
	}
	return p, nil
}

// SetLanguage sets the shaping language from a BCP-47 tag such as
// "en-US" or "ar". The tag is validated and canonicalized, so "EN_us"
// and "en-US" shape identically. Call before the first draw; the
// language is not part of glyph cache keys.
func (p *GoTextProvider) SetLanguage(tag string) error {
	t, err := xlang.Parse(tag)
	if err != nil {
		return fmt.Errorf("lumen/text: parse language %q: %w", tag, err)
	}
	p.lang = language.NewLanguage(t.String())
	return nil
}

// Tag implements Provider.
func (p *GoTextProvider) Tag() string { return p.tag }

// Metrics implements Provider.
func (p *GoTextProvider) Metrics(sizePx float32) LineMetrics {
	face, err := p.newRasterFace(sizePx)
	if err != nil {
		return LineMetrics{Ascent: sizePx * 0.8, Descent: sizePx * 0.2}
	}
	defer face.Close()

	m := face.Metrics()
	return LineMetrics{
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
		LineGap: fixedToFloat(m.Height - m.Ascent - m.Descent),
	}
}

// ShapeAndRasterize implements Provider. The whole run is shaped once;
// line breaking then walks the shaped glyphs and breaks at the last
// space cluster that fits, so breaks never split a ligature.
func (p *GoTextProvider) ShapeAndRasterize(req Request) (*GlyphBatch, error) {
	if req.Text == "" || req.SizePx <= 0 {
		return &GlyphBatch{}, nil
	}

	runes := []rune(req.Text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gtfont.NewFace(p.gtFont),
		Size:      fixed.Int26_6(req.SizePx * 64),
		Script:    detectScript(runes),
		Language:  p.lang,
	}

	shaper := p.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := shaper.Shape(input)
	p.shaperPool.Put(shaper)

	face, err := p.newRasterFace(req.SizePx)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	metrics := p.Metrics(req.SizePx)
	lineHeight := metrics.Height()
	if lineHeight <= 0 {
		lineHeight = req.SizePx * 1.2
	}

	batch := &GlyphBatch{Lines: 1}
	var penX, penY float32
	lineStart := 0 // index into batch.Glyphs of the current line
	lastSpace := -1
	var lastSpacePen float32

	for _, g := range output.Glyphs {
		cluster := g.TextIndex()
		var r rune
		if cluster >= 0 && cluster < len(runes) {
			r = runes[cluster]
		}

		adv := fixedToFloat(g.XAdvance)
		if r == '\n' {
			penX = 0
			penY += lineHeight
			batch.Lines++
			lineStart = len(batch.Glyphs)
			lastSpace = -1
			continue
		}

		if req.MaxWidth > 0 && penX+adv > req.MaxWidth && lastSpace >= lineStart {
			// Move everything after the last space down a line.
			shift := lastSpacePen
			penY += lineHeight
			batch.Lines++
			for i := lastSpace; i < len(batch.Glyphs); i++ {
				batch.Glyphs[i].Offset.X -= shift
				batch.Glyphs[i].Offset.Y += lineHeight
			}
			penX -= shift
			lineStart = lastSpace
			lastSpace = -1
		}

		if r == ' ' {
			lastSpace = len(batch.Glyphs)
			lastSpacePen = penX + adv
			penX += adv
			continue
		}

		gx := penX + fixedToFloat(g.XOffset)
		gy := penY - fixedToFloat(g.YOffset)
		mask, offset := p.rasterizeRune(face, r, req.SizePx)
		if mask != nil {
			pg := PositionedGlyph{
				Mask:   mask,
				Offset: lumen.Point{X: gx + offset.X, Y: gy + offset.Y},
				Color:  req.Color,
			}
			batch.Glyphs = append(batch.Glyphs, pg)
		}
		penX += adv
	}

	batch.Advance = penX
	// Bounds come last: line breaking shifts already-placed glyphs.
	for i := range batch.Glyphs {
		g := &batch.Glyphs[i]
		box := lumen.Rect{
			X: g.Offset.X, Y: g.Offset.Y,
			W: float32(g.Mask.W), H: float32(g.Mask.H),
		}
		if i == 0 {
			batch.Bounds = box
		} else {
			batch.Bounds = unionRect(batch.Bounds, box)
		}
	}
	return batch, nil
}

// rasterizeRune returns the A8 mask for a rune and the mask's offset
// from the pen position. Masks are cached per rune and size.
func (p *GoTextProvider) rasterizeRune(face xfont.Face, r rune, sizePx float32) (*GlyphMask, lumen.Point) {
	if r == 0 || r == ' ' {
		return nil, lumen.Point{}
	}
	key := maskKey{r: r, sizePx: uint32(sizePx * 64)}

	p.maskMu.Lock()
	if c, ok := p.maskCache[key]; ok {
		p.maskMu.Unlock()
		return c.mask, c.offset
	}
	p.maskMu.Unlock()

	dr, maskImg, maskp, _, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok || dr.Empty() {
		return nil, lumen.Point{}
	}

	w := dr.Dx()
	h := dr.Dy()
	m := &GlyphMask{W: w, H: h, Format: MaskA8, Pix: make([]uint8, w*h)}
	alpha, _ := maskImg.(*image.Alpha)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if alpha != nil {
				m.Pix[y*w+x] = alpha.AlphaAt(maskp.X+x, maskp.Y+y).A
			} else {
				_, _, _, a := maskImg.At(maskp.X+x, maskp.Y+y).RGBA()
				m.Pix[y*w+x] = uint8(a >> 8)
			}
		}
	}

	offset := lumen.Point{X: float32(dr.Min.X), Y: float32(dr.Min.Y)}
	p.maskMu.Lock()
	p.maskCache[key] = cachedMask{mask: m, offset: offset}
	p.maskMu.Unlock()
	return m, offset
}

func (p *GoTextProvider) newRasterFace(sizePx float32) (xfont.Face, error) {
	face, err := opentype.NewFace(p.otFont, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("lumen/text: face at %gpx: %w", sizePx, err)
	}
	return face, nil
}

// detectScript returns the script of the first non-space rune. Mixed
// scripts should be split into runs upstream.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func unionRect(a, b lumen.Rect) lumen.Rect {
	x0 := minf(a.X, b.X)
	y0 := minf(a.Y, b.Y)
	x1 := maxf(a.MaxX(), b.MaxX())
	y1 := maxf(a.MaxY(), b.MaxY())
	return lumen.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
