package pricechart

// Hourly electricity price chart.
// today is a solid line, tomorrow a dashed line, the current price a marker.
// The PNG is replaced atomically on every render so readers never see a partial file.

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"elpris/internal/clients_api/tibber"
	"elpris/internal/infra/fs"
	logging "elpris/internal/infra/log"

	"github.com/fogleman/gg"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/image/font"
)

const (
	figureWidthIn  = 8.0
	figureHeightIn = 6.0
	aspectRatio    = 0.75 // axes box height / width

	xMin = 0.0
	xMax = 23.0

	paddingPt          = 10.0
	tickLengthPt       = 3.5
	tickPadPt          = 3.5
	labelPadPt         = 4.0
	titlePadPt         = 6.0
	annotationOffsetPt = 20.0

	lineWidthPt  = 1.5
	gridWidthPt  = 0.8
	spineWidthPt = 0.8
	markerSizePt = 8.0 // diameter

	gridColor = "#a3a3a3"

	lastUpdatedLayout = "20060102 15:04:05"
)

var (
	errEmptyCurrent = errors.New("current price series is empty")
	errEmptyToday   = errors.New("today price series is empty")
)

// RenderError is any failure to produce the chart image.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render chart: %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Options configures a Renderer.
type Options struct {
	OutputPath string
	HTMLPath   string // optional interactive copy
	DPI        int
	FontPath   string
	Location   *time.Location
	Now        func() time.Time
}

// RenderResult describes one successful render.
type RenderResult struct {
	Written   bool
	NewMaxY   decimal.Decimal // store as RenderState.PreviousMaxY
	YUpper    decimal.Decimal
	Path      string
	HTMLPath  string
	SizeBytes int64
}

// Renderer draws price charts.
type Renderer struct {
	opts  Options
	fonts *fontSet
}

// NewRenderer loads fonts once; they are reused for every render.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if opts.DPI <= 0 {
		opts.DPI = 125
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	fonts, err := loadFonts(opts.FontPath, opts.DPI)
	if err != nil {
		return nil, err
	}
	return &Renderer{opts: opts, fonts: fonts}, nil
}

// Render draws info with the axis ceiling derived from state and writes the image.
func (r *Renderer) Render(info *tibber.PriceInfo, state RenderState) (RenderResult, error) {
	if info == nil || len(info.Current) == 0 {
		return RenderResult{}, &RenderError{Op: "validate", Err: errEmptyCurrent}
	}
	if len(info.Today) == 0 {
		return RenderResult{}, &RenderError{Op: "validate", Err: errEmptyToday}
	}

	maxY, upper, err := AxisCeiling(info.Today, info.Tomorrow, state)
	if err != nil {
		return RenderResult{}, err
	}

	now := r.opts.Now().In(r.opts.Location)
	dc := r.draw(info, upper, now)

	if err := fs.WriteAtomic(r.opts.OutputPath, dc.EncodePNG); err != nil {
		logging.LogError("Failed to write price chart", zap.String("filename", r.opts.OutputPath), zap.Error(err))
		return RenderResult{}, &RenderError{Op: "write", Err: err}
	}

	fileInfo, err := fs.Stat(r.opts.OutputPath)
	if err != nil {
		return RenderResult{}, &RenderError{Op: "stat", Err: err}
	}

	result := RenderResult{
		Written:   true,
		NewMaxY:   maxY,
		YUpper:    upper,
		Path:      r.opts.OutputPath,
		SizeBytes: fileInfo.SizeBytes,
	}

	if r.opts.HTMLPath != "" {
		if err := writeHTML(r.opts.HTMLPath, info, upper, now); err != nil {
			return result, &RenderError{Op: "write html", Err: err}
		}
		result.HTMLPath = r.opts.HTMLPath
	}

	logging.LogInfo("Price chart generated successfully",
		zap.String("filename", result.Path),
		zap.Int64("fileSize", result.SizeBytes),
		zap.String("maxY", maxY.String()),
		zap.String("yUpper", upper.String()),
		zap.Int("tomorrowPoints", len(info.Tomorrow)))

	return result, nil
}

// chartTitle shows the current price with at most two decimals and at least one.
func chartTitle(current decimal.Decimal) string {
	s := current.Round(2).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return "Elpris (Now: " + s + "Kr)"
}

func lastUpdatedText(now time.Time) string {
	return "Last updated on " + now.Format(lastUpdatedLayout)
}

type rect struct {
	X, Y, W, H float64
}

func (r rect) Right() float64  { return r.X + r.W }
func (r rect) Bottom() float64 { return r.Y + r.H }

func (r rect) contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

type layout struct {
	Width, Height int
	Box           rect // axes area
}

// computeLayout reserves room for title, labels and annotation, then fits the
// largest axes box with height = aspectRatio * width, centered in what is left.
func computeLayout(dpi int, yLabelWidth, xLastLabelWidth float64) layout {
	px := func(pt float64) float64 { return ptToPx(pt, dpi) }

	width := int(figureWidthIn*float64(dpi) + 0.5)
	height := int(figureHeightIn*float64(dpi) + 0.5)

	xTickBlock := tickLengthPt + tickPadPt + tickFontPt
	xLabelBlock := xTickBlock + labelPadPt + labelFontPt
	annotationBlock := annotationOffsetPt + annotationFontPt
	bottomBlock := xLabelBlock
	if annotationBlock > bottomBlock {
		bottomBlock = annotationBlock
	}

	top := px(paddingPt + titleFontPt + titlePadPt)
	bottom := px(paddingPt + bottomBlock)
	left := px(paddingPt+labelFontPt+labelPadPt+tickPadPt+tickLengthPt) + yLabelWidth
	right := px(paddingPt) + xLastLabelWidth/2

	availW := float64(width) - left - right
	availH := float64(height) - top - bottom

	boxW := availW
	boxH := boxW * aspectRatio
	if boxH > availH {
		boxH = availH
		boxW = boxH / aspectRatio
	}

	return layout{
		Width:  width,
		Height: height,
		Box: rect{
			X: left + (availW-boxW)/2,
			Y: top + (availH-boxH)/2,
			W: boxW,
			H: boxH,
		},
	}
}

func textWidth(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

func (r *Renderer) draw(info *tibber.PriceInfo, upper decimal.Decimal, now time.Time) *gg.Context {
	dpi := r.opts.DPI
	px := func(pt float64) float64 { return ptToPx(pt, dpi) }

	upperF := upper.InexactFloat64()
	ticks := yTicks(upperF)
	yLabels := make([]string, len(ticks))
	yLabelWidth := 0.0
	for i, v := range ticks {
		yLabels[i] = formatYTick(v)
		if w := textWidth(r.fonts.tick, yLabels[i]); w > yLabelWidth {
			yLabelWidth = w
		}
	}

	lay := computeLayout(dpi, yLabelWidth, textWidth(r.fonts.tick, strconv.Itoa(int(xMax))))
	box := lay.Box

	xAt := func(hour float64) float64 { return box.X + (hour-xMin)/(xMax-xMin)*box.W }
	yAt := func(v float64) float64 { return box.Bottom() - v/upperF*box.H }

	dc := gg.NewContext(lay.Width, lay.Height)
	dc.SetColor(color.White)
	dc.Clear()

	// Vertical grid on every hour.
	dc.SetHexColor(gridColor)
	dc.SetLineWidth(px(gridWidthPt))
	for h := int(xMin); h <= int(xMax); h++ {
		x := xAt(float64(h))
		dc.DrawLine(x, box.Y, x, box.Bottom())
		dc.Stroke()
	}

	// Data, clipped to the axes.
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	dc.Clip()

	dc.SetColor(color.Black)
	dc.SetLineWidth(px(lineWidthPt))
	drawSeries(dc, info.Today, xAt, yAt)
	dc.Stroke()

	if len(info.Tomorrow) > 0 {
		dc.SetDash(dashPattern(px(lineWidthPt))...)
		drawSeries(dc, info.Tomorrow, xAt, yAt)
		dc.Stroke()
		dc.SetDash()
	}

	current := info.Current[0]
	dc.DrawCircle(xAt(float64(current.Hour)), yAt(current.Total.InexactFloat64()), px(markerSizePt)/2)
	dc.Fill()

	dc.ResetClip()

	// Spines.
	dc.SetColor(color.Black)
	dc.SetLineWidth(px(spineWidthPt))
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	dc.Stroke()

	// X ticks 0..23.
	dc.SetFontFace(r.fonts.tick)
	for h := int(xMin); h <= int(xMax); h++ {
		x := xAt(float64(h))
		dc.DrawLine(x, box.Bottom(), x, box.Bottom()+px(tickLengthPt))
		dc.Stroke()
		dc.DrawStringAnchored(strconv.Itoa(h), x, box.Bottom()+px(tickLengthPt+tickPadPt), 0.5, 1)
	}

	// Y ticks.
	for i, v := range ticks {
		y := yAt(v)
		dc.DrawLine(box.X-px(tickLengthPt), y, box.X, y)
		dc.Stroke()
		dc.DrawStringAnchored(yLabels[i], box.X-px(tickLengthPt+tickPadPt), y, 1, 0.5)
	}

	// Axis labels.
	dc.SetFontFace(r.fonts.label)
	dc.DrawStringAnchored("Hour", box.X+box.W/2, box.Bottom()+px(tickLengthPt+tickPadPt+tickFontPt+labelPadPt), 0.5, 1)

	yLabelX := box.X - px(tickLengthPt+tickPadPt+labelPadPt) - yLabelWidth - px(labelFontPt)/2
	yLabelY := box.Y + box.H/2
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), yLabelX, yLabelY)
	dc.DrawStringAnchored("Kr / kWh", yLabelX, yLabelY, 0.5, 0.5)
	dc.Pop()

	// Title.
	dc.SetFontFace(r.fonts.title)
	dc.DrawStringAnchored(chartTitle(current.Total), box.X+box.W/2, box.Y-px(titlePadPt), 0.5, 0)

	// Annotation below the axes, left aligned.
	dc.SetFontFace(r.fonts.annotation)
	dc.DrawStringAnchored(lastUpdatedText(now), box.X, box.Bottom()+px(annotationOffsetPt), 0, 1)

	r.drawLegend(dc, info, box, xAt, yAt)

	return dc
}

func drawSeries(dc *gg.Context, series tibber.PriceSeries, xAt, yAt func(float64) float64) {
	for i, p := range series {
		x, y := xAt(float64(p.Hour)), yAt(p.Total.InexactFloat64())
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
}

// dashPattern scales the classic "dashed" style to the line width.
func dashPattern(lineWidth float64) []float64 {
	return []float64{3.7 * lineWidth, 1.6 * lineWidth}
}

type legendEntry struct {
	label  string
	dashed bool
}

// Legend metrics in points.
const (
	legendBorderPad   = 4.0
	legendHandleLen   = 20.0
	legendTextPad     = 8.0
	legendLabelSpace  = 5.0
	legendBorderAxPad = 5.0
)

func (r *Renderer) drawLegend(dc *gg.Context, info *tibber.PriceInfo, box rect, xAt, yAt func(float64) float64) {
	px := func(pt float64) float64 { return ptToPx(pt, r.opts.DPI) }

	entries := []legendEntry{{label: "today"}}
	if len(info.Tomorrow) > 0 {
		entries = append(entries, legendEntry{label: "tomorrow", dashed: true})
	}

	maxText := 0.0
	for _, e := range entries {
		if w := textWidth(r.fonts.legend, e.label); w > maxText {
			maxText = w
		}
	}
	rowH := px(legendFontPt)
	n := float64(len(entries))
	w := px(2*legendBorderPad+legendHandleLen+legendTextPad) + maxText
	h := px(2*legendBorderPad) + n*rowH + (n-1)*px(legendLabelSpace)

	var points [][2]float64
	for _, s := range []tibber.PriceSeries{info.Today, info.Tomorrow, info.Current} {
		for _, p := range s {
			points = append(points, [2]float64{xAt(float64(p.Hour)), yAt(p.Total.InexactFloat64())})
		}
	}
	frame := bestLegendRect(box, w, h, px(legendBorderAxPad), points)

	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawRoundedRectangle(frame.X, frame.Y, frame.W, frame.H, px(2))
	dc.FillPreserve()
	dc.SetRGB(0.8, 0.8, 0.8)
	dc.SetLineWidth(px(spineWidthPt))
	dc.Stroke()

	dc.SetFontFace(r.fonts.legend)
	dc.SetColor(color.Black)
	for i, e := range entries {
		cy := frame.Y + px(legendBorderPad) + rowH*(float64(i)+0.5) + float64(i)*px(legendLabelSpace)
		x0 := frame.X + px(legendBorderPad)
		dc.SetLineWidth(px(lineWidthPt))
		if e.dashed {
			dc.SetDash(dashPattern(px(lineWidthPt))...)
		}
		dc.DrawLine(x0, cy, x0+px(legendHandleLen), cy)
		dc.Stroke()
		dc.SetDash()
		dc.DrawStringAnchored(e.label, x0+px(legendHandleLen+legendTextPad), cy, 0, 0.5)
	}
}

// bestLegendRect tries upper right, upper left, lower left and lower right in
// that order and keeps the first corner covering the fewest data points.
func bestLegendRect(box rect, w, h, pad float64, points [][2]float64) rect {
	candidates := []rect{
		{X: box.Right() - pad - w, Y: box.Y + pad, W: w, H: h},
		{X: box.X + pad, Y: box.Y + pad, W: w, H: h},
		{X: box.X + pad, Y: box.Bottom() - pad - h, W: w, H: h},
		{X: box.Right() - pad - w, Y: box.Bottom() - pad - h, W: w, H: h},
	}

	best, bestHits := candidates[0], -1
	for _, c := range candidates {
		hits := 0
		for _, p := range points {
			if c.contains(p[0], p[1]) {
				hits++
			}
		}
		if bestHits < 0 || hits < bestHits {
			best, bestHits = c, hits
		}
	}
	return best
}
