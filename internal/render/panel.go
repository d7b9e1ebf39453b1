package render

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/telegauge/telegauge/internal/arbiter"
)

// Panel renders frames to a tcell terminal screen. Key events arrive on
// tcell's own goroutine and are reduced to the two callbacks, mirroring the
// interrupt model of the hardware button: the handlers must only set flags.
type Panel struct {
	screen tcell.Screen

	onButton func()
	onQuit   func()
}

var (
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCPU    = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleGPU    = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleRAM    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleFPS    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleAlert  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleOrange = tcell.StyleDefault.Foreground(tcell.ColorOrange)
)

// NewPanel initializes the terminal screen and starts the input pump.
// onButton corresponds to the hardware page button, onQuit to shutdown.
func NewPanel(onButton, onQuit func()) (*Panel, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.HideCursor()

	p := &Panel{
		screen:   screen,
		onButton: onButton,
		onQuit:   onQuit,
	}
	go p.inputPump()

	return p, nil
}

// Close restores the terminal.
func (p *Panel) Close() {
	p.screen.Fini()
}

// inputPump translates key events into the button/quit callbacks.
func (p *Panel) inputPump() {
	for {
		ev := p.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
				p.onQuit()
			case ev.Key() == tcell.KeyTab || ev.Rune() == ' ' || ev.Rune() == 'b':
				p.onButton()
			}
		case *tcell.EventResize:
			p.screen.Sync()
		case nil:
			// Fini was called
			return
		}
	}
}

// Render draws one frame for the active mode.
func (p *Panel) Render(f Frame) {
	p.screen.Clear()

	switch f.Mode {
	case arbiter.Boot:
		p.drawBoot(f)
	case arbiter.Provisioning:
		p.drawProvisioning(f)
	case arbiter.Offline:
		p.drawOffline(f)
	case arbiter.Gaming:
		p.drawTelemetryPage(f, f.Page)
	default: // idle
		if f.HaveTelemetry && f.LinkFresh {
			p.drawTelemetryPage(f, f.Page)
		} else {
			p.drawAmbient(f)
		}
	}

	p.screen.Show()
}

func (p *Panel) drawBoot(f Frame) {
	w, h := p.screen.Size()
	p.drawCentered(h/2-1, w, "TELEGAUGE", styleText.Bold(true))
	p.drawCentered(h/2+1, w, "starting...", styleDim)
}

func (p *Panel) drawProvisioning(f Frame) {
	w, h := p.screen.Size()
	p.drawCentered(h/2-2, w, "SETUP REQUIRED", styleOrange.Bold(true))
	p.drawCentered(h/2, w, "no network identity is stored", styleText)
	p.drawCentered(h/2+1, w, "run: telegauge --db-set-identity <name>", styleDim)
}

func (p *Panel) drawOffline(f Frame) {
	w, h := p.screen.Size()
	p.drawCentered(h/2-2, w, "HOST OFFLINE", styleAlert.Bold(true))
	p.drawCentered(h/2, w, "waiting for serial data...", styleDim)

	if f.HaveTelemetry {
		age := humanize.RelTime(f.Now.Add(-f.TelemetryAge), f.Now, "ago", "")
		p.drawCentered(h/2+1, w, "last sample "+age, styleDim)
	}
}

func (p *Panel) drawAmbient(f Frame) {
	w, h := p.screen.Size()
	p.drawCentered(h/2-2, w, f.TimeText, styleText.Bold(true))
	if f.DateText != "" {
		p.drawCentered(h/2, w, f.DateText, styleDim)
	}

	if f.Weather.Valid {
		caption := fmt.Sprintf("%d°C  %s", f.Weather.TemperatureC, conditionText(f.Weather.ConditionCode))
		p.drawCentered(h/2+2, w, caption, styleText)
	}
}

func (p *Panel) drawTelemetryPage(f Frame, page int) {
	switch page {
	case PageThermals:
		p.drawThermals(f)
	case PageGaming:
		p.drawGaming(f)
	default:
		p.drawDashboard(f)
	}

	p.drawHeader(f)
	p.drawPageIndicator(page)
}

func (p *Panel) drawHeader(f Frame) {
	w, _ := p.screen.Size()

	p.drawText(1, 0, styleCPU.Bold(true), "HW")
	p.drawText(4, 0, styleGPU.Bold(true), "MON")

	p.drawText(w-8, 0, styleText, f.TimeText)

	// Pulsing link dot, solid while fresh
	dot := styleDim
	if f.LinkFresh && f.Now.UnixMilli()/500%2 == 0 {
		dot = styleRAM
	}
	p.drawText(w-2, 0, dot, "●")

	// The separator doubles as the overheat warning strip
	sep := styleDim
	if f.HotTemp {
		sep = styleAlert
	}
	for x := 0; x < w; x++ {
		p.screen.SetContent(x, 1, tcell.RuneHLine, nil, sep)
	}
}

func (p *Panel) drawDashboard(f Frame) {
	t := f.Telemetry
	p.drawMetric(3, "CPU", t.CPU, "%", styleCPU)
	p.drawMetric(5, "GPU", t.GPU, "%", styleGPU)
	p.drawMetric(7, "RAM", t.RAM, "%", styleRAM)

	if t.FPS > 0 {
		p.drawText(2, 9, styleFPS, fmt.Sprintf("FPS %4d", t.FPS))
	} else {
		p.drawText(2, 9, styleDim, "FPS  ---")
	}
}

func (p *Panel) drawThermals(f Frame) {
	t := f.Telemetry
	p.drawMetric(3, "CPU T", t.CPUTemp, "C", styleCPU)
	p.drawMetric(5, "GPU T", t.GPUTemp, "C", styleGPU)

	p.drawText(2, 7, styleCPU, "CPU CLK")
	p.drawText(12, 7, styleText, fmt.Sprintf("%4d MHz", t.CPUClock))
	p.drawText(2, 8, styleGPU, "GPU CLK")
	p.drawText(12, 8, styleText, fmt.Sprintf("%4d MHz", t.GPUClock))
}

func (p *Panel) drawGaming(f Frame) {
	t := f.Telemetry
	w, h := p.screen.Size()

	if t.FPS > 0 {
		p.drawCentered(h/2-1, w, fmt.Sprintf("%d", t.FPS), styleFPS.Bold(true))
		p.drawCentered(h/2+1, w, "FPS", styleDim)
	} else {
		p.drawCentered(h/2-1, w, "---", styleDim.Bold(true))
		p.drawCentered(h/2+1, w, "no frame counter detected", styleDim)
	}

	cpu := fmt.Sprintf("CPU %d°C", t.CPUTemp)
	gpu := fmt.Sprintf("GPU %d°C", t.GPUTemp)
	p.drawText(2, h-2, tempStyle(t.CPUTemp, styleCPU), cpu)
	p.drawText(w-2-len([]rune(gpu)), h-2, tempStyle(t.GPUTemp, styleGPU), gpu)
}

// drawMetric renders one labeled value with a proportional bar, values
// above 90 get an alert accent.
func (p *Panel) drawMetric(y int, label string, value int, unit string, style tcell.Style) {
	w, _ := p.screen.Size()

	p.drawText(2, y, style, fmt.Sprintf("%-6s", label))

	barX := 9
	barW := w - barX - 9
	if barW < 4 {
		barW = 4
	}

	fill := value * barW / 100
	if fill > barW {
		fill = barW
	}
	for x := 0; x < barW; x++ {
		r := '░'
		st := styleDim
		if x < fill {
			r = '█'
			st = style
		}
		p.screen.SetContent(barX+x, y, r, nil, st)
	}

	valStyle := styleText
	if value > 90 {
		valStyle = styleAlert
	}
	p.drawText(barX+barW+1, y, valStyle, fmt.Sprintf("%3d%s", value, unit))
}

func (p *Panel) drawPageIndicator(page int) {
	w, h := p.screen.Size()
	x := w - 2*PageCount - 1
	for i := 0; i < PageCount; i++ {
		style := styleDim
		r := '○'
		if i == page {
			style = styleText
			r = '●'
		}
		p.screen.SetContent(x+2*i, h-1, r, nil, style)
	}
}

func (p *Panel) drawText(x, y int, style tcell.Style, s string) {
	for i, r := range []rune(s) {
		p.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (p *Panel) drawCentered(y, width int, s string, style tcell.Style) {
	x := (width - len([]rune(s))) / 2
	if x < 0 {
		x = 0
	}
	p.drawText(x, y, style, s)
}

func tempStyle(temp int, base tcell.Style) tcell.Style {
	if temp > 80 {
		return styleAlert
	}
	return base
}

// conditionText maps WMO weather interpretation codes to a short caption.
func conditionText(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "cloudy"
	case code <= 48:
		return "fog"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "showers"
	case code <= 86:
		return "snow showers"
	case code <= 99:
		return "thunderstorm"
	default:
		log.Debug().Int("code", code).Msg("Unknown weather code")
		return ""
	}
}
