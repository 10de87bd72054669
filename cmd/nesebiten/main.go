// Command nesebiten is a second host front end for the console package,
// built on ebiten instead of GLFW+OpenGL, to demonstrate that nothing
// in console.Console is tied to a particular video/audio backend.
// Grounded on RNG999-gones's internal/graphics ebitengine backend
// (frame-buffer-to-image conversion, key-to-button mapping, Update/
// Draw/Layout loop), adapted to drive console.Console directly instead
// of that repo's Backend/Window abstraction.
package main

import (
	"context"
	"flag"
	"image"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/golang/glog"

	"nespkg.dev/coreboard/console"
	"nespkg.dev/coreboard/console/ppu"
)

var romPath = flag.String("rom", "", "path to an iNES ROM file")

const sampleRate = 44100

type game struct {
	nc     *console.Console
	frame  *ebiten.Image
	buf    *image.RGBA
	player *audio.Player
	ctx    context.Context
}

var keyButtons = map[ebiten.Key]console.Button{
	ebiten.KeyW:     console.ButtonUp,
	ebiten.KeyS:     console.ButtonDown,
	ebiten.KeyA:     console.ButtonLeft,
	ebiten.KeyD:     console.ButtonRight,
	ebiten.KeyJ:     console.ButtonA,
	ebiten.KeyK:     console.ButtonB,
	ebiten.KeyG:     console.ButtonSelect,
	ebiten.KeyEnter: console.ButtonStart,
}

func (g *game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	for k, b := range keyButtons {
		if ebiten.IsKeyPressed(k) {
			g.nc.ButtonDown(0, b)
		} else {
			g.nc.ButtonUp(0, b)
		}
	}
	return g.nc.Frame(g.ctx)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	g.frame.ReplacePixels(g.buf.Pix)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(2, 2)
	screen.DrawImage(g.frame, op)
	ebitenutil.DebugPrint(screen, "WASD move, J/K A/B, G select, Enter start, Esc quit")
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.Width * 2, ppu.Height * 2
}

// ringBuffer feeds OnAudioSample output to ebiten's audio.Player through
// an io.Reader, since ebiten's audio API is pull-based rather than
// callback-based like PortAudio.
type ringBuffer struct {
	samples chan float32
}

func (r *ringBuffer) push(l, _ float32) {
	select {
	case r.samples <- l:
	default:
	}
}

func (r *ringBuffer) Read(p []byte) (int, error) {
	n := 0
	for n+4 <= len(p) {
		var s float32
		select {
		case s = <-r.samples:
		default:
			s = 0
		}
		v := int16(s * 32767)
		p[n] = byte(v)
		p[n+1] = byte(v >> 8)
		p[n+2] = byte(v)
		p[n+3] = byte(v >> 8)
		n += 4
	}
	return n, nil
}

func main() {
	flag.Parse()
	if *romPath == "" {
		glog.Exit("nesebiten: -rom is required")
	}
	data, err := os.ReadFile(*romPath)
	if err != nil {
		glog.Exitf("nesebiten: reading ROM: %v", err)
	}

	buf := image.NewRGBA(image.Rect(0, 0, ppu.Width, ppu.Height))
	rb := &ringBuffer{samples: make(chan float32, sampleRate)}

	opts := console.Options{
		SampleRate:         sampleRate,
		PreferredFrameRate: 60,
		EmulateSound:       true,
		OnFrame: func(f [ppu.Height][ppu.Width]uint32) {
			for y := 0; y < ppu.Height; y++ {
				for x := 0; x < ppu.Width; x++ {
					v := f[y][x]
					buf.SetRGBA(x, y, color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255})
				}
			}
		},
		OnAudioSample:  rb.push,
		OnStatusUpdate: func(msg string) { glog.Info(msg) },
	}

	nc, err := console.New(opts)
	if err != nil {
		glog.Exitf("nesebiten: %v", err)
	}
	if err := nc.LoadROM(data); err != nil {
		glog.Exitf("nesebiten: %v", err)
	}

	audioCtx := audio.NewContext(sampleRate)
	player, err := audioCtx.NewPlayer(rb)
	if err != nil {
		glog.Warningf("nesebiten: audio disabled: %v", err)
	} else {
		player.Play()
	}

	g := &game{nc: nc, frame: ebiten.NewImage(ppu.Width, ppu.Height), buf: buf, player: player, ctx: context.Background()}
	ebiten.SetWindowSize(ppu.Width*2, ppu.Height*2)
	ebiten.SetWindowTitle("coreboard")
	if err := ebiten.RunGame(g); err != nil {
		glog.Exitf("nesebiten: %v", err)
	}
}
