// Command nesgl is an OpenGL/GLFW + PortAudio host for the console
// package, generalized from the teacher's ui/ui.go and ui/audio.go to
// the new Console API (Frame/OnFrame/OnAudioSample instead of a single
// CPU.Do()/PPU.Do() pump loop).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"
	"github.com/gordonklaus/portaudio"

	"nespkg.dev/coreboard/console"
	"nespkg.dev/coreboard/console/ppu"
)

var (
	romPath    = flag.String("rom", "", "path to an iNES ROM file")
	sampleRate = flag.Int("sample_rate", 44100, "audio sample rate in Hz")
	frameRate  = flag.Int("frame_rate", 60, "target frame rate")
)

const (
	vertexShader = `
#version 330
attribute vec3 position;
attribute vec2 uv;
varying vec2 vuv;
void main(void){
  gl_Position = vec4(position, 1.0);
  vuv = uv;
}
` + "\x00"

	fragmentShader = `
#version 330
varying vec2 vuv;
uniform sampler2D tex;
void main(void){
  gl_FragColor = texture2D(tex, vuv);
}
` + "\x00"
)

var vertexPosition = []float32{1, 1, -1, 1, -1, -1, 1, -1}
var vertexUV = []float32{1, 0, 0, 0, 0, 1, 1, 1}

func compileShader(code string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	ccode := gl.Str(code)
	gl.ShaderSource(shader, 1, &ccode, nil)
	gl.CompileShader(shader)
	var result int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &result)
	if result == gl.FALSE {
		var length int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length+1))
		gl.GetShaderInfoLog(shader, length, nil, gl.Str(log))
		return 0, fmt.Errorf("compile shader: %s", log)
	}
	return shader, nil
}

func newProgram() (uint32, error) {
	vs, err := compileShader(vertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	var result int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &result)
	if result == gl.FALSE {
		var length int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length+1))
		gl.GetProgramInfoLog(program, length, nil, gl.Str(log))
		return 0, fmt.Errorf("link program: %s", log)
	}
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	return program, nil
}

func uploadFrame(program uint32, frame [ppu.Height][ppu.Width]uint32) {
	pix := make([]byte, ppu.Width*ppu.Height*4)
	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			v := frame[y][x]
			i := (y*ppu.Width + x) * 4
			pix[i] = byte(v >> 16)
			pix[i+1] = byte(v >> 8)
			pix[i+2] = byte(v)
			pix[i+3] = 0xFF
		}
	}
	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D, textureID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, ppu.Width, ppu.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	positionLocation := uint32(gl.GetAttribLocation(program, gl.Str("position\x00")))
	uvLocation := uint32(gl.GetAttribLocation(program, gl.Str("uv\x00")))
	texLocation := gl.GetUniformLocation(program, gl.Str("tex\x00"))
	gl.EnableVertexAttribArray(positionLocation)
	gl.EnableVertexAttribArray(uvLocation)
	gl.Uniform1i(texLocation, 0)
	gl.VertexAttribPointer(positionLocation, 2, gl.FLOAT, false, 0, gl.Ptr(vertexPosition))
	gl.VertexAttribPointer(uvLocation, 2, gl.FLOAT, false, 0, gl.Ptr(vertexUV))
	gl.DrawArrays(gl.TRIANGLE_FAN, 0, 4)
	gl.DeleteTextures(1, &textureID)
}

func keysToButtons(window *glfw.Window) [8]bool {
	var b [8]bool
	b[console.ButtonRight] = window.GetKey(glfw.KeyD) == glfw.Press
	b[console.ButtonLeft] = window.GetKey(glfw.KeyA) == glfw.Press
	b[console.ButtonDown] = window.GetKey(glfw.KeyS) == glfw.Press
	b[console.ButtonUp] = window.GetKey(glfw.KeyW) == glfw.Press
	b[console.ButtonStart] = window.GetKey(glfw.KeyG) == glfw.Press
	b[console.ButtonSelect] = window.GetKey(glfw.KeyF) == glfw.Press
	b[console.ButtonB] = window.GetKey(glfw.KeyH) == glfw.Press
	b[console.ButtonA] = window.GetKey(glfw.KeyJ) == glfw.Press
	return b
}

func main() {
	flag.Parse()
	if *romPath == "" {
		glog.Exit("nesgl: -rom is required")
	}
	data, err := os.ReadFile(*romPath)
	if err != nil {
		glog.Exitf("nesgl: reading ROM: %v", err)
	}

	audioChan := make(chan float32, *sampleRate)

	if err := glfw.Init(); err != nil {
		glog.Exitf("nesgl: glfw init: %v", err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	window, err := glfw.CreateWindow(512, 480, "coreboard", nil, nil)
	if err != nil {
		glog.Exitf("nesgl: creating window: %v", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glog.Exitf("nesgl: gl init: %v", err)
	}
	program, err := newProgram()
	if err != nil {
		glog.Exitf("nesgl: %v", err)
	}
	gl.UseProgram(program)

	opts := console.Options{
		SampleRate:         *sampleRate,
		PreferredFrameRate: *frameRate,
		EmulateSound:       true,
		OnFrame: func(frame [ppu.Height][ppu.Width]uint32) {
			uploadFrame(program, frame)
		},
		OnAudioSample: func(l, r float32) {
			select {
			case audioChan <- (l + r) / 2:
			default:
			}
		},
		OnStatusUpdate: func(msg string) { glog.Info(msg) },
	}

	nc, err := console.New(opts)
	if err != nil {
		glog.Exitf("nesgl: %v", err)
	}
	if err := nc.LoadROM(data); err != nil {
		glog.Exitf("nesgl: %v", err)
	}

	if err := portaudio.Initialize(); err != nil {
		glog.Warningf("nesgl: audio disabled: %v", err)
	} else {
		defer portaudio.Terminate()
		stream, err := portaudio.OpenDefaultStream(0, 2, float64(*sampleRate), 0, func(out []float32) {
			for i := range out {
				select {
				case s := <-audioChan:
					out[i] = s * 0.5
				default:
					out[i] = 0
				}
			}
		})
		if err == nil {
			stream.Start()
			defer stream.Close()
		}
	}

	ctx := context.Background()
	for !window.ShouldClose() {
		if err := nc.Frame(ctx); err != nil {
			glog.Errorf("nesgl: frame: %v", err)
			break
		}
		buttons := keysToButtons(window)
		for b := console.ButtonA; b <= console.ButtonRight; b++ {
			if buttons[b] {
				nc.ButtonDown(0, b)
			} else {
				nc.ButtonUp(0, b)
			}
		}
		window.SwapBuffers()
		glfw.PollEvents()
		time.Sleep(time.Second / time.Duration(*frameRate))
	}
}
