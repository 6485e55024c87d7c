package trapeze

import (
	"errors"
	"fmt"
	"image"
)

var errOutOfMemory = errors.New("out of memory")

// fakeDevice is an in-memory Device. failAfter >= 0 makes every
// allocation after the first failAfter ones fail.
type fakeDevice struct {
	buffers   []*fakeBuffer
	textures  []*fakeTexture
	failAfter int
}

func newFakeDevice() *fakeDevice { return &fakeDevice{failAfter: -1} }

func (d *fakeDevice) allocate() error {
	if d.failAfter >= 0 && len(d.buffers)+len(d.textures) >= d.failAfter {
		return errOutOfMemory
	}
	return nil
}

func (d *fakeDevice) NewBuffer(label string, size uint64, usage BufferUsage) (Buffer, error) {
	if err := d.allocate(); err != nil {
		return nil, err
	}
	b := &fakeBuffer{label: label, data: make([]byte, size), usage: usage}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) NewBufferWithData(label string, data []byte, usage BufferUsage) (Buffer, error) {
	buf, err := d.NewBuffer(label, uint64(len(data)), usage)
	if err != nil {
		return nil, err
	}
	buf.Write(0, data)
	return buf, nil
}

func (d *fakeDevice) NewTexture(label string, img *image.RGBA) (Texture, error) {
	if err := d.allocate(); err != nil {
		return nil, err
	}
	tex := &fakeTexture{label: label, w: img.Bounds().Dx(), h: img.Bounds().Dy()}
	d.textures = append(d.textures, tex)
	return tex, nil
}

type fakeBuffer struct {
	label     string
	data      []byte
	usage     BufferUsage
	writes    int
	destroyed bool
}

func (b *fakeBuffer) Size() uint64 { return uint64(len(b.data)) }

func (b *fakeBuffer) Write(offset uint64, data []byte) {
	copy(b.data[offset:], data)
	b.writes++
}

func (b *fakeBuffer) Destroy() { b.destroyed = true }

type fakeTexture struct {
	label     string
	w, h      int
	destroyed bool
}

func (t *fakeTexture) Width() int  { return t.w }
func (t *fakeTexture) Height() int { return t.h }
func (t *fakeTexture) Destroy()    { t.destroyed = true }

// drawCall records one Draw.
type drawCall struct {
	vertexCount, instanceCount uint32
}

// fakeTarget records every pass it hands out.
type fakeTarget struct {
	passes     []*fakePass
	beginErr   error
	finishErr  error
	holdFinish bool // keep onComplete callbacks pending until complete() is called
	pending    []func()
}

func (t *fakeTarget) BeginPass(clear Color) (Pass, error) {
	if t.beginErr != nil {
		return nil, t.beginErr
	}
	p := &fakePass{target: t, clear: clear, uniforms: map[uint32]Buffer{}, vertex: map[uint32]Buffer{}}
	t.passes = append(t.passes, p)
	return p, nil
}

// complete runs all held completion callbacks in submission order.
func (t *fakeTarget) complete() {
	pending := t.pending
	t.pending = nil
	for _, fn := range pending {
		fn()
	}
}

type fakePass struct {
	target      *fakeTarget
	clear       Color
	pipelineSet bool
	vertex      map[uint32]Buffer
	uniforms    map[uint32]Buffer
	texture     Texture
	draws       []drawCall
	finished    bool
}

func (p *fakePass) SetPipeline() { p.pipelineSet = true }

func (p *fakePass) SetVertexBuffer(slot uint32, buf Buffer) { p.vertex[slot] = buf }

func (p *fakePass) SetUniforms(slot uint32, buf Buffer) { p.uniforms[slot] = buf }

func (p *fakePass) SetTexture(slot uint32, tex Texture) {
	if slot != TextureSlot {
		panic(fmt.Sprintf("unexpected texture slot %d", slot))
	}
	p.texture = tex
}

func (p *fakePass) Draw(vertexCount, instanceCount uint32) {
	p.draws = append(p.draws, drawCall{vertexCount, instanceCount})
}

func (p *fakePass) Finish(onComplete func()) error {
	p.finished = true
	if onComplete != nil {
		if p.target.holdFinish && p.target.finishErr == nil {
			p.target.pending = append(p.target.pending, onComplete)
		} else {
			onComplete()
		}
	}
	return p.target.finishErr
}
