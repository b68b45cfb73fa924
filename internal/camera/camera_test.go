package camera

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	mu     sync.Mutex
	frame  Frame
	have   bool
	closed int
}

func (s *fakeStream) Latest() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.have
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

type fakeDevice struct {
	err     error
	streams []*fakeStream
}

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) Open(context.Context) (Stream, error) {
	if d.err != nil {
		return nil, d.err
	}
	s := &fakeStream{frame: Frame{Data: []byte{0xff, 0xd8, 0xff, 0xd9}, MIMEType: "image/jpeg"}, have: true}
	d.streams = append(d.streams, s)
	return s, nil
}

func TestResource_AcquireIsIdempotent(t *testing.T) {
	dev := &fakeDevice{}
	r := NewResource(dev)

	h1, err := r.Acquire(context.Background())
	require.NoError(t, err)
	h2, err := r.Acquire(context.Background())
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	assert.Len(t, dev.streams, 1)
	assert.True(t, r.Held())
}

func TestResource_ReleaseIsIdempotent(t *testing.T) {
	dev := &fakeDevice{}
	r := NewResource(dev)

	h, err := r.Acquire(context.Background())
	require.NoError(t, err)

	require.NoError(t, r.Release(h))
	require.NoError(t, r.Release(h))
	require.NoError(t, r.Release(nil))

	assert.False(t, r.Held())
	assert.Equal(t, 1, dev.streams[0].closed)
	opens, closes := r.Stats()
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, closes)
}

func TestResource_StaleHandleCannotReleaseNewOne(t *testing.T) {
	dev := &fakeDevice{}
	r := NewResource(dev)

	old, err := r.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.Release(old))

	current, err := r.Acquire(context.Background())
	require.NoError(t, err)
	require.NotSame(t, old, current)

	require.NoError(t, r.Release(old))
	assert.True(t, r.Held(), "stale release must not close the new stream")
	assert.Nil(t, r.CaptureFrame(old))
	assert.NotNil(t, r.CaptureFrame(current))
}

func TestResource_CaptureReturnsNilWithoutFrame(t *testing.T) {
	dev := &fakeDevice{}
	r := NewResource(dev)

	assert.Nil(t, r.CaptureFrame(nil))

	h, err := r.Acquire(context.Background())
	require.NoError(t, err)

	dev.streams[0].mu.Lock()
	dev.streams[0].have = false
	dev.streams[0].mu.Unlock()
	assert.Nil(t, r.CaptureFrame(h))

	dev.streams[0].mu.Lock()
	dev.streams[0].have = true
	dev.streams[0].mu.Unlock()
	f := r.CaptureFrame(h)
	require.NotNil(t, f)
	assert.Equal(t, "image/jpeg", f.MIMEType)
	assert.False(t, f.CapturedAt.IsZero())
}

func TestResource_AcquireErrorsMapToTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"permission", ErrPermissionDenied, ErrPermissionDenied},
		{"unavailable", ErrDeviceUnavailable, ErrDeviceUnavailable},
		{"unknown cause", errors.New("usb reset"), ErrDeviceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResource(&fakeDevice{err: tt.err})
			h, err := r.Acquire(context.Background())
			assert.Nil(t, h)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, r.Held())
		})
	}
}

func TestResource_NilDeviceIsUnavailable(t *testing.T) {
	r := NewResource(nil)
	_, err := r.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.Equal(t, "none", r.DeviceName())
}

func TestFileDevice(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "frame.jpg")
	require.NoError(t, os.WriteFile(img, []byte{0xff, 0xd8, 0x00, 0xff, 0xd9}, 0o644))

	r := NewResource(FileDevice{Path: img})
	h, err := r.Acquire(context.Background())
	require.NoError(t, err)
	f := r.CaptureFrame(h)
	require.NotNil(t, f)
	assert.Equal(t, "image/jpeg", f.MIMEType)
	assert.Len(t, f.Data, 5)

	_, err = FileDevice{Path: filepath.Join(dir, "missing.jpg")}.Open(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)

	empty := filepath.Join(dir, "empty.png")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = FileDevice{Path: empty}.Open(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestFileDevice_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for this user")
	}
	img := filepath.Join(t.TempDir(), "locked.jpg")
	require.NoError(t, os.WriteFile(img, []byte{1}, 0o000))

	_, err := FileDevice{Path: img}.Open(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestFFmpegDevice_MissingNode(t *testing.T) {
	_, err := FFmpegDevice{Input: filepath.Join(t.TempDir(), "video9"), Format: "v4l2"}.Open(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestFFmpegDevice_MissingBinary(t *testing.T) {
	_, err := FFmpegDevice{Input: "0", Format: "avfoundation", Binary: "ffmpeg-does-not-exist"}.Open(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestSplitJPEG(t *testing.T) {
	frameA := []byte{0xff, 0xd8, 0x01, 0x02, 0xff, 0xd9}
	frameB := []byte{0xff, 0xd8, 0x03, 0xff, 0x00, 0xff, 0xd9}

	var stream []byte
	stream = append(stream, 0x00, 0x11) // junk before the first frame
	stream = append(stream, frameA...)
	stream = append(stream, frameB...)
	stream = append(stream, 0xff, 0xd8, 0x09) // truncated tail

	// A one-byte reader exercises the partial-buffer paths.
	sc := bufio.NewScanner(&oneByteReader{data: stream})
	sc.Split(splitJPEG)

	var got [][]byte
	for sc.Scan() {
		got = append(got, bytes.Clone(sc.Bytes()))
	}
	require.NoError(t, sc.Err())
	require.Len(t, got, 2)
	assert.Equal(t, frameA, got[0])
	assert.Equal(t, frameB, got[1])
}

type oneByteReader struct {
	data []byte
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}
