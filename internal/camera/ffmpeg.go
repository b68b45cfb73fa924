package camera

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// maxFrameBytes caps a single MJPEG frame read from ffmpeg.
const maxFrameBytes = 8 << 20

// FFmpegDevice captures a live camera through an ffmpeg subprocess that
// writes an MJPEG stream to stdout.
type FFmpegDevice struct {
	// Input is the device, e.g. "/dev/video0" on Linux or "0" on macOS.
	Input string

	// Format is the ffmpeg input format. Defaults to v4l2 on Linux and
	// avfoundation on macOS.
	Format string

	// FPS is the capture rate. Evidence and attention cycles sample at
	// most every ten seconds, so 1 is plenty. Default: 1.
	FPS int

	// Binary overrides the ffmpeg executable. Default: "ffmpeg".
	Binary string
}

func (d FFmpegDevice) Name() string { return "ffmpeg:" + d.Input }

func (d FFmpegDevice) Open(ctx context.Context) (Stream, error) {
	format := d.Format
	if format == "" {
		format = defaultFormat()
	}
	if format == "v4l2" {
		if err := probeDeviceNode(d.Input); err != nil {
			return nil, err
		}
	}

	bin := d.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH", ErrDeviceUnavailable, bin)
	}

	fps := d.FPS
	if fps <= 0 {
		fps = 1
	}

	// The stream outlives the Open call, so it gets its own context.
	procCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cmd := exec.CommandContext(procCtx, path,
		"-hide_banner", "-loglevel", "error",
		"-f", format,
		"-framerate", strconv.Itoa(fps),
		"-i", d.Input,
		"-f", "image2pipe", "-vcodec", "mjpeg", "-q:v", "5",
		"-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: start ffmpeg: %v", ErrDeviceUnavailable, err)
	}

	s := &ffmpegStream{cmd: cmd, cancel: cancel, done: make(chan struct{})}
	go s.read(stdout)
	return s, nil
}

func defaultFormat() string {
	if runtime.GOOS == "darwin" {
		return "avfoundation"
	}
	return "v4l2"
}

// probeDeviceNode checks the V4L2 node before spawning ffmpeg so that a
// missing device and a permission problem are told apart.
func probeDeviceNode(path string) error {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return mapOSError(path, err)
	}
	return f.Close()
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	latest Frame
	have   bool
	err    error
}

func (s *ffmpegStream) read(r io.Reader) {
	defer close(s.done)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256<<10), maxFrameBytes)
	sc.Split(splitJPEG)

	for sc.Scan() {
		data := bytes.Clone(sc.Bytes())
		s.mu.Lock()
		s.latest = Frame{Data: data, MIMEType: "image/jpeg", CapturedAt: time.Now()}
		s.have = true
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.err = sc.Err()
	s.mu.Unlock()
}

func (s *ffmpegStream) Latest() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.have
}

func (s *ffmpegStream) Close() error {
	s.cancel()
	<-s.done
	err := s.cmd.Wait()

	// Killed by our own cancel: not an error.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		err = nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = s.err
	}
	return err
}

var (
	jpegSOI = []byte{0xff, 0xd8}
	jpegEOI = []byte{0xff, 0xd9}
)

// splitJPEG is a bufio.SplitFunc that yields complete JPEG images from a
// concatenated MJPEG stream. Bytes before a start-of-image marker are
// discarded.
func splitJPEG(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := bytes.Index(data, jpegSOI)
	if start < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		// Keep a trailing 0xff in case it starts the next marker.
		if n := len(data); n > 0 && data[n-1] == 0xff {
			return n - 1, nil, nil
		}
		return len(data), nil, nil
	}

	end := bytes.Index(data[start+2:], jpegEOI)
	if end < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		return start, nil, nil
	}
	stop := start + 2 + end + 2
	return stop, data[start:stop], nil
}
