package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"meetscribe/internal/domain"
	"meetscribe/internal/ports"
)

const (
	captureStartupWindow = 250 * time.Millisecond
	captureStopGrace     = 1200 * time.Millisecond
)

// FFMPEGCapture streams microphone PCM audio (s16le) using ffmpeg.
type FFMPEGCapture struct {
	command string
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command}
}

// Locate resolves the recorder binary on PATH.
func (c *FFMPEGCapture) Locate() (string, error) {
	path, err := exec.LookPath(c.command)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", c.command)
	}
	return path, nil
}

// Start acquires the input device. Any failure to acquire it is reported as
// domain.ErrPermission: from the caller's side a denied and a missing microphone look
// the same.
func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	cmd := exec.CommandContext(ctx, c.command, captureArgs(withCaptureDefaults(cfg))...)
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create ffmpeg stdout pipe: %w", domain.ErrPermission, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start ffmpeg: %w", domain.ErrPermission, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("%w: ffmpeg exited before capture started: %v: %s", domain.ErrPermission, err, trimOutput(stderr.String()))
		}
		return nil, fmt.Errorf("%w: ffmpeg exited before capture started", domain.ErrPermission)
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-waitErr
		return nil, ctx.Err()
	case <-time.After(captureStartupWindow):
	}

	return &ffmpegSession{
		stdout:  stdout,
		stderr:  stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

// captureArgs reads the device as raw s16le on stdout at the requested rate.
func captureArgs(cfg ports.AudioConfig) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	}
}

func withCaptureDefaults(cfg ports.AudioConfig) ports.AudioConfig {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	return cfg
}

type ffmpegSession struct {
	stdout io.ReadCloser
	stderr *lockedBuffer

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *ffmpegSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *ffmpegSession) Close() error {
	return s.Stop()
}

// Stop interrupts ffmpeg so it flushes, kills it if it lingers, and closes the pipe.
// Exit statuses are expected after an interrupt and are not reported.
func (s *ffmpegSession) Stop() error {
	s.stopOnce.Do(func() {
		err := s.terminate()
		if closeErr := s.stdout.Close(); err == nil && closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			err = closeErr
		}
		if err != nil && s.stderr != nil {
			if detail := trimOutput(s.stderr.String()); detail != "" {
				err = fmt.Errorf("%w: %s", err, detail)
			}
		}
		s.stopErr = err
	})
	return s.stopErr
}

func (s *ffmpegSession) terminate() error {
	if s.process != nil {
		_ = s.process.Signal(os.Interrupt)
	}

	timer := time.NewTimer(captureStopGrace)
	defer timer.Stop()

	var err error
	select {
	case err = <-s.waitErr:
	case <-timer.C:
		if s.process != nil {
			_ = s.process.Kill()
		}
		err = <-s.waitErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimOutput(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}

// lockedBuffer guards stderr, which exec writes from its own goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
