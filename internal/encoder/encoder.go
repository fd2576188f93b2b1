// Package encoder wraps the external ffmpeg process that muxes one audio
// track and one looped still image into an MP4 artifact. Each Start produces
// a Job that resolves to exactly one terminal Result.
package encoder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"stillcast/internal/config"
	"stillcast/internal/domain"
)

// Result is the single terminal outcome of an encoding job.
type Result struct {
	State    domain.JobState
	ExitCode int
	Signal   string
	Stderr   string
}

// Encoder launches and supervises ffmpeg processes.
type Encoder struct {
	binary       string
	timeout      time.Duration
	tailBytes    int
	excerptBytes int
	videoBitrate string
	audioBitrate string
	pixelFormat  string
	threads      int
	logger       *slog.Logger
}

// New creates an Encoder from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Encoder {
	return &Encoder{
		binary:       cfg.FFmpegPath,
		timeout:      cfg.EncodeTimeout,
		tailBytes:    cfg.StderrTailBytes,
		excerptBytes: cfg.StderrExcerptBytes,
		videoBitrate: cfg.VideoBitrate,
		audioBitrate: cfg.AudioBitrate,
		pixelFormat:  cfg.PixelFormat,
		threads:      cfg.Threads,
		logger:       logger,
	}
}

// Job is one running encoding process. Its Done channel delivers exactly one
// Result, arbitrated first-outcome-wins between natural completion and the
// watchdog.
type Job struct {
	cmd      *exec.Cmd
	tail     *tailWriter
	done     chan Result
	resolve  sync.Once
	killOnce sync.Once
}

// Start builds the fixed ffmpeg argument list and launches the process.
// It fails synchronously only when the process cannot be spawned at all; in
// that case the input files are already removed before returning.
// On success the returned Job owns both inputs and deletes them once the
// process has fully exited, whatever the outcome.
func (e *Encoder) Start(audioPath, imagePath, outputPath string) (*Job, error) {
	tail := newTailWriter(e.tailBytes)
	cmd := exec.Command(e.binary, e.buildArgs(audioPath, imagePath, outputPath)...)
	cmd.Stderr = tail

	if err := cmd.Start(); err != nil {
		removeQuiet(audioPath)
		removeQuiet(imagePath)
		return nil, fmt.Errorf("start %s: %w", e.binary, err)
	}

	e.logger.Info("encoder started",
		"pid", cmd.Process.Pid,
		"audio", audioPath,
		"image", imagePath,
		"output", outputPath,
	)

	j := &Job{
		cmd:  cmd,
		tail: tail,
		done: make(chan Result, 1),
	}
	go j.supervise(e.timeout, e.excerptBytes, audioPath, imagePath, e.logger)

	return j, nil
}

func (e *Encoder) buildArgs(audioPath, imagePath, outputPath string) []string {
	return []string{
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-b:v", e.videoBitrate,
		"-pix_fmt", e.pixelFormat,
		"-c:a", "aac",
		"-b:a", e.audioBitrate,
		"-threads", strconv.Itoa(e.threads),
		"-shortest",
		"-movflags", "+faststart",
		"-f", "mp4",
		outputPath,
	}
}

// Done delivers the single terminal Result of the job.
func (j *Job) Done() <-chan Result {
	return j.done
}

// Cancel forcibly terminates the process. It is idempotent and a no-op after
// natural completion.
func (j *Job) Cancel() {
	j.killOnce.Do(func() {
		if j.cmd.Process != nil {
			_ = j.cmd.Process.Kill()
		}
	})
}

func (j *Job) supervise(timeout time.Duration, excerptBytes int, audioPath, imagePath string, logger *slog.Logger) {
	waitCh := make(chan error, 1)
	go func() {
		waitCh <- j.cmd.Wait()
	}()

	watchdog := time.NewTimer(timeout)
	defer watchdog.Stop()

	select {
	case waitErr := <-waitCh:
		// Input deletion must follow the confirmed exit, and happens before
		// the result is delivered so callers observe a clean temp area.
		removeQuiet(audioPath)
		removeQuiet(imagePath)
		j.deliver(j.resultFromExit(waitErr, excerptBytes))

	case <-watchdog.C:
		logger.Warn("encode watchdog fired, killing process", "pid", j.cmd.Process.Pid, "timeout", timeout)
		j.Cancel()
		// The kill is forceful but deletion still waits for the reaped exit;
		// a signaled process has not necessarily released its file handles.
		<-waitCh
		removeQuiet(audioPath)
		removeQuiet(imagePath)
		j.deliver(Result{
			State:  domain.JobTimedOut,
			Stderr: j.tail.Excerpt(excerptBytes),
		})
	}
}

// deliver resolves the job exactly once. A late natural completion after the
// watchdog has already reported is observed but produces no second outcome.
func (j *Job) deliver(res Result) {
	j.resolve.Do(func() {
		j.done <- res
	})
}

func (j *Job) resultFromExit(waitErr error, excerptBytes int) Result {
	if waitErr == nil {
		return Result{State: domain.JobSucceeded}
	}

	res := Result{
		State:    domain.JobFailed,
		ExitCode: -1,
		Stderr:   j.tail.Excerpt(excerptBytes),
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				res.Signal = ws.Signal().String()
			} else {
				res.ExitCode = ws.ExitStatus()
			}
		} else {
			res.ExitCode = exitErr.ExitCode()
		}
	}

	return res
}

func removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove temp file", "path", path, "error", err)
	}
}
