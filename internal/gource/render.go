package gource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"git.home.luguber.info/inful/gourcers/internal/config"
	"git.home.luguber.info/inful/gourcers/internal/logfields"
)

// SplitArgs splits a flag-style argument string on whitespace. Shell
// quoting is not interpreted, so a single argument cannot contain spaces.
func SplitArgs(s string) []string { return strings.Fields(s) }

// RenderOptions configure the gource and ffmpeg invocations.
type RenderOptions struct {
	GourceArgs []string // visualization flags, placed before -o
	FFmpegArgs []string // encoder flags, placed before the output path
	Framerate  int      // input framerate for ffmpeg; defaults when <= 0
}

func gourceRenderArgs(sortedLog string, opts RenderOptions) []string {
	args := append([]string{}, opts.GourceArgs...)
	return append(args, "-o", "-", sortedLog)
}

func ffmpegEncodeArgs(output string, opts RenderOptions) []string {
	framerate := opts.Framerate
	if framerate <= 0 {
		framerate = config.DefaultFramerate
	}
	args := []string{"-y", "-r", strconv.Itoa(framerate), "-f", "image2pipe", "-c:v", "ppm", "-i", "-"}
	args = append(args, opts.FFmpegArgs...)
	return append(args, output)
}

// Render produces the final video: `gource <args> -o - <sortedLog>` writes
// raw PPM frames which are piped into `ffmpeg ... <args> <output>`. Both
// processes inherit stderr so gource's progress output stays visible. The
// first process to fail cancels the other; the returned error reports that
// first failure.
func Render(ctx context.Context, sortedLog, output string, opts RenderOptions) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pr, pw := io.Pipe()

	gource := exec.CommandContext(runCtx, "gource", gourceRenderArgs(sortedLog, opts)...)
	gource.Stdout = pw
	gource.Stderr = os.Stderr

	ffmpeg := exec.CommandContext(runCtx, "ffmpeg", ffmpegEncodeArgs(output, opts)...)
	ffmpeg.Stdin = pr
	ffmpeg.Stderr = os.Stderr

	slog.Debug("starting render pipeline",
		slog.String("gource_args", strings.Join(gource.Args[1:], " ")),
		slog.String("ffmpeg_args", strings.Join(ffmpeg.Args[1:], " ")))

	if err := ffmpeg.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}
	if err := gource.Start(); err != nil {
		cancel()
		_ = pr.CloseWithError(err)
		_ = ffmpeg.Wait()
		return fmt.Errorf("starting gource: %w", err)
	}

	var firstErr error
	var once sync.Once
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	gourceDone := make(chan struct{})
	go func() {
		defer close(gourceDone)
		if err := gource.Wait(); err != nil {
			fail(fmt.Errorf("gource render failed: %w", err))
			_ = pw.CloseWithError(err)
			return
		}
		// EOF lets ffmpeg flush its buffers and finalize the container.
		_ = pw.Close()
	}()

	if err := ffmpeg.Wait(); err != nil {
		fail(fmt.Errorf("ffmpeg encode failed: %w", err))
		// Unblock any in-flight copy of gource output into the pipe.
		_ = pr.CloseWithError(err)
	}
	<-gourceDone

	if err := ctx.Err(); err != nil {
		return err
	}
	if firstErr != nil {
		return firstErr
	}
	slog.Info("render complete", logfields.Output(output))
	return nil
}
