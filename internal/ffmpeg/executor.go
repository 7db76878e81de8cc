package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// Invoker runs one external tool invocation. The pipeline depends on this
// interface so tests can stand in for the ffmpeg binary.
type Invoker interface {
	Run(ctx context.Context, args []string) ExecResult
}

// ExecInvoker is the production Invoker backed by os/exec. When Tee is set,
// stderr is mirrored to os.Stderr in real time; otherwise it is captured
// silently for failure diagnostics.
type ExecInvoker struct {
	Tee bool
}

// Run executes args[0] with the remaining arguments and captures stderr.
func (e ExecInvoker) Run(ctx context.Context, args []string) ExecResult {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	if e.Tee {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return ExecResult{
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}
