package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/stitchd/internal/logging"
)

// Tier is one complete ffmpeg invocation within a two-tier strategy.
type Tier struct {
	Name string // "copy" or "transcode"
	Args []string
}

// Plan pairs a primary operation with its declared fallback. Both tiers
// write to OutputPath; a tier that fails must not leave a partial file
// there, so RunPlan removes the output between attempts.
type Plan struct {
	Op         string // operation label for logs, e.g. "concat", "mux"
	Primary    Tier
	Fallback   Tier
	OutputPath string
}

// ToolError carries the stderr of the last failed tier alongside the
// process error, so callers can surface the tool's diagnostic output.
type ToolError struct {
	Op     string
	Tier   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	tail := StderrTail(e.Stderr, 5)
	if tail == "" {
		return fmt.Sprintf("ffmpeg %s (%s tier): %v", e.Op, e.Tier, e.Err)
	}
	return fmt.Sprintf("ffmpeg %s (%s tier): %v: %s", e.Op, e.Tier, e.Err, tail)
}

func (e *ToolError) Unwrap() error { return e.Err }

// RunPlan executes the plan's primary tier and, on tool failure, the
// fallback tier. It returns the name of the tier that produced the output.
// Both tiers failing yields a *ToolError wrapping the fallback's stderr.
// Context cancellation stops the plan without attempting the fallback.
func RunPlan(ctx context.Context, inv Invoker, plan Plan) (string, error) {
	log := logging.WithComponent("ffmpeg")

	res := runTier(ctx, inv, log, plan, plan.Primary)
	if res.Err == nil {
		return plan.Primary.Name, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	log.Warn().
		Str("op", plan.Op).
		Str(logging.FieldTier, plan.Primary.Name).
		Msg("primary tier failed, falling back")

	res = runTier(ctx, inv, log, plan, plan.Fallback)
	if res.Err == nil {
		return plan.Fallback.Name, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	// Remove whatever the fallback left behind so no partial output
	// survives a failed plan.
	_ = os.Remove(plan.OutputPath)
	return "", &ToolError{
		Op:     plan.Op,
		Tier:   plan.Fallback.Name,
		Stderr: res.Stderr,
		Err:    res.Err,
	}
}

// runTier executes one tier, removing the partial output file on failure.
func runTier(ctx context.Context, inv Invoker, log zerolog.Logger, plan Plan, tier Tier) ExecResult {
	log.Debug().
		Str("op", plan.Op).
		Str(logging.FieldTier, tier.Name).
		Strs("args", tier.Args).
		Msg("running ffmpeg")

	res := inv.Run(ctx, tier.Args)
	if res.Err != nil {
		_ = os.Remove(plan.OutputPath)
	}
	return res
}

// StderrTail returns the last n lines of stderr joined by "; ", trimmed.
// Used to keep tool diagnostics readable in single-line errors and logs.
func StderrTail(stderr string, n int) string {
	s := strings.TrimSpace(stderr)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "; ")
}
