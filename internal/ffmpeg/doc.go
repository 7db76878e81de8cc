// Package ffmpeg builds and executes ffmpeg commands with a shared argument
// skeleton and a unified two-tier (primary/fallback) execution strategy.
//
// Layout:
//   - builder.go: argument construction for concat and mux operations,
//     copy and transcode tiers.
//   - executor.go: process execution with stderr capture ([Invoker]).
//   - plan.go: the [Plan] type and [RunPlan], which runs the primary tier
//     and falls back to the transcode tier on tool failure, never leaving
//     partial output behind a failed tier.
//   - manifest.go: concat demuxer manifest writing with path escaping.
package ffmpeg
