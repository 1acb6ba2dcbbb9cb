// Package sweep provides the periodic background job runner shared by the
// scheduled-send, retry-reprocessing and digest sweeps. Each Runner invokes
// one sweep function on a fixed interval and exposes explicit Start/Stop
// lifecycle handles, so no component owns an implicit timer.
package sweep
