package core

import (
	"runtime"
	"sync/atomic"
)

// leakCaptureArmed is the process-wide leak-capture flag: once a reap occurs
// without a previously captured stack, the next borrow snapshots its caller's
// stack and disarms the flag; that stack is logged if its entry is reaped. Benign
// races are acceptable here — at worst an extra stack trace is captured, or
// one reap logs without a stack it narrowly missed.
var leakCaptureArmed atomic.Bool

// ArmLeakCapture arms the process-wide flag, causing the next borrow (on any
// pool in this process) to snapshot its caller's stack.
func ArmLeakCapture() {
	leakCaptureArmed.Store(true)
}

// ArmedLeakCapture reports whether leak capture is currently armed.
func ArmedLeakCapture() bool {
	return leakCaptureArmed.Load()
}

// ConsumeLeakCapture disarms the flag after a stack has been captured.
func ConsumeLeakCapture() {
	leakCaptureArmed.Store(false)
}

// captureStack snapshots the calling goroutine's stack for inclusion in a
// future leak-reap log line.
func captureStack() string {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
