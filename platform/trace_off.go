//go:build !traceflash

package platform

const TraceFlash = false
