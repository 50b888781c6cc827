//go:build traceflash

package platform

// TraceFlash routes the store's flash trace to the console.
const TraceFlash = true
