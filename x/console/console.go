// Package console is the board's best-effort diagnostic text sink. It never
// reports errors to callers and never allocates for numbers; a nil *Writer or
// a Writer over a nil io.Writer discards everything.
package console

import "io"

// CRLF terminates every console line; the debug USART is read with terminal
// emulators.
const CRLF = "\r\n"

type Writer struct {
	w   io.Writer
	buf [20]byte
}

// New wraps w. If w is already a *Writer it is returned as is.
func New(w io.Writer) *Writer {
	if c, ok := w.(*Writer); ok {
		return c
	}
	return &Writer{w: w}
}

// Write implements io.Writer; output errors are swallowed.
func (c *Writer) Write(p []byte) (int, error) {
	if c == nil || c.w == nil {
		return len(p), nil
	}
	_, _ = c.w.Write(p)
	return len(p), nil
}

func (c *Writer) WriteString(s string) { c.Write([]byte(s)) }

// Line writes s followed by CRLF.
func (c *Writer) Line(s string) {
	c.WriteString(s)
	c.WriteString(CRLF)
}

// Uint writes n in base 10.
func (c *Writer) Uint(n uint64) {
	if c == nil {
		return
	}
	i := len(c.buf)
	if n == 0 {
		i--
		c.buf[i] = '0'
	}
	for n > 0 {
		i--
		c.buf[i] = byte('0' + n%10)
		n /= 10
	}
	c.Write(c.buf[i:])
}

// Hex16 writes v as 0x-prefixed, four lowercase hex digits.
func (c *Writer) Hex16(v uint16) {
	if c == nil {
		return
	}
	const hexd = "0123456789abcdef"
	b := c.buf[:6]
	b[0], b[1] = '0', 'x'
	for j := 5; j >= 2; j-- {
		b[j] = hexd[v&0xF]
		v >>= 4
	}
	c.Write(b)
}
