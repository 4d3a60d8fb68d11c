package listener

import (
	"bytes"
	"io"
)

// crlfConn adapts a client connection to the plain "\n" lines the console
// reads and writes. Input arrives as "\r\n", "\r\x00" or a bare "\r"
// depending on the client; output needs "\r\n".
type crlfConn struct {
	rw io.ReadWriter
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &crlfConn{rw: rw}
}

var inputEndings = []struct{ from, to []byte }{
	{[]byte("\r\n"), []byte("\n")},
	{[]byte("\r\x00"), []byte("\n")},
	{[]byte("\r"), []byte("\n")},
}

func (c *crlfConn) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)
	if n == 0 {
		return n, err
	}

	data := p[:n]
	for _, e := range inputEndings {
		data = bytes.ReplaceAll(data, e.from, e.to)
	}
	return copy(p, data), err
}

// Write reports len(p) on success so callers never see the added bytes.
func (c *crlfConn) Write(p []byte) (int, error) {
	if _, err := c.rw.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
