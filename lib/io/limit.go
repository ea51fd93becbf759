package iolib

import "io"

// LimitReader creates new [LimitedReader]
func LimitReader(r io.Reader, n uint64) *LimitedReader { return &LimitedReader{r, n} }

// LimitedReader reads at most N bytes from R.
// Unlike [io.LimitedReader], N is unsigned and tells how many bytes were
// still expected when R ran dry.
type LimitedReader struct {
	R io.Reader // underlying reader
	N uint64    // max bytes remaining
}

func (l *LimitedReader) Read(p []byte) (n int, err error) {
	if l.N == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > l.N {
		p = p[:l.N]
	}
	n, err = l.R.Read(p)
	l.N -= uint64(n)
	return
}
