package progress

import "io"

// Reader wraps an io.Reader and reports the running byte count after every
// chunk read.
type Reader struct {
	reader     io.Reader
	total      int64 // expected size, negative when unknown
	received   int64
	onProgress func(received int64, total int64)
}

// NewReader wraps r. total is the expected size or -1 when unknown. cb may be nil.
func NewReader(r io.Reader, total int64, cb func(received int64, total int64)) *Reader {
	return &Reader{
		reader:     r,
		total:      total,
		onProgress: cb,
	}
}

func (pr *Reader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.received += int64(n)

		if pr.onProgress != nil {
			pr.onProgress(pr.received, pr.total)
		}
	}

	return n, err
}

// Received returns the number of bytes read so far.
func (pr *Reader) Received() int64 {
	return pr.received
}
