package hevc

import "errors"

// ErrTruncated is returned when a bitstream ends before a syntax element
// has been fully read.
var ErrTruncated = errors.New("hevc: truncated bitstream")

// bitReader reads MSB-first from an RBSP (emulation prevention removed).
type bitReader struct {
	data   []byte
	pos    int  // byte position
	bitPos uint // bits consumed from data[pos]
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

// readBits reads n <= 32 bits.
func (r *bitReader) readBits(n int) (uint32, error) {
	var v uint32
	for range n {
		if r.pos >= len(r.data) {
			return 0, ErrTruncated
		}
		bit := (r.data[r.pos] >> (7 - r.bitPos)) & 1
		v = v<<1 | uint32(bit)
		r.bitPos++
		if r.bitPos == 8 {
			r.bitPos = 0
			r.pos++
		}
	}
	return v, nil
}

func (r *bitReader) readFlag() (bool, error) {
	v, err := r.readBits(1)
	return v == 1, err
}

func (r *bitReader) skipBits(n int) error {
	for n > 32 {
		if _, err := r.readBits(32); err != nil {
			return err
		}
		n -= 32
	}
	_, err := r.readBits(n)
	return err
}

// readUE reads an unsigned Exp-Golomb code.
func (r *bitReader) readUE() (uint32, error) {
	zeros := 0
	for {
		b, err := r.readBits(1)
		if err != nil {
			return 0, err
		}
		if b == 1 {
			break
		}
		zeros++
		if zeros > 31 {
			return 0, ErrTruncated
		}
	}
	if zeros == 0 {
		return 0, nil
	}
	rest, err := r.readBits(zeros)
	if err != nil {
		return 0, err
	}
	return (1<<zeros - 1) + rest, nil
}

// bitWriter is the inverse of bitReader.
type bitWriter struct {
	buf    []byte
	bitPos uint // bits used in the last byte, 0 means byte aligned
}

func (w *bitWriter) writeBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		if w.bitPos == 0 {
			w.buf = append(w.buf, 0)
		}
		if (v>>uint(i))&1 == 1 {
			w.buf[len(w.buf)-1] |= 1 << (7 - w.bitPos)
		}
		w.bitPos = (w.bitPos + 1) % 8
	}
}

func (w *bitWriter) writeFlag(b bool) {
	if b {
		w.writeBits(1, 1)
	} else {
		w.writeBits(0, 1)
	}
}

func (w *bitWriter) writeUE(v uint32) {
	x := uint64(v) + 1
	n := 0
	for t := x; t > 1; t >>= 1 {
		n++
	}
	w.writeBits(0, n)
	w.writeBits(uint32(x), n+1)
}

// writeTrailingBits appends rbsp_trailing_bits.
func (w *bitWriter) writeTrailingBits() {
	w.writeBits(1, 1)
	for w.bitPos != 0 {
		w.writeBits(0, 1)
	}
}
