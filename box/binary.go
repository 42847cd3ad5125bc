package box

import (
	"encoding/binary"

	"github.com/gogpu/heif/heiferr"
)

// reader is a sticky-error big-endian cursor. After the first short read
// every accessor returns zero and err stays set.
type reader struct {
	data []byte
	pos  int
	what string
	err  error
}

func newReader(data []byte, what string) *reader {
	return &reader{data: data, what: what}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || len(r.data)-r.pos < n {
		r.err = heiferr.Newf(heiferr.InvalidInput, heiferr.EndOfData, "%s box truncated", r.what)
		return false
	}
	return true
}

func (r *reader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := append([]byte(nil), r.data[r.pos:r.pos+n]...)
	r.pos += n
	return v
}

// cstring reads a NUL terminated string. A missing terminator consumes the
// rest of the data.
func (r *reader) cstring() string {
	if r.err != nil {
		return ""
	}
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			s := string(r.data[r.pos:i])
			r.pos = i + 1
			return s
		}
	}
	s := string(r.data[r.pos:])
	r.pos = len(r.data)
	return s
}

func (r *reader) rest() []byte {
	if r.err != nil {
		return nil
	}
	v := append([]byte(nil), r.data[r.pos:]...)
	r.pos = len(r.data)
	return v
}

type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }
func (w *writer) raw(b []byte) { w.buf = append(w.buf, b...) }
func (w *writer) cstring(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// AppendBox appends a complete box with the given four character type.
func AppendBox(dst []byte, typ string, body []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(8+len(body)))
	dst = append(dst, typ[:4]...)
	return append(dst, body...)
}

// AppendFullBox appends a box whose body starts with version and flags.
func AppendFullBox(dst []byte, typ string, version uint8, flags uint32, body []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(12+len(body)))
	dst = append(dst, typ[:4]...)
	dst = binary.BigEndian.AppendUint32(dst, uint32(version)<<24|flags&0xffffff)
	return append(dst, body...)
}
