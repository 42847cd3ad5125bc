package box

import "strconv"

// Fraction is a signed rational number as stored in clap boxes.
type Fraction struct {
	Num int32
	Den int32
}

// NewFraction returns num/den.
func NewFraction(num, den int32) Fraction {
	return Fraction{Num: num, Den: den}
}

// Add returns f+g.
func (f Fraction) Add(g Fraction) Fraction {
	if f.Den == g.Den {
		return Fraction{f.Num + g.Num, f.Den}
	}
	return Fraction{f.Num*g.Den + g.Num*f.Den, f.Den * g.Den}
}

// Sub returns f-g.
func (f Fraction) Sub(g Fraction) Fraction {
	if f.Den == g.Den {
		return Fraction{f.Num - g.Num, f.Den}
	}
	return Fraction{f.Num*g.Den - g.Num*f.Den, f.Den * g.Den}
}

// AddInt returns f+v.
func (f Fraction) AddInt(v int) Fraction {
	return Fraction{f.Num + int32(v)*f.Den, f.Den}
}

// SubInt returns f-v.
func (f Fraction) SubInt(v int) Fraction {
	return Fraction{f.Num - int32(v)*f.Den, f.Den}
}

// DivInt returns f/v.
func (f Fraction) DivInt(v int) Fraction {
	return Fraction{f.Num, f.Den * int32(v)}
}

// RoundDown truncates toward zero.
func (f Fraction) RoundDown() int {
	if f.Den == 0 {
		return 0
	}
	return int(f.Num / f.Den)
}

// RoundUp rounds a non-negative fraction up.
func (f Fraction) RoundUp() int {
	if f.Den == 0 {
		return 0
	}
	return int((f.Num + f.Den - 1) / f.Den)
}

// Round rounds half up.
func (f Fraction) Round() int {
	if f.Den == 0 {
		return 0
	}
	return int((f.Num + f.Den/2) / f.Den)
}

// IsValid reports whether the denominator is non-zero.
func (f Fraction) IsValid() bool { return f.Den != 0 }

func (f Fraction) String() string {
	return strconv.Itoa(int(f.Num)) + "/" + strconv.Itoa(int(f.Den))
}
