package core

import "math"

// machineEpsilon is half the distance between 1.0 and the next larger
// float64, the standard bound on relative rounding error.
const machineEpsilon = 0x1p-53

// Gamma returns a conservative bound on the relative error accumulated by
// n chained floating-point operations: n*eps / (1 - n*eps).
func Gamma(n int) float64 {
	ne := float64(n) * machineEpsilon
	return ne / (1 - ne)
}

// NextFloatUp returns the smallest float64 greater than v
func NextFloatUp(v float64) float64 {
	return math.Nextafter(v, math.Inf(1))
}

// NextFloatDown returns the largest float64 less than v
func NextFloatDown(v float64) float64 {
	return math.Nextafter(v, math.Inf(-1))
}

// ErrFloat is a scalar that carries a conservative interval bounding the
// accumulated floating-point rounding error of the computation that
// produced it. The true real-number result is guaranteed to lie in
// [LowerBound, UpperBound]. Arithmetic on ErrFloats widens the interval
// by one ulp per operation so the guarantee survives the interval
// arithmetic's own rounding.
type ErrFloat struct {
	v    float64
	low  float64
	high float64
}

// NewErrFloat creates an ErrFloat holding an exact value
func NewErrFloat(v float64) ErrFloat {
	return ErrFloat{v: v, low: v, high: v}
}

// NewErrFloatWithError creates an ErrFloat whose value is already known to
// carry up to err of absolute error
func NewErrFloatWithError(v, err float64) ErrFloat {
	if err == 0 {
		return NewErrFloat(v)
	}
	return ErrFloat{
		v:    v,
		low:  NextFloatDown(v - err),
		high: NextFloatUp(v + err),
	}
}

// Value returns the computed (rounded) value
func (e ErrFloat) Value() float64 { return e.v }

// LowerBound returns the lower bound of the error interval
func (e ErrFloat) LowerBound() float64 { return e.low }

// UpperBound returns the upper bound of the error interval
func (e ErrFloat) UpperBound() float64 { return e.high }

// AbsoluteError returns a bound on the absolute error in Value
func (e ErrFloat) AbsoluteError() float64 {
	return NextFloatUp(math.Max(math.Abs(e.high-e.v), math.Abs(e.v-e.low)))
}

// Add returns e + other with the error interval widened accordingly
func (e ErrFloat) Add(other ErrFloat) ErrFloat {
	return ErrFloat{
		v:    e.v + other.v,
		low:  NextFloatDown(e.low + other.low),
		high: NextFloatUp(e.high + other.high),
	}
}

// Sub returns e - other with the error interval widened accordingly
func (e ErrFloat) Sub(other ErrFloat) ErrFloat {
	return ErrFloat{
		v:    e.v - other.v,
		low:  NextFloatDown(e.low - other.high),
		high: NextFloatUp(e.high - other.low),
	}
}

// Mul returns e * other with the error interval widened accordingly
func (e ErrFloat) Mul(other ErrFloat) ErrFloat {
	p := [4]float64{
		e.low * other.low,
		e.high * other.low,
		e.low * other.high,
		e.high * other.high,
	}
	return ErrFloat{
		v:    e.v * other.v,
		low:  NextFloatDown(math.Min(math.Min(p[0], p[1]), math.Min(p[2], p[3]))),
		high: NextFloatUp(math.Max(math.Max(p[0], p[1]), math.Max(p[2], p[3]))),
	}
}

// Div returns e / other. If other's interval straddles zero the quotient
// interval is unbounded.
func (e ErrFloat) Div(other ErrFloat) ErrFloat {
	if other.low < 0 && other.high > 0 {
		return ErrFloat{
			v:    e.v / other.v,
			low:  math.Inf(-1),
			high: math.Inf(1),
		}
	}
	q := [4]float64{
		e.low / other.low,
		e.high / other.low,
		e.low / other.high,
		e.high / other.high,
	}
	return ErrFloat{
		v:    e.v / other.v,
		low:  NextFloatDown(math.Min(math.Min(q[0], q[1]), math.Min(q[2], q[3]))),
		high: NextFloatUp(math.Max(math.Max(q[0], q[1]), math.Max(q[2], q[3]))),
	}
}

// Sqrt returns the square root of e
func (e ErrFloat) Sqrt() ErrFloat {
	return ErrFloat{
		v:    math.Sqrt(e.v),
		low:  NextFloatDown(math.Sqrt(e.low)),
		high: NextFloatUp(math.Sqrt(e.high)),
	}
}

// Neg returns -e
func (e ErrFloat) Neg() ErrFloat {
	return ErrFloat{v: -e.v, low: -e.high, high: -e.low}
}

// MulScalar returns e scaled by an exact constant
func (e ErrFloat) MulScalar(s float64) ErrFloat {
	return e.Mul(NewErrFloat(s))
}

// Quadratic solves a*t^2 + b*t + c = 0 over error-bounded coefficients.
// It returns both real roots ordered t0 <= t1 by value, or ok=false when
// the discriminant is negative. The roots are computed in the numerically
// stable form that avoids cancellation between -b and the discriminant.
func Quadratic(a, b, c ErrFloat) (t0, t1 ErrFloat, ok bool) {
	discrim := b.v*b.v - 4*a.v*c.v
	if discrim < 0 {
		return ErrFloat{}, ErrFloat{}, false
	}
	rootDiscrim := math.Sqrt(discrim)
	floatRootDiscrim := NewErrFloatWithError(rootDiscrim, machineEpsilon*rootDiscrim)

	var q ErrFloat
	if b.v < 0 {
		q = b.Sub(floatRootDiscrim).MulScalar(-0.5)
	} else {
		q = b.Add(floatRootDiscrim).MulScalar(-0.5)
	}
	t0 = q.Div(a)
	t1 = c.Div(q)
	if t0.v > t1.v {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}
