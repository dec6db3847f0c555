package triad

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NumAttributes is the number of attributes that make up a card identity.
const NumAttributes = 4

// UniverseSize is the number of distinct card identities (3^4).
const UniverseSize = 81

// ErrInvalidIdentity is returned when a code or digit tuple does not name one of the 81 cards.
var ErrInvalidIdentity = errors.New("invalid card identity")

// Attribute positions within an identity, most significant digit first.
const (
	AttrCount = iota
	AttrShape
	AttrColor
	AttrFill
)

var (
	shapeNames = [3]string{"rectangle", "oval", "diamond"}
	colorNames = [3]string{"red", "green", "purple"}
	fillNames  = [3]string{"solid", "outline", "striped"}
	attrWeight = [NumAttributes]int{1000, 100, 10, 1}
)

// Identity is the canonical 4-digit code of a card: count*1000 + shape*100 + color*10 + fill,
// with every digit in {1,2,3}. The zero value is not a valid identity.
type Identity int

// New builds an identity from its four attribute digits.
func New(count, shape, color, fill int) (Identity, error) {
	digits := [NumAttributes]int{count, shape, color, fill}
	code := 0
	for i, d := range digits {
		if d < 1 || d > 3 {
			return 0, fmt.Errorf("%w: attribute %d has digit %d", ErrInvalidIdentity, i, d)
		}
		code += d * attrWeight[i]
	}
	return Identity(code), nil
}

// MustNew is New for literals known to be valid. It panics otherwise.
func MustNew(count, shape, color, fill int) Identity {
	id, err := New(count, shape, color, fill)
	if err != nil {
		panic(err)
	}
	return id
}

// Decode validates a numeric code and returns the identity it names.
func Decode(code int) (Identity, error) {
	id := Identity(code)
	if !id.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidIdentity, code)
	}
	return id, nil
}

// Parse decodes the 4-digit string form produced by String.
func Parse(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if len(s) != NumAttributes {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentity, s)
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentity, s)
	}
	return Decode(code)
}

// Value returns the numeric code.
func (id Identity) Value() int {
	return int(id)
}

// Valid reports whether id is one of the 81 card identities.
func (id Identity) Valid() bool {
	code := int(id)
	if code < 1111 || code > 3333 {
		return false
	}
	for i := 0; i < NumAttributes; i++ {
		d := code / attrWeight[i] % 10
		if d < 1 || d > 3 {
			return false
		}
	}
	return true
}

// Digit returns the digit at attribute position pos (AttrCount..AttrFill).
func (id Identity) Digit(pos int) int {
	return int(id) / attrWeight[pos] % 10
}

// Digits returns all four attribute digits.
func (id Identity) Digits() [NumAttributes]int {
	var out [NumAttributes]int
	for i := range out {
		out[i] = id.Digit(i)
	}
	return out
}

// Count is the number of shapes on the card, 1 to 3.
func (id Identity) Count() int { return id.Digit(AttrCount) }

// Shape is the shape digit: 1 rectangle, 2 oval, 3 diamond.
func (id Identity) Shape() int { return id.Digit(AttrShape) }

// Color is the color digit: 1 red, 2 green, 3 purple.
func (id Identity) Color() int { return id.Digit(AttrColor) }

// Fill is the fill digit: 1 solid, 2 outline, 3 striped.
func (id Identity) Fill() int { return id.Digit(AttrFill) }

// ShapeName, ColorName and FillName return the lower-case attribute names.
func (id Identity) ShapeName() string { return shapeNames[id.Shape()-1] }
func (id Identity) ColorName() string { return colorNames[id.Color()-1] }
func (id Identity) FillName() string  { return fillNames[id.Fill()-1] }

// String returns the 4-digit form, e.g. "1231".
func (id Identity) String() string {
	if !id.Valid() {
		return fmt.Sprintf("Identity(%d)", int(id))
	}
	return strconv.Itoa(int(id))
}

// Describe renders a human-readable name such as "2 green ovals, striped".
func (id Identity) Describe() string {
	if !id.Valid() {
		return id.String()
	}
	shape := id.ShapeName()
	if id.Count() > 1 {
		shape += "s"
	}
	return fmt.Sprintf("%d %s %s, %s", id.Count(), id.ColorName(), shape, id.FillName())
}

// MarshalText encodes the identity as its 4-digit string.
func (id Identity) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIdentity, int(id))
	}
	return []byte(id.String()), nil
}

// UnmarshalText accepts the 4-digit string form.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Universe returns all 81 identities in ascending code order.
func Universe() []Identity {
	out := make([]Identity, 0, UniverseSize)
	for c := 1; c <= 3; c++ {
		for s := 1; s <= 3; s++ {
			for col := 1; col <= 3; col++ {
				for f := 1; f <= 3; f++ {
					out = append(out, MustNew(c, s, col, f))
				}
			}
		}
	}
	return out
}
