package records

import (
	"fmt"
	"strconv"
	"strings"
)

// NewEnum constructs an enumerated choice record (mbbo). Choices come either
// from an ordered name list (codes assigned 0..N-1) or from realized
// name/code pairs; each choice claims one symbolic slot and emits a
// <slot>VL/<slot>ST field pair. Declaring more choices than slots fails
// construction unless TruncateChoices is set.
func NewEnum(name string, opts ...Option) (*Record, error) {
	defaults := map[string]any{"default": 0, "out": ""}
	r, s, err := newRecord(enumSpec, name, defaults, opts)
	if err != nil {
		return nil, err
	}

	choices := s.choices
	if len(choices) > MaxChoices {
		if !s.truncate {
			return nil, fmt.Errorf("%w: %s declares %d", ErrTooManyChoices, name, len(choices))
		}
		choices = choices[:MaxChoices]
	}
	for i, choice := range choices {
		slot := enumSlots[i]
		r.AddField(slot+"VL", strconv.Itoa(choice.Code))
		r.AddField(slot+"ST", choice.Name)
	}
	return r, nil
}

// NewBinaryOutput constructs a direct multi-bit output record (mbboDirect)
// for converting between integers and bits.
func NewBinaryOutput(name string, opts ...Option) (*Record, error) {
	defaults := map[string]any{"default": 0, "out": "", "shift": 0}
	r, _, err := newRecord(binaryOutSpec, name, defaults, opts)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewBinaryInput constructs a direct multi-bit input record (mbbiDirect).
func NewBinaryInput(name string, opts ...Option) (*Record, error) {
	defaults := map[string]any{"default": 0, "inp": "", "shift": 0}
	r, _, err := newRecord(binaryInSpec, name, defaults, opts)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewToggle constructs a momentary, self-resetting binary output (bo). The
// HIGH field holds the active-high duration; the zero/one display names
// default to the record description when unset.
func NewToggle(name string, opts ...Option) (*Record, error) {
	defaults := map[string]any{"high": 0.25}
	r, _, err := newRecord(toggleSpec, name, defaults, opts)
	if err != nil {
		return nil, err
	}

	desc, _ := r.Option("desc")
	if _, ok := r.Option("zname"); !ok {
		r.setOption("zname", desc)
	}
	if _, ok := r.Option("oname"); !ok {
		r.setOption("oname", desc)
	}
	high, _ := r.Option("high")
	r.setOption("high", strconv.FormatFloat(toFloat(high), 'g', 2, 64))
	return r, nil
}

// NewString constructs a string record. Declared lengths at or below the
// inline threshold use a stringout with an inline VAL; longer declarations
// switch the record onto a character waveform, adding element-count and
// element-type fields and dropping the inline value.
func NewString(name string, opts ...Option) (*Record, error) {
	defaults := map[string]any{"max_length": 20, "default": " "}
	r, _, err := newRecord(stringSpec, name, defaults, opts)
	if err != nil {
		return nil, err
	}

	maxLength, _ := r.Option("max_length")
	if n := toInt(maxLength); n > stringSwitchLength {
		r.setKind(KindWaveform)
		r.AddField("NELM", strconv.Itoa(n))
		r.AddField("FTVL", "CHAR")
		r.DelField("VAL")
	}
	return r, nil
}

// NewInteger constructs an integer output record (longout). Min and Max map
// to both the display range (LOPR/HOPR) and the drive range (DRVL/DRVH).
func NewInteger(name string, opts ...Option) (*Record, error) {
	defaults := map[string]any{"max_val": 0.0, "min_val": 0.0, "default": 0, "units": ""}
	r, _, err := newRecord(integerSpec, name, defaults, opts)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewFloat constructs a floating-point output record (ao) with display
// precision and engineering units. Bounds render in scientific notation.
func NewFloat(name string, opts ...Option) (*Record, error) {
	defaults := map[string]any{"max_val": 0.0, "min_val": 0.0, "default": 0.0, "prec": 4, "units": ""}
	r, _, err := newRecord(floatSpec, name, defaults, opts)
	if err != nil {
		return nil, err
	}

	for _, key := range []string{"max_val", "min_val"} {
		v, _ := r.Option(key)
		r.setOption(key, strconv.FormatFloat(toFloat(v), 'e', 4, 64))
	}
	return r, nil
}

// NewCalc constructs a calculation record. Up to twelve inputs (A through L)
// can be bound with Input; only inputs actually supplied become fields.
func NewCalc(name string, opts ...Option) (*Record, error) {
	defaults := map[string]any{"scan": 0, "prec": 4}
	r, _, err := newRecord(calcSpec, name, defaults, opts)
	if err != nil {
		return nil, err
	}
	bindCalcInputs(r)
	return r, nil
}

// NewCalcOut constructs a calculation record with an output link and
// output-execute/output-data mode fields.
func NewCalcOut(name string, opts ...Option) (*Record, error) {
	defaults := map[string]any{"scan": 0, "prec": 4, "out": "", "oopt": 0, "dopt": 0}
	r, _, err := newRecord(calcOutSpec, name, defaults, opts)
	if err != nil {
		return nil, err
	}
	bindCalcInputs(r)
	return r, nil
}

// NewArray constructs a waveform record. The semantic element kind maps to
// the server's storage tag; unrecognized kinds pass through unchanged.
func NewArray(name string, opts ...Option) (*Record, error) {
	r, _, err := newRecord(arraySpec, name, nil, opts)
	if err != nil {
		return nil, err
	}

	elem, _ := r.Option("type")
	switch v := elem.(type) {
	case ElementKind:
		r.setOption("type", storageTag(v))
	case string:
		r.setOption("type", storageTag(ElementKind(v)))
	}
	return r, nil
}

// bindCalcInputs adds an INP<letter> field for each supplied calc input,
// leaving absent inputs out of the field map entirely.
func bindCalcInputs(r *Record) {
	for _, letter := range calcInputs {
		key := "inp" + strings.ToLower(string(letter))
		if v, ok := r.Option(key); ok {
			r.AddField("INP"+string(letter), literal(v))
		}
	}
}

func literal(v any) string {
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
