package records

import "strings"

// Choice is one realized enumerated choice: a display name and its stable
// integer code.
type Choice struct {
	Name string
	Code int
}

// Option configures a record constructor. Caller-supplied options are merged
// over type defaults; an option set to nil counts as explicitly absent and is
// dropped from the resolved map.
type Option func(*settings)

type settings struct {
	values   map[string]any
	choices  []Choice
	truncate bool
}

func newSettings() *settings {
	return &settings{values: make(map[string]any)}
}

// Set assigns an arbitrary option by key. Unrecognized keys are legal: they
// sit in the resolved option map where custom field templates can reference
// them.
func Set(key string, value any) Option {
	return func(s *settings) {
		key = strings.TrimSpace(key)
		if key == "" {
			return
		}
		s.values[key] = value
	}
}

// Desc sets the record description.
func Desc(desc string) Option { return Set("desc", desc) }

// Default sets the record's initial value.
func Default(value any) Option { return Set("default", value) }

// Units sets the engineering-unit label on numeric records.
func Units(units string) Option { return Set("units", units) }

// Min sets the lower display and drive bound on numeric records.
func Min(value float64) Option { return Set("min_val", value) }

// Max sets the upper display and drive bound on numeric records.
func Max(value float64) Option { return Set("max_val", value) }

// Precision sets the number of displayed decimal places.
func Precision(places int) Option { return Set("prec", places) }

// Out sets the output link specification.
func Out(link string) Option { return Set("out", link) }

// Inp sets the input link specification.
func Inp(link string) Option { return Set("inp", link) }

// Shift sets the bit shift applied by direct multi-bit records.
func Shift(bits int) Option { return Set("shift", bits) }

// High sets the active-high duration of a momentary output, in seconds.
func High(seconds float64) Option { return Set("high", seconds) }

// ZeroName sets the display name of the zero state.
func ZeroName(name string) Option { return Set("zname", name) }

// OneName sets the display name of the one state.
func OneName(name string) Option { return Set("oname", name) }

// MaxLength declares the maximum length of a string record. Lengths above
// the inline threshold switch the record onto a character waveform.
func MaxLength(chars int) Option { return Set("max_length", chars) }

// Expression sets the calculation expression of a calc record.
func Expression(calc string) Option { return Set("calc", calc) }

// Scan sets the scan mechanism field of a calc record.
func Scan(scan any) Option { return Set("scan", scan) }

// Input binds one named calculation input (A through L, case-insensitive) to
// a link specification. Only inputs actually supplied become record fields.
func Input(letter rune, link string) Option {
	return Set("inp"+strings.ToLower(string(letter)), link)
}

// OutputExecute sets the output-execute mode of a calcout record.
func OutputExecute(mode any) Option { return Set("oopt", mode) }

// OutputData sets the output-data mode of a calcout record.
func OutputData(mode any) Option { return Set("dopt", mode) }

// Elements sets the element kind of an array record.
func Elements(kind ElementKind) Option { return Set("type", kind) }

// Length sets the element count of an array record.
func Length(n int) Option { return Set("length", n) }

// Choices declares enumerated choices from an ordered name list; codes are
// assigned 0..N-1 in list order.
func Choices(names ...string) Option {
	return func(s *settings) {
		s.choices = make([]Choice, len(names))
		for i, name := range names {
			s.choices[i] = Choice{Name: name, Code: i}
		}
		s.values["choices"] = s.choices
	}
}

// ChoicePairs declares enumerated choices from an already-realized list of
// name/code pairs, preserving order and the supplied codes.
func ChoicePairs(pairs []Choice) Option {
	return func(s *settings) {
		s.choices = append([]Choice(nil), pairs...)
		s.values["choices"] = s.choices
	}
}

// TruncateChoices opts an enumerated record into silently dropping choices
// beyond the symbolic slot ceiling instead of failing construction.
func TruncateChoices() Option {
	return func(s *settings) { s.truncate = true }
}
