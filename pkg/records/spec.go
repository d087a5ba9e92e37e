package records

// FieldTemplate binds one database field key to an inline placeholder
// template. Placeholders must resolve from the owning record's option map at
// render time; an unresolved placeholder is a render error.
type FieldTemplate struct {
	Key      string
	Template string
}

// Spec describes a record type: its kind tag, ordered field templates and
// the option names a constructor must receive. Specs are immutable once
// declared; specialization happens through Extend.
type Spec struct {
	Kind     Kind
	Fields   []FieldTemplate
	Required []string
}

// Extend composes a specialized Spec from a base. Override keys replace the
// base template in place; new keys append in override order. Required option
// names accumulate up the chain, so a specialization inherits every
// requirement of its base.
func Extend(base Spec, kind Kind, overrides []FieldTemplate, required ...string) Spec {
	fields := make([]FieldTemplate, len(base.Fields), len(base.Fields)+len(overrides))
	copy(fields, base.Fields)

	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Key] = i
	}
	for _, f := range overrides {
		if i, ok := index[f.Key]; ok {
			fields[i] = f
			continue
		}
		index[f.Key] = len(fields)
		fields = append(fields, f)
	}

	req := make([]string, 0, len(base.Required)+len(required))
	req = append(req, base.Required...)
	for _, name := range required {
		if !contains(req, name) {
			req = append(req, name)
		}
	}

	return Spec{Kind: kind, Fields: fields, Required: req}
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}

// baseSpec is the root of the specialization chain. Every record carries a
// description; concrete types layer their own fields on top.
var baseSpec = Spec{
	Kind: KindAnalogIn,
	Fields: []FieldTemplate{
		{Key: "DESC", Template: "{{ desc }}"},
	},
	Required: []string{"desc"},
}

// Type specs, each derived from its base with explicit composition.
var (
	enumSpec = Extend(baseSpec, KindMultiBitOut, []FieldTemplate{
		{Key: "VAL", Template: "{{ default }}"},
		{Key: "OUT", Template: "{{ out }}"},
	}, "choices")

	binaryOutSpec = Extend(baseSpec, KindMultiBitOutDir, []FieldTemplate{
		{Key: "VAL", Template: "{{ default }}"},
		{Key: "OUT", Template: "{{ out }}"},
		{Key: "SHFT", Template: "{{ shift }}"},
	})

	binaryInSpec = Extend(baseSpec, KindMultiBitInDir, []FieldTemplate{
		{Key: "VAL", Template: "{{ default }}"},
		{Key: "INP", Template: "{{ inp }}"},
		{Key: "SHFT", Template: "{{ shift }}"},
	})

	toggleSpec = Extend(baseSpec, KindBinaryOut, []FieldTemplate{
		{Key: "ZNAM", Template: "{{ zname }}"},
		{Key: "ONAM", Template: "{{ oname }}"},
		{Key: "HIGH", Template: "{{ high }}"},
	})

	stringSpec = Extend(baseSpec, KindStringOut, []FieldTemplate{
		{Key: "VAL", Template: "{{ default }}"},
	}, "max_length")

	integerSpec = Extend(baseSpec, KindLongOut, []FieldTemplate{
		{Key: "HOPR", Template: "{{ max_val }}"},
		{Key: "LOPR", Template: "{{ min_val }}"},
		{Key: "DRVH", Template: "{{ max_val }}"},
		{Key: "DRVL", Template: "{{ min_val }}"},
		{Key: "VAL", Template: "{{ default }}"},
		{Key: "EGU", Template: "{{ units }}"},
	}, "units")

	floatSpec = Extend(baseSpec, KindAnalogOut, []FieldTemplate{
		{Key: "DRVH", Template: "{{ max_val }}"},
		{Key: "DRVL", Template: "{{ min_val }}"},
		{Key: "HOPR", Template: "{{ max_val }}"},
		{Key: "LOPR", Template: "{{ min_val }}"},
		{Key: "PREC", Template: "{{ prec }}"},
		{Key: "EGU", Template: "{{ units }}"},
		{Key: "VAL", Template: "{{ default }}"},
	}, "units")

	calcSpec = Extend(baseSpec, KindCalc, []FieldTemplate{
		{Key: "CALC", Template: "{{ calc }}"},
		{Key: "SCAN", Template: "{{ scan }}"},
		{Key: "PREC", Template: "{{ prec }}"},
	}, "calc")

	calcOutSpec = Extend(calcSpec, KindCalcOut, []FieldTemplate{
		{Key: "OOPT", Template: "{{ oopt }}"},
		{Key: "DOPT", Template: "{{ dopt }}"},
		{Key: "OUT", Template: "{{ out }}"},
	})

	arraySpec = Extend(baseSpec, KindWaveform, []FieldTemplate{
		{Key: "NELM", Template: "{{ length }}"},
		{Key: "FTVL", Template: "{{ type }}"},
	}, "type", "length")
)
