package records

// Kind is the database record-kind tag stamped on every rendered block.
type Kind string

// Record kinds understood by the soft IOC server.
const (
	KindAnalogIn       Kind = "ai"
	KindAnalogOut      Kind = "ao"
	KindBinaryOut      Kind = "bo"
	KindLongOut        Kind = "longout"
	KindMultiBitOut    Kind = "mbbo"
	KindMultiBitOutDir Kind = "mbboDirect"
	KindMultiBitInDir  Kind = "mbbiDirect"
	KindStringOut      Kind = "stringout"
	KindWaveform       Kind = "waveform"
	KindCalc           Kind = "calc"
	KindCalcOut        Kind = "calcout"
)

// enumSlots is the fixed list of symbolic slot prefixes for enumerated
// choices. Each choice claims one slot and emits a <slot>VL/<slot>ST field
// pair. The slot count is the hard ceiling on enumerated choices.
var enumSlots = []string{
	"ZR", "ON", "TW", "TH", "FR", "FV", "SX", "SV",
	"EI", "NI", "TE", "EL", "TV", "TT", "FT", "FF",
}

// MaxChoices is the number of symbolic enum slots available to a single
// enumerated record.
const MaxChoices = 16

// ElementKind names the semantic element type of an array record. The three
// canonical kinds map to storage tags; anything else passes through to the
// database unchanged, which leaves room for server-specific storage tags.
type ElementKind string

const (
	ElementText  ElementKind = "string"
	ElementInt   ElementKind = "int"
	ElementFloat ElementKind = "float"
)

// storageTag maps an element kind to the waveform FTVL storage tag.
func storageTag(kind ElementKind) string {
	switch kind {
	case ElementText:
		return "STRING"
	case ElementInt:
		return "LONG"
	case ElementFloat:
		return "FLOAT"
	default:
		return string(kind)
	}
}

// stringSwitchLength is the maximum inline string length. Declared lengths
// above it force the record onto a character waveform.
const stringSwitchLength = 40

// calcInputs are the link letters a calculation record can bind, INPA
// through INPL.
const calcInputs = "ABCDEFGHIJKL"
