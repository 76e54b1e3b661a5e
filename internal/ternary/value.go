package ternary

// Value is a three-valued truth used to represent sensor validity
// independent of numeric confidence.
type Value int8

const (
	False   Value = -1
	Unknown Value = 0
	True    Value = 1
)

func (v Value) String() string {
	switch v {
	case False:
		return "FALSE"
	case Unknown:
		return "UNKNOWN"
	case True:
		return "TRUE"
	default:
		return "INVALID"
	}
}
