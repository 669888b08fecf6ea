package metafile

import (
	"fmt"
	"path"
	"strings"
)

// Kind identifies a shared table format.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindImc
	KindEqp
	KindEqdp
	KindGmp
	KindEst
)

var kindNames = map[Kind]string{
	KindImc:  "imc",
	KindEqp:  "eqp",
	KindEqdp: "eqdp",
	KindGmp:  "gmp",
	KindEst:  "est",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if strings.EqualFold(name, string(text)) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown table kind %q", string(text))
}

// KindFromPath derives the table kind from a game path's extension.
func KindFromPath(p string) Kind {
	switch path.Ext(p) {
	case ".imc":
		return KindImc
	case ".eqp":
		return KindEqp
	case ".eqdp":
		return KindEqdp
	case ".gmp":
		return KindGmp
	case ".est":
		return KindEst
	default:
		return KindUnknown
	}
}

// Table is a parsed shared table.
type Table interface {
	// Kind reports the table format.
	Kind() Kind
	// Clone returns an independent deep copy.
	Clone() Table
	// Bytes serializes the table in its original binary layout.
	Bytes() []byte
}

// TableParseError reports an unreadable or corrupt base table.
type TableParseError struct {
	Path   string
	Reason string
}

func (e *TableParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("corrupt table: %s", e.Reason)
	}
	return fmt.Sprintf("corrupt table %s: %s", e.Path, e.Reason)
}

// Parse decodes data as a table of the given kind.
func Parse(kind Kind, p string, data []byte) (Table, error) {
	var (
		t   Table
		err error
	)
	switch kind {
	case KindImc:
		t, err = ParseImc(data)
	case KindEqp:
		t, err = ParseEqp(data)
	case KindEqdp:
		t, err = ParseEqdp(data)
	case KindGmp:
		t, err = ParseGmp(data)
	case KindEst:
		t, err = ParseEst(data)
	default:
		return nil, &TableParseError{Path: p, Reason: "unsupported table kind"}
	}
	if err != nil {
		if pe, ok := err.(*TableParseError); ok && pe.Path == "" {
			pe.Path = p
		}
		return nil, err
	}
	return t, nil
}
