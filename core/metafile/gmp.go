package metafile

// GmpFile is the gimmick parameter table (visor behaviour per helmet set).
type GmpFile struct {
	blockedTable
}

// NewGmpFile returns a table holding only the first block.
func NewGmpFile() *GmpFile {
	return &GmpFile{blockedTable: newBlockedTable()}
}

// ParseGmp decodes a GMP table.
func ParseGmp(data []byte) (*GmpFile, error) {
	t, err := parseBlocked(data)
	if err != nil {
		return nil, err
	}
	return &GmpFile{blockedTable: t}, nil
}

func (f *GmpFile) Kind() Kind { return KindGmp }

func (f *GmpFile) Clone() Table {
	c := *f
	return &c
}

func (f *GmpFile) Bytes() []byte { return f.bytes() }

// Entry returns the entry for setID.
func (f *GmpFile) Entry(setID uint16) uint64 { return f.entry(setID) }

// SetEntry replaces the entry for setID.
func (f *GmpFile) SetEntry(setID uint16, value uint64) error { return f.setEntry(setID, value) }
