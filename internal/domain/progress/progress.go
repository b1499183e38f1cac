package progress

// Progress is a verified/total count with a derived whole-number percentage.
// It is recomputed on every read.
type Progress struct {
	Verified   int  `json:"verified"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
	IsEmpty    bool `json:"is_empty"`
}

// New builds a Progress from raw counts.
func New(verified, total int) Progress {
	return Progress{
		Verified:   verified,
		Total:      total,
		Percentage: Percentage(verified, total),
		IsEmpty:    total == 0,
	}
}

// Percentage rounds verified/total*100 half-up using integers only, so 1/3 is
// 33 and 2/3 is 67. An empty node is 0.
func Percentage(verified, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*verified + total) / (2 * total)
}

// Add sums counts and recomputes the percentage from the sums.
func (p Progress) Add(o Progress) Progress {
	return New(p.Verified+o.Verified, p.Total+o.Total)
}

// Complete reports whether every item of a non-empty node is verified. The
// zero Progress is never complete.
func (p Progress) Complete() bool {
	return !p.IsEmpty && p.Total > 0 && p.Verified == p.Total
}

type Level string

const (
	LevelProject      Level = "project"
	LevelOrder        Level = "order"
	LevelDeliveryNote Level = "delivery-note"
)

func (l Level) Valid() bool {
	switch l {
	case LevelProject, LevelOrder, LevelDeliveryNote:
		return true
	}
	return false
}

// ChildProgress is one row of a per-child breakdown.
type ChildProgress struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Progress
}

// Report is the progress of a node plus, for orders and projects, the
// progress of each direct child.
type Report struct {
	Level Level `json:"level"`
	ID    int64 `json:"id"`
	Progress
	Complete bool            `json:"complete"`
	Children []ChildProgress `json:"children,omitempty"`
}
