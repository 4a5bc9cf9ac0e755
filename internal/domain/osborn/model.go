package osborn

import "time"

// Lens is one of the nine Osborn checklist prompts. The set is closed.
type Lens string

const (
	LensPutToOtherUses Lens = "put_to_other_uses"
	LensAdapt          Lens = "adapt"
	LensModify         Lens = "modify"
	LensMagnify        Lens = "magnify"
	LensMinify         Lens = "minify"
	LensSubstitute     Lens = "substitute"
	LensRearrange      Lens = "rearrange"
	LensReverse        Lens = "reverse"
	LensCombine        Lens = "combine"
)

// Lenses lists every lens in presentation order.
var Lenses = []Lens{
	LensPutToOtherUses,
	LensAdapt,
	LensModify,
	LensMagnify,
	LensMinify,
	LensSubstitute,
	LensRearrange,
	LensReverse,
	LensCombine,
}

// Valid reports whether the lens is one of the nine known prompts.
func (l Lens) Valid() bool {
	for _, known := range Lenses {
		if l == known {
			return true
		}
	}
	return false
}

// Checklist is a nine-lens idea checklist owned by a single user.
type Checklist struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	OwnerID   string    `json:"owner_id"`
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Answer is the content recorded for one lens, unique per (checklist, lens).
type Answer struct {
	ChecklistID string    `json:"checklist_id"`
	Lens        Lens      `json:"lens"`
	Content     string    `json:"content"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sheet is a checklist with its recorded answers.
type Sheet struct {
	Checklist Checklist `json:"checklist"`
	Answers   []Answer  `json:"answers"`
}
