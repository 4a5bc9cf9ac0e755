package brainwriting

// Turn sequencing is pure arithmetic over already-loaded aggregates. Rows on
// a sheet fill strictly in order; a turn is one participant filling the
// current row and finishing, which either rotates the lock (team mode) or
// releases it for the next joiner (broadcast mode).

// NextHolder returns the user who should hold the sheet with the given
// sequence number after `round` completed rows. Participants must be ordered
// by join time. At round 0 sheet i belongs to participant i; each completed
// row advances the assignment by one, so after N rounds every participant has
// held every sheet exactly once.
func NextHolder(participants []Participant, sheetSeq, round int) string {
	if len(participants) == 0 {
		return ""
	}
	return participants[(sheetSeq+round)%len(participants)].UserID
}

// CurrentRow returns the row the sheet's holder is writing: the first row
// that does not yet have all columns filled.
func CurrentRow(inputs []Input, sheetID string, columns int) int {
	filled := make(map[int]int)
	for _, in := range inputs {
		if in.SheetID == sheetID {
			filled[in.Row]++
		}
	}
	row := 0
	for filled[row] >= columns {
		row++
	}
	return row
}

// RowAuthors returns the distinct authors who have written into a row.
func RowAuthors(inputs []Input, sheetID string, row int) []string {
	seen := make(map[string]bool)
	var authors []string
	for _, in := range inputs {
		if in.SheetID == sheetID && in.Row == row && !seen[in.AuthorID] {
			seen[in.AuthorID] = true
			authors = append(authors, in.AuthorID)
		}
	}
	return authors
}

// TeamSheetComplete reports whether every participant has had a turn on the
// sheet: the distinct authors across its rows equal the participant count.
func TeamSheetComplete(inputs []Input, sheetID string, participantCount int) bool {
	if participantCount == 0 {
		return false
	}
	authors := make(map[string]bool)
	for _, in := range inputs {
		if in.SheetID == sheetID {
			authors[in.AuthorID] = true
		}
	}
	return len(authors) >= participantCount
}

// BroadcastComplete reports whether the sheet's fixed row budget has been
// filled. This predicate is deliberately independent of TeamSheetComplete;
// the two completion conditions are structurally different and stay separate.
func BroadcastComplete(inputs []Input, sheetID string, columns, rowBudget int) bool {
	return CurrentRow(inputs, sheetID, columns) >= rowBudget
}

// SessionComplete evaluates the mode's completion predicate over all sheets.
func SessionComplete(mode UsageMode, sheets []Sheet, inputs []Input, participantCount, columns, rowBudget int) bool {
	if len(sheets) == 0 {
		return false
	}
	for _, sheet := range sheets {
		switch mode {
		case ModeBroadcast:
			if !BroadcastComplete(inputs, sheet.ID, columns, rowBudget) {
				return false
			}
		default:
			if !TeamSheetComplete(inputs, sheet.ID, participantCount) {
				return false
			}
		}
	}
	return true
}
