package domain

// Change is a proposed content mutation of one Record.
//
// A Change only exists when OldContent differs from NewContent; use
// NewChange to build one.
type Change struct {
	// Record is the record as it currently exists at the provider.
	Record Record `json:"record"`

	// OldContent is the content currently held by the provider.
	OldContent string `json:"oldContent"`

	// NewContent is the content the record should be updated to.
	NewContent string `json:"newContent"`
}

// NewChange builds the Change that moves record to newContent.
// It returns false when the record already holds newContent.
func NewChange(record Record, newContent string) (Change, bool) {
	if record.Content == newContent {
		return Change{}, false
	}
	return Change{
		Record:     record,
		OldContent: record.Content,
		NewContent: newContent,
	}, true
}

// Key returns the identity of the record the change targets.
func (c Change) Key() Key {
	return c.Record.Key()
}

// Target returns the full record tuple to send to the provider.
func (c Change) Target() Record {
	return c.Record.WithContent(c.NewContent)
}
