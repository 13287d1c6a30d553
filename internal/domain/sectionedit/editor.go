package sectionedit

import (
	"fmt"

	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/shared"
)

// CommitFunc receives the merged record when a section is saved
type CommitFunc func(rec *property.Record) error

// Editor lets one section of a committed record be edited at a time.
// The committed record only changes through Save.
type Editor struct {
	schema    Schema
	committed *property.Record
	editing   SectionID
	draft     *property.Record
	commit    CommitFunc
}

// State is a read-only snapshot of the editor
type State struct {
	EditingSection SectionID        `json:"editingSection,omitempty"`
	Draft          *property.Record `json:"draft,omitempty"`
	Committed      *property.Record `json:"committed"`
}

// NewEditor opens a committed record for management
func NewEditor(schema Schema, committed *property.Record, commit CommitFunc) *Editor {
	return &Editor{
		schema:    schema,
		committed: committed.Clone(),
		commit:    commit,
	}
}

// State returns a snapshot of the editor
func (e *Editor) State() State {
	return State{
		EditingSection: e.editing,
		Draft:          e.draft.Clone(),
		Committed:      e.committed.Clone(),
	}
}

// Editing returns the section in edit mode, or an empty id
func (e *Editor) Editing() SectionID {
	return e.editing
}

// RecordID returns the id of the record under management
func (e *Editor) RecordID() string {
	return e.committed.ID
}

// BeginEdit puts section id in edit mode, seeding the draft from the committed
// record. Any other uncommitted section edit is discarded.
func (e *Editor) BeginEdit(id SectionID) error {
	if _, ok := e.schema.Lookup(id); !ok {
		return shared.NewDomainError("UNKNOWN_SECTION", fmt.Sprintf("unknown section %q", id))
	}
	e.editing = id
	e.draft = e.committed.Clone()
	return nil
}

// UpdateDraft applies edits to the draft of the section being edited
func (e *Editor) UpdateDraft(mutate func(r *property.Record)) error {
	if e.editing == "" {
		return shared.NewDomainError("NOT_EDITING", "no section is being edited")
	}
	mutate(e.draft)
	e.draft.ID = e.committed.ID
	return nil
}

// AppendRoom adds a room to the rooms draft, using the default template when room is nil
func (e *Editor) AppendRoom(room *property.RoomUnit, clock shared.Clock) error {
	if e.editing != SectionRooms {
		return shared.NewDomainError("NOT_EDITING", "rooms section is not being edited")
	}
	r := property.DefaultRoomTemplate()
	if room != nil {
		r = room.Clone()
	}
	r.ID = property.NextRoomID(e.draft.Rooms, clock())
	e.draft.Rooms = append(e.draft.Rooms, r)
	return nil
}

// RemoveRoom removes the room with id from the rooms draft
func (e *Editor) RemoveRoom(id string) error {
	if e.editing != SectionRooms {
		return shared.NewDomainError("NOT_EDITING", "rooms section is not being edited")
	}
	idx := e.draft.RoomIndex(id)
	if idx < 0 {
		return shared.NewDomainError("ROOM_NOT_FOUND", fmt.Sprintf("no room with id %q", id))
	}
	e.draft.Rooms = append(e.draft.Rooms[:idx:idx], e.draft.Rooms[idx+1:]...)
	return nil
}

// Save merges the edited section into the committed record and hands the
// result to the commit callback. Fields of other sections are untouched.
func (e *Editor) Save() (*property.Record, error) {
	if e.editing == "" {
		return nil, shared.NewDomainError("NOT_EDITING", "no section is being edited")
	}
	section, _ := e.schema.Lookup(e.editing)

	merged := e.committed.Clone()
	section.Apply(merged, e.draft)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	if e.commit != nil {
		if err := e.commit(merged.Clone()); err != nil {
			return nil, err
		}
	}
	e.committed = merged
	e.editing = ""
	e.draft = nil
	return merged.Clone(), nil
}

// Cancel discards the draft and leaves edit mode
func (e *Editor) Cancel() {
	e.editing = ""
	e.draft = nil
}

// Refresh replaces the committed record after an outside change. An open
// draft is reseeded from it.
func (e *Editor) Refresh(committed *property.Record) {
	e.committed = committed.Clone()
	if e.editing != "" {
		e.draft = e.committed.Clone()
	}
}
