package wizard

import (
	"fmt"

	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/shared"
)

// Wizard is the state of one onboarding session for a single record draft.
// It is owned by exactly one session and is not safe for concurrent use.
type Wizard struct {
	phase            Phase
	basicStep        BasicSubStep
	roomStep         RoomSubStep
	finalStep        FinalSubStep
	draft            *property.Record
	draftRoom        property.RoomUnit
	editingRoomIndex int
	editing          bool
	finished         bool
	clock            shared.Clock
}

// State is a read-only snapshot of the wizard
type State struct {
	Phase            Phase             `json:"phase"`
	BasicSubStep     BasicSubStep      `json:"basicSubStep"`
	RoomSubStep      RoomSubStep       `json:"roomSubStep"`
	FinalSubStep     FinalSubStep      `json:"finalSubStep"`
	Draft            *property.Record  `json:"draft"`
	DraftRoom        property.RoomUnit `json:"draftRoom"`
	EditingRoomIndex *int              `json:"editingRoomIndex"`
	EditingExisting  bool              `json:"editingExisting"`
	CanFinish        bool              `json:"canFinish"`
}

// New starts a wizard. A nil initial record starts a brand-new draft; otherwise
// the wizard edits a copy of initial and never touches the caller's value.
func New(initial *property.Record, clock shared.Clock) *Wizard {
	if clock == nil {
		clock = shared.SystemClock
	}
	w := &Wizard{
		phase:            PhaseDashboard,
		basicStep:        BasicLocation,
		roomStep:         RoomList,
		finalStep:        FinalPayments,
		draftRoom:        property.DefaultRoomTemplate(),
		editingRoomIndex: -1,
		clock:            clock,
	}
	if initial != nil {
		w.draft = initial.Clone()
		w.editing = true
	} else {
		w.draft = property.NewDraftRecord(clock())
	}
	return w
}

// State returns a snapshot of the wizard
func (w *Wizard) State() State {
	s := State{
		Phase:           w.phase,
		BasicSubStep:    w.basicStep,
		RoomSubStep:     w.roomStep,
		FinalSubStep:    w.finalStep,
		Draft:           w.draft.Clone(),
		DraftRoom:       w.draftRoom.Clone(),
		EditingExisting: w.editing,
		CanFinish:       w.draft.AllPhasesComplete() && !w.finished,
	}
	if w.editingRoomIndex >= 0 {
		idx := w.editingRoomIndex
		s.EditingRoomIndex = &idx
	}
	return s
}

// Phase returns the current phase
func (w *Wizard) Phase() Phase {
	return w.phase
}

// Draft returns a copy of the in-progress record
func (w *Wizard) Draft() *property.Record {
	return w.draft.Clone()
}

// Finished reports whether Finish has handed the draft over
func (w *Wizard) Finished() bool {
	return w.finished
}

// EnterPhase switches phase. Entering a phase with a sub-flow restarts it at its
// first step; Rooms lands on the room list overview.
func (w *Wizard) EnterPhase(p Phase) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if !p.IsValid() {
		return shared.NewDomainError("INVALID_PHASE", fmt.Sprintf("unknown phase %q", p))
	}
	w.phase = p
	switch p {
	case PhaseBasicInfo:
		w.basicStep = BasicLocation
	case PhaseRooms:
		w.roomStep = RoomList
	case PhaseFinal:
		w.finalStep = FinalPayments
	}
	return nil
}

// ReturnToDashboard leaves the current phase without completing it
func (w *Wizard) ReturnToDashboard() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	w.phase = PhaseDashboard
	return nil
}

// AdvanceBasicInfo moves to the next basic info step. Advancing past Rules marks
// basic info complete and returns to the dashboard. There is no validation gate.
func (w *Wizard) AdvanceBasicInfo() (completed bool, err error) {
	if err := w.checkPhase(PhaseBasicInfo); err != nil {
		return false, err
	}
	if step, ok := next(basicSequence, w.basicStep); ok {
		w.basicStep = step
		return false, nil
	}
	w.draft.IsBasicInfoComplete = true
	w.phase = PhaseDashboard
	return true, nil
}

// StartNewRoom resets the room draft to the default template and opens its first step
func (w *Wizard) StartNewRoom() error {
	if err := w.checkPhase(PhaseRooms); err != nil {
		return err
	}
	w.editingRoomIndex = -1
	w.draftRoom = property.DefaultRoomTemplate()
	w.roomStep = RoomDetails
	return nil
}

// StartEditRoom loads an existing room into the room draft
func (w *Wizard) StartEditRoom(index int) error {
	if err := w.checkPhase(PhaseRooms); err != nil {
		return err
	}
	if err := w.checkRoomIndex(index); err != nil {
		return err
	}
	w.editingRoomIndex = index
	w.draftRoom = w.draft.Rooms[index].Clone()
	w.roomStep = RoomDetails
	return nil
}

// AdvanceRoom moves to the next room step. Advancing past Plans commits the room
// draft, either replacing the edited room or appending a new one, marks rooms
// complete and returns to the room list.
func (w *Wizard) AdvanceRoom() (committed bool, err error) {
	if err := w.checkPhase(PhaseRooms); err != nil {
		return false, err
	}
	if w.roomStep == RoomList {
		return false, shared.NewDomainError("NO_ROOM_DRAFT", "start or edit a room first")
	}
	if step, ok := next(roomSequence, w.roomStep); ok {
		w.roomStep = step
		return false, nil
	}
	if err := w.draftRoom.Validate(); err != nil {
		return false, err
	}

	if w.editingRoomIndex >= 0 && w.editingRoomIndex < len(w.draft.Rooms) {
		w.draft.Rooms[w.editingRoomIndex] = w.draftRoom.Clone()
	} else {
		room := w.draftRoom.Clone()
		room.ID = property.NextRoomID(w.draft.Rooms, w.clock())
		w.draft.Rooms = append(w.draft.Rooms, room)
	}
	w.editingRoomIndex = -1
	w.draft.IsRoomsComplete = true
	w.roomStep = RoomList
	return true, nil
}

// DeleteRoom removes a room. Unlike every other flag, rooms completion is
// recomputed here from what was there before the removal.
func (w *Wizard) DeleteRoom(index int) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if err := w.checkRoomIndex(index); err != nil {
		return err
	}
	prior := len(w.draft.Rooms)
	rooms := make([]property.RoomUnit, 0, prior-1)
	rooms = append(rooms, w.draft.Rooms[:index]...)
	rooms = append(rooms, w.draft.Rooms[index+1:]...)
	w.draft.Rooms = rooms
	w.draft.IsRoomsComplete = prior > 1

	switch {
	case w.editingRoomIndex == index:
		w.editingRoomIndex = -1
		w.roomStep = RoomList
	case w.editingRoomIndex > index:
		w.editingRoomIndex--
	}
	return nil
}

// AdvanceFinal moves through the legal and financial steps. Advancing past
// ImportantInfo marks the final step complete and returns to the dashboard.
func (w *Wizard) AdvanceFinal() (completed bool, err error) {
	if err := w.checkPhase(PhaseFinal); err != nil {
		return false, err
	}
	if step, ok := next(finalSequence, w.finalStep); ok {
		w.finalStep = step
		return false, nil
	}
	w.draft.IsFinalStepsComplete = true
	w.phase = PhaseDashboard
	return true, nil
}

// AddPhoto appends an asset reference and marks photos complete
func (w *Wizard) AddPhoto(ref string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if ref == "" {
		return shared.NewDomainError("EMPTY_ASSET", "asset reference is empty")
	}
	w.draft.Photos = append(w.draft.Photos, ref)
	w.draft.IsPhotosComplete = true
	return nil
}

// RemovePhoto removes a photo by index. The photos flag stays set.
func (w *Wizard) RemovePhoto(index int) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if index < 0 || index >= len(w.draft.Photos) {
		return shared.NewDomainError("PHOTO_NOT_FOUND", fmt.Sprintf("no photo at index %d", index))
	}
	photos := make([]string, 0, len(w.draft.Photos)-1)
	photos = append(photos, w.draft.Photos[:index]...)
	photos = append(photos, w.draft.Photos[index+1:]...)
	w.draft.Photos = photos
	return nil
}

// UpdateDraft applies field edits to the draft record. Identity, collections and
// completion flags are owned by the transitions and are restored after mutate.
func (w *Wizard) UpdateDraft(mutate func(r *property.Record)) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	edited := w.draft.Clone()
	mutate(edited)

	edited.ID = w.draft.ID
	edited.Rooms = w.draft.Rooms
	edited.Photos = w.draft.Photos
	edited.IsBasicInfoComplete = w.draft.IsBasicInfoComplete
	edited.IsRoomsComplete = w.draft.IsRoomsComplete
	edited.IsPhotosComplete = w.draft.IsPhotosComplete
	edited.IsFinalStepsComplete = w.draft.IsFinalStepsComplete
	w.draft = edited
	return nil
}

// UpdateDraftRoom applies field edits to the room being configured
func (w *Wizard) UpdateDraftRoom(mutate func(r *property.RoomUnit)) error {
	if err := w.checkPhase(PhaseRooms); err != nil {
		return err
	}
	if w.roomStep == RoomList {
		return shared.NewDomainError("NO_ROOM_DRAFT", "start or edit a room first")
	}
	edited := w.draftRoom.Clone()
	mutate(&edited)
	edited.ID = w.draftRoom.ID
	w.draftRoom = edited
	return nil
}

// Finish hands over the completed draft and ends the wizard.
// It is rejected until all four completion flags are set.
func (w *Wizard) Finish() (*property.Record, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	if !w.draft.AllPhasesComplete() {
		return nil, shared.ErrPhaseIncomplete
	}
	if err := w.draft.Validate(); err != nil {
		return nil, err
	}
	w.finished = true
	return w.draft.Clone(), nil
}

func (w *Wizard) checkOpen() error {
	if w.finished {
		return shared.NewDomainError("WIZARD_FINISHED", "registration has already been submitted")
	}
	return nil
}

func (w *Wizard) checkPhase(p Phase) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if w.phase != p {
		return shared.WrapDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("wizard is in phase %s, not %s", w.phase, p), nil)
	}
	return nil
}

func (w *Wizard) checkRoomIndex(index int) error {
	if index < 0 || index >= len(w.draft.Rooms) {
		return shared.NewDomainError("ROOM_NOT_FOUND", fmt.Sprintf("no room at index %d", index))
	}
	return nil
}
