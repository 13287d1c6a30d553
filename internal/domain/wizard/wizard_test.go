package wizard

import (
	"testing"
	"time"

	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock advances one millisecond per call so generated ids differ
func tickingClock() shared.Clock {
	t := time.UnixMilli(1767225600000)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func addRoom(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.EnterPhase(PhaseRooms))
	require.NoError(t, w.StartNewRoom())
	for i := 0; i < 6; i++ {
		_, err := w.AdvanceRoom()
		require.NoError(t, err)
	}
}

func completeAll(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.EnterPhase(PhaseBasicInfo))
	for i := 0; i < 6; i++ {
		_, err := w.AdvanceBasicInfo()
		require.NoError(t, err)
	}
	addRoom(t, w)
	require.NoError(t, w.AddPhoto("data:image/png;base64,AAAA"))
	require.NoError(t, w.EnterPhase(PhaseFinal))
	for i := 0; i < 2; i++ {
		_, err := w.AdvanceFinal()
		require.NoError(t, err)
	}
}

func TestNew(t *testing.T) {
	t.Run("fresh draft", func(t *testing.T) {
		w := New(nil, tickingClock())
		s := w.State()
		assert.Equal(t, PhaseDashboard, s.Phase)
		assert.Contains(t, s.Draft.ID, "hotel-")
		assert.False(t, s.EditingExisting)
		assert.Nil(t, s.EditingRoomIndex)
		assert.False(t, s.CanFinish)
	})

	t.Run("editing copies the initial record", func(t *testing.T) {
		initial := property.NewDraftRecord(time.Now())
		initial.Name = "Original"
		w := New(initial, tickingClock())
		require.NoError(t, w.UpdateDraft(func(r *property.Record) { r.Name = "Changed" }))

		assert.Equal(t, "Original", initial.Name)
		assert.Equal(t, "Changed", w.Draft().Name)
		assert.Equal(t, initial.ID, w.Draft().ID)
		assert.True(t, w.State().EditingExisting)
	})
}

func TestEnterPhase(t *testing.T) {
	w := New(nil, tickingClock())

	require.NoError(t, w.EnterPhase(PhaseBasicInfo))
	_, _ = w.AdvanceBasicInfo()
	assert.Equal(t, BasicIdentity, w.State().BasicSubStep)

	require.NoError(t, w.EnterPhase(PhaseBasicInfo))
	assert.Equal(t, BasicLocation, w.State().BasicSubStep)

	require.NoError(t, w.EnterPhase(PhaseRooms))
	assert.Equal(t, RoomList, w.State().RoomSubStep)

	require.NoError(t, w.EnterPhase(PhaseFinal))
	assert.Equal(t, FinalPayments, w.State().FinalSubStep)

	err := w.EnterPhase(Phase("FLOW_UNKNOWN"))
	require.Error(t, err)
	assert.Equal(t, "INVALID_PHASE", shared.CodeOf(err))
}

func TestAdvanceBasicInfo(t *testing.T) {
	t.Run("six calls complete the phase", func(t *testing.T) {
		w := New(nil, tickingClock())
		require.NoError(t, w.EnterPhase(PhaseBasicInfo))

		expected := []BasicSubStep{BasicIdentity, BasicAmenities, BasicServices, BasicLanguages, BasicRules}
		for _, step := range expected {
			completed, err := w.AdvanceBasicInfo()
			require.NoError(t, err)
			assert.False(t, completed)
			assert.Equal(t, step, w.State().BasicSubStep)
			assert.False(t, w.Draft().IsBasicInfoComplete)
		}

		completed, err := w.AdvanceBasicInfo()
		require.NoError(t, err)
		assert.True(t, completed)
		assert.True(t, w.Draft().IsBasicInfoComplete)
		assert.Equal(t, PhaseDashboard, w.Phase())
	})

	t.Run("empty fields do not block", func(t *testing.T) {
		w := New(nil, tickingClock())
		require.NoError(t, w.EnterPhase(PhaseBasicInfo))
		for i := 0; i < 6; i++ {
			_, err := w.AdvanceBasicInfo()
			require.NoError(t, err)
		}
		assert.Empty(t, w.Draft().Name)
		assert.True(t, w.Draft().IsBasicInfoComplete)
	})

	t.Run("rejected outside its phase", func(t *testing.T) {
		w := New(nil, tickingClock())
		_, err := w.AdvanceBasicInfo()
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestRoomFlow(t *testing.T) {
	t.Run("new room is appended with a distinct id", func(t *testing.T) {
		initial := property.ClaimRecord(property.Listing{ID: "1", Name: "Atlantis", PricePerNight: decimal.NewFromInt(1200)}, time.Now())
		w := New(initial, tickingClock())
		before := len(w.Draft().Rooms)

		require.NoError(t, w.EnterPhase(PhaseRooms))
		require.NoError(t, w.StartNewRoom())
		assert.Equal(t, RoomDetails, w.State().RoomSubStep)

		var committed bool
		for i := 0; i < 6; i++ {
			var err error
			committed, err = w.AdvanceRoom()
			require.NoError(t, err)
			if i < 5 {
				assert.False(t, committed)
			}
		}
		assert.True(t, committed)

		rooms := w.Draft().Rooms
		require.Len(t, rooms, before+1)
		added := rooms[len(rooms)-1]
		assert.NotEmpty(t, added.ID)
		for _, r := range rooms[:len(rooms)-1] {
			assert.NotEqual(t, r.ID, added.ID)
		}
		assert.Equal(t, "Double Room with Private Bathroom", added.Name)
		assert.True(t, w.Draft().IsRoomsComplete)
		assert.Equal(t, RoomList, w.State().RoomSubStep)
		assert.Equal(t, PhaseRooms, w.Phase())
	})

	t.Run("edit replaces in place", func(t *testing.T) {
		w := New(nil, tickingClock())
		addRoom(t, w)
		addRoom(t, w)
		original := w.Draft().Rooms

		require.NoError(t, w.StartEditRoom(1))
		require.NotNil(t, w.State().EditingRoomIndex)
		assert.Equal(t, 1, *w.State().EditingRoomIndex)

		require.NoError(t, w.UpdateDraftRoom(func(r *property.RoomUnit) {
			r.Name = "Family Suite"
			r.BasePrice = decimal.NewFromInt(900)
			r.ID = "tampered"
		}))
		for i := 0; i < 6; i++ {
			_, err := w.AdvanceRoom()
			require.NoError(t, err)
		}

		rooms := w.Draft().Rooms
		require.Len(t, rooms, 2)
		assert.Equal(t, original[0], rooms[0])
		assert.Equal(t, original[1].ID, rooms[1].ID)
		assert.Equal(t, "Family Suite", rooms[1].Name)
		assert.True(t, rooms[1].BasePrice.Equal(decimal.NewFromInt(900)))
		assert.Nil(t, w.State().EditingRoomIndex)
	})

	t.Run("advance needs a room draft", func(t *testing.T) {
		w := New(nil, tickingClock())
		require.NoError(t, w.EnterPhase(PhaseRooms))
		_, err := w.AdvanceRoom()
		assert.Equal(t, "NO_ROOM_DRAFT", shared.CodeOf(err))
	})

	t.Run("negative beds are not committed", func(t *testing.T) {
		w := New(nil, tickingClock())
		require.NoError(t, w.EnterPhase(PhaseRooms))
		require.NoError(t, w.StartNewRoom())
		require.NoError(t, w.UpdateDraftRoom(func(r *property.RoomUnit) { r.Beds.Single = -1 }))
		for i := 0; i < 5; i++ {
			_, err := w.AdvanceRoom()
			require.NoError(t, err)
		}

		committed, err := w.AdvanceRoom()
		assert.False(t, committed)
		assert.Equal(t, "INVALID_ROOM", shared.CodeOf(err))
		assert.Empty(t, w.Draft().Rooms)
		assert.False(t, w.Draft().IsRoomsComplete)
	})

	t.Run("edit index out of range", func(t *testing.T) {
		w := New(nil, tickingClock())
		require.NoError(t, w.EnterPhase(PhaseRooms))
		err := w.StartEditRoom(0)
		assert.Equal(t, "ROOM_NOT_FOUND", shared.CodeOf(err))
	})
}

func TestDeleteRoom(t *testing.T) {
	t.Run("keeps flag while rooms remain", func(t *testing.T) {
		w := New(nil, tickingClock())
		addRoom(t, w)
		addRoom(t, w)

		require.NoError(t, w.DeleteRoom(0))
		assert.Len(t, w.Draft().Rooms, 1)
		assert.True(t, w.Draft().IsRoomsComplete)
	})

	t.Run("last room clears the flag until the add flow completes", func(t *testing.T) {
		w := New(nil, tickingClock())
		addRoom(t, w)

		require.NoError(t, w.DeleteRoom(0))
		assert.Empty(t, w.Draft().Rooms)
		assert.False(t, w.Draft().IsRoomsComplete)

		require.NoError(t, w.StartNewRoom())
		for i := 0; i < 5; i++ {
			_, err := w.AdvanceRoom()
			require.NoError(t, err)
			assert.False(t, w.Draft().IsRoomsComplete)
		}
		_, err := w.AdvanceRoom()
		require.NoError(t, err)
		assert.True(t, w.Draft().IsRoomsComplete)
		assert.Len(t, w.Draft().Rooms, 1)
	})

	t.Run("deleting the room under edit drops the edit", func(t *testing.T) {
		w := New(nil, tickingClock())
		addRoom(t, w)
		require.NoError(t, w.StartEditRoom(0))
		require.NoError(t, w.DeleteRoom(0))
		assert.Nil(t, w.State().EditingRoomIndex)
		assert.Equal(t, RoomList, w.State().RoomSubStep)
	})
}

func TestAdvanceFinal(t *testing.T) {
	w := New(nil, tickingClock())
	require.NoError(t, w.EnterPhase(PhaseFinal))

	completed, err := w.AdvanceFinal()
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, FinalImportantInfo, w.State().FinalSubStep)

	completed, err = w.AdvanceFinal()
	require.NoError(t, err)
	assert.True(t, completed)
	assert.True(t, w.Draft().IsFinalStepsComplete)
	assert.Equal(t, PhaseDashboard, w.Phase())
}

func TestPhotos(t *testing.T) {
	w := New(nil, tickingClock())
	require.NoError(t, w.AddPhoto("a"))
	require.NoError(t, w.AddPhoto("b"))
	assert.True(t, w.Draft().IsPhotosComplete)

	require.NoError(t, w.RemovePhoto(0))
	require.NoError(t, w.RemovePhoto(0))
	assert.Empty(t, w.Draft().Photos)
	assert.True(t, w.Draft().IsPhotosComplete, "photos flag is sticky")

	assert.Equal(t, "PHOTO_NOT_FOUND", shared.CodeOf(w.RemovePhoto(0)))
	assert.Equal(t, "EMPTY_ASSET", shared.CodeOf(w.AddPhoto("")))
}

func TestUpdateDraft_ProtectsTransitionOwnedFields(t *testing.T) {
	w := New(nil, tickingClock())
	id := w.Draft().ID

	require.NoError(t, w.UpdateDraft(func(r *property.Record) {
		r.ID = "other"
		r.Name = "Desert Rose"
		r.IsFinalStepsComplete = true
		r.Photos = append(r.Photos, "x")
	}))

	d := w.Draft()
	assert.Equal(t, id, d.ID)
	assert.Equal(t, "Desert Rose", d.Name)
	assert.False(t, d.IsFinalStepsComplete)
	assert.Empty(t, d.Photos)
}

func TestFinish(t *testing.T) {
	t.Run("rejected until every phase is complete", func(t *testing.T) {
		w := New(nil, tickingClock())
		require.NoError(t, w.EnterPhase(PhaseBasicInfo))
		for i := 0; i < 6; i++ {
			_, _ = w.AdvanceBasicInfo()
		}

		rec, err := w.Finish()
		assert.Nil(t, rec)
		assert.ErrorIs(t, err, shared.ErrPhaseIncomplete)
		assert.False(t, w.Finished())
	})

	t.Run("hands over the draft and closes the wizard", func(t *testing.T) {
		w := New(nil, tickingClock())
		completeAll(t, w)
		assert.True(t, w.State().CanFinish)

		rec, err := w.Finish()
		require.NoError(t, err)
		assert.True(t, rec.AllPhasesComplete())
		assert.True(t, w.Finished())

		_, err = w.Finish()
		assert.Equal(t, "WIZARD_FINISHED", shared.CodeOf(err))
		assert.Error(t, w.EnterPhase(PhaseRooms))
	})

	t.Run("invalid draft is not handed over", func(t *testing.T) {
		w := New(nil, tickingClock())
		completeAll(t, w)
		require.NoError(t, w.UpdateDraft(func(r *property.Record) { r.StarRating = 9 }))

		rec, err := w.Finish()
		assert.Nil(t, rec)
		assert.Equal(t, "INVALID_STAR_RATING", shared.CodeOf(err))
		assert.False(t, w.Finished())
	})

	t.Run("stale flags still allow finishing", func(t *testing.T) {
		w := New(nil, tickingClock())
		completeAll(t, w)
		require.NoError(t, w.RemovePhoto(0))
		require.NoError(t, w.UpdateDraft(func(r *property.Record) { r.Name = "" }))

		_, err := w.Finish()
		assert.NoError(t, err)
	})
}
