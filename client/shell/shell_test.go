package shell

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placegallery/backend/models"
)

var errBackend = errors.New("backend unavailable")

type fakeAPI struct {
	mu sync.Mutex

	cards []models.Card
	user  models.User
	err   map[string]error

	likeCalls []bool
	deleted   []string
}

func (f *fakeAPI) fail(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err[op]
}

func (f *fakeAPI) GetInitialCards(ctx context.Context) ([]models.Card, error) {
	if err := f.fail("cards"); err != nil {
		return nil, err
	}
	return f.cards, nil
}

func (f *fakeAPI) GetUsersData(ctx context.Context) (models.User, error) {
	if err := f.fail("user"); err != nil {
		return models.User{}, err
	}
	return f.user, nil
}

func (f *fakeAPI) SetUsersData(ctx context.Context, p models.ProfileUpdate) (models.User, error) {
	if err := f.fail("profile"); err != nil {
		return models.User{}, err
	}
	u := f.user
	u.Name, u.About = p.Name, p.About
	return u, nil
}

func (f *fakeAPI) SetAvatar(ctx context.Context, a models.AvatarUpdate) (models.User, error) {
	if err := f.fail("avatar"); err != nil {
		return models.User{}, err
	}
	u := f.user
	u.Avatar = a.Avatar
	return u, nil
}

func (f *fakeAPI) CreateCard(ctx context.Context, nc models.NewCard) (models.Card, error) {
	if err := f.fail("create"); err != nil {
		return models.Card{}, err
	}
	return models.Card{ID: "new-" + nc.Name, Name: nc.Name, Link: nc.Link, Owner: f.user, Likes: []models.User{}}, nil
}

func (f *fakeAPI) ChangeLikeCardStatus(ctx context.Context, id string, liked bool) (models.Card, error) {
	f.mu.Lock()
	f.likeCalls = append(f.likeCalls, liked)
	f.mu.Unlock()
	if err := f.fail("like"); err != nil {
		return models.Card{}, err
	}
	for _, c := range f.cards {
		if c.ID != id {
			continue
		}
		c.Likes = nil
		if liked {
			c.Likes = []models.User{f.user}
		}
		return c, nil
	}
	return models.Card{}, errors.New("no such card")
}

func (f *fakeAPI) DeleteCard(ctx context.Context, id string) error {
	if err := f.fail("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return nil
}

var (
	me    = models.User{ID: "me", Name: "Jacques", About: "Explorer", Avatar: "https://img/me.png"}
	other = models.User{ID: "other", Name: "Neighbour"}

	cardA = models.Card{ID: "a", Name: "Arkhyz", Link: "https://img/a.jpg", Owner: me, Likes: []models.User{me, other}}
	cardB = models.Card{ID: "b", Name: "Baikal", Link: "https://img/b.jpg", Owner: other, Likes: []models.User{}}
	cardC = models.Card{ID: "c", Name: "Kamchatka", Link: "https://img/c.jpg", Owner: me, Likes: []models.User{other}}
)

func newShell(t *testing.T, api *fakeAPI) (*Shell, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	return New(api, WithLogger(log)), hook
}

// run executes cmd synchronously and feeds its message back, standing in for
// the bubbletea loop.
func run(t *testing.T, s *Shell, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	require.True(t, s.Update(cmd()))
}

func loaded(t *testing.T, api *fakeAPI) (*Shell, *test.Hook) {
	t.Helper()
	s, hook := newShell(t, api)
	run(t, s, s.Init())
	require.True(t, s.State().Loaded)
	return s, hook
}

func ids(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestLoadInitialData(t *testing.T) {
	api := &fakeAPI{cards: []models.Card{cardA, cardB, cardC}, user: me}
	s, _ := newShell(t, api)

	before := s.State()
	assert.False(t, before.Loaded)
	assert.NotNil(t, before.Cards)
	assert.Empty(t, before.Cards)

	run(t, s, s.LoadInitialData())

	st := s.State()
	assert.Equal(t, []models.Card{cardA, cardB, cardC}, st.Cards)
	assert.Equal(t, me, st.CurrentUser)
	assert.True(t, st.Loaded)
}

func TestLoadInitialData_EmptyGallery(t *testing.T) {
	s, _ := loaded(t, &fakeAPI{user: me})
	assert.NotNil(t, s.State().Cards)
	assert.Empty(t, s.State().Cards)
}

func TestLoadInitialData_EitherFailureDiscardsBoth(t *testing.T) {
	for _, op := range []string{"cards", "user"} {
		t.Run(op, func(t *testing.T) {
			api := &fakeAPI{cards: []models.Card{cardA}, user: me, err: map[string]error{op: errBackend}}
			s, hook := newShell(t, api)
			before := s.State()

			run(t, s, s.LoadInitialData())

			assert.Equal(t, before, s.State())
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
			assert.Equal(t, "load initial data", hook.LastEntry().Data["op"])
		})
	}
}

func TestToggleLike_Unlike(t *testing.T) {
	api := &fakeAPI{cards: []models.Card{cardA, cardB, cardC}, user: me}
	s, _ := loaded(t, api)

	run(t, s, s.ToggleLike(cardA))

	st := s.State()
	assert.Equal(t, []bool{false}, api.likeCalls)
	assert.Equal(t, []string{"a", "b", "c"}, ids(st.Cards))
	assert.False(t, st.Cards[0].LikedBy(me.ID))
	assert.Equal(t, cardB, st.Cards[1])
	assert.Equal(t, cardC, st.Cards[2])
}

func TestToggleLike_Like(t *testing.T) {
	api := &fakeAPI{cards: []models.Card{cardA, cardB, cardC}, user: me}
	s, _ := loaded(t, api)

	run(t, s, s.ToggleLike(cardC))

	assert.Equal(t, []bool{true}, api.likeCalls)
	st := s.State()
	assert.True(t, st.Cards[2].LikedBy(me.ID))
	assert.Len(t, st.Cards, 3)
}

func TestToggleLike_FailureLeavesState(t *testing.T) {
	api := &fakeAPI{cards: []models.Card{cardA, cardB}, user: me}
	s, hook := loaded(t, api)
	api.err = map[string]error{"like": errBackend}
	before := s.State()

	run(t, s, s.ToggleLike(cardA))

	assert.Equal(t, before, s.State())
	assert.Equal(t, "change like status", hook.LastEntry().Data["op"])
	assert.ErrorIs(t, hook.LastEntry().Data[logrus.ErrorKey].(error), errBackend)
}

func TestDeleteCard(t *testing.T) {
	api := &fakeAPI{cards: []models.Card{cardA, cardB, cardC}, user: me}
	s, _ := loaded(t, api)

	run(t, s, s.DeleteCard("b"))

	assert.Equal(t, []string{"a", "c"}, ids(s.State().Cards))
	assert.Equal(t, []string{"b"}, api.deleted)
}

func TestDeleteCard_LastOfTwo(t *testing.T) {
	api := &fakeAPI{cards: []models.Card{cardA, cardB}, user: me}
	s, _ := loaded(t, api)

	run(t, s, s.DeleteCard(cardB.ID))

	assert.Equal(t, []models.Card{cardA}, s.State().Cards)
}

func TestDeleteCard_FailureLeavesState(t *testing.T) {
	api := &fakeAPI{cards: []models.Card{cardA, cardB}, user: me}
	s, hook := loaded(t, api)
	api.err = map[string]error{"delete": errBackend}
	before := s.State()

	run(t, s, s.DeleteCard("a"))

	assert.Equal(t, before, s.State())
	assert.Equal(t, "delete card", hook.LastEntry().Data["op"])
}

func TestConfirmDelete(t *testing.T) {
	api := &fakeAPI{cards: []models.Card{cardA, cardB}, user: me}
	s, _ := loaded(t, api)

	assert.Nil(t, s.ConfirmDelete())

	s.OpenConfirmDelete(cardA)
	require.True(t, s.State().ConfirmDeleteOpen)
	run(t, s, s.ConfirmDelete())

	st := s.State()
	assert.Equal(t, []string{"b"}, ids(st.Cards))
	assert.False(t, st.AnyPopupOpen())
	assert.Equal(t, "a", st.SelectedCard.ID)
}

func TestConfirmDelete_Rejected(t *testing.T) {
	api := &fakeAPI{cards: []models.Card{cardA, cardB}, user: me}
	s, hook := loaded(t, api)
	api.err = map[string]error{"delete": errBackend}

	s.OpenConfirmDelete(cardA)
	run(t, s, s.ConfirmDelete())

	st := s.State()
	assert.Equal(t, []string{"a", "b"}, ids(st.Cards))
	assert.True(t, st.ConfirmDeleteOpen)
	assert.False(t, st.Pending)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "delete card", hook.LastEntry().Data["op"])
	assert.ErrorIs(t, hook.LastEntry().Data[logrus.ErrorKey].(error), errBackend)
}

func TestUpdateProfile(t *testing.T) {
	api := &fakeAPI{user: me}
	s, _ := loaded(t, api)
	s.OpenEditProfile()

	cmd := s.UpdateProfile(models.ProfileUpdate{Name: "Jacques-Yves", About: "Oceanographer"})
	assert.True(t, s.State().Pending)
	run(t, s, cmd)

	st := s.State()
	assert.Equal(t, "Jacques-Yves", st.CurrentUser.Name)
	assert.Equal(t, "Oceanographer", st.CurrentUser.About)
	assert.False(t, st.Pending)
	assert.False(t, st.AnyPopupOpen())
}

func TestUpdateAvatar(t *testing.T) {
	api := &fakeAPI{user: me}
	s, _ := loaded(t, api)
	s.OpenEditAvatar()

	run(t, s, s.UpdateAvatar(models.AvatarUpdate{Avatar: "https://img/new.png"}))

	st := s.State()
	assert.Equal(t, "https://img/new.png", st.CurrentUser.Avatar)
	assert.Equal(t, me.Name, st.CurrentUser.Name)
	assert.False(t, st.Pending)
	assert.False(t, st.EditAvatarOpen)
}

func TestAddCard(t *testing.T) {
	api := &fakeAPI{cards: []models.Card{cardA, cardB}, user: me}
	s, _ := loaded(t, api)
	s.OpenAddPlace()

	cmd := s.AddCard(models.NewCard{Name: "Elbrus", Link: "https://img/e.jpg"})
	assert.True(t, s.State().Pending)
	run(t, s, cmd)

	st := s.State()
	assert.Equal(t, []string{"new-Elbrus", "a", "b"}, ids(st.Cards))
	assert.False(t, st.AnyPopupOpen())
	assert.False(t, st.Pending)
}

func TestWriteFailures(t *testing.T) {
	tests := []struct {
		op    string
		logOp string
		open  func(*Shell)
		cmd   func(*Shell) tea.Cmd
	}{
		{"profile", "update profile", (*Shell).OpenEditProfile, func(s *Shell) tea.Cmd {
			return s.UpdateProfile(models.ProfileUpdate{Name: "x", About: "y"})
		}},
		{"avatar", "update avatar", (*Shell).OpenEditAvatar, func(s *Shell) tea.Cmd {
			return s.UpdateAvatar(models.AvatarUpdate{Avatar: "https://img/x.png"})
		}},
		{"create", "create card", (*Shell).OpenAddPlace, func(s *Shell) tea.Cmd {
			return s.AddCard(models.NewCard{Name: "x", Link: "https://img/x.png"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			api := &fakeAPI{cards: []models.Card{cardA}, user: me}
			s, hook := loaded(t, api)
			api.err = map[string]error{tt.op: errBackend}
			tt.open(s)
			before := s.State()

			cmd := tt.cmd(s)
			assert.True(t, s.State().Pending)
			run(t, s, cmd)

			assert.Equal(t, before, s.State())
			assert.False(t, s.State().Pending)
			assert.Equal(t, tt.logOp, hook.LastEntry().Data["op"])
		})
	}
}

func TestPopups(t *testing.T) {
	s, _ := newShell(t, &fakeAPI{})

	s.CloseAllPopups()
	assert.False(t, s.State().AnyPopupOpen())
	s.CloseAllPopups()
	assert.False(t, s.State().AnyPopupOpen())

	s.OpenEditAvatar()
	s.OpenEditProfile()
	s.OpenAddPlace()
	s.OpenImagePreview(cardB)
	st := s.State()
	assert.True(t, st.EditAvatarOpen)
	assert.True(t, st.EditProfileOpen)
	assert.True(t, st.AddPlaceOpen)
	assert.True(t, st.ImagePreviewOpen)
	assert.Equal(t, cardB, *st.SelectedCard)

	s.CloseAllPopups()
	st = s.State()
	assert.False(t, st.AnyPopupOpen())
	require.NotNil(t, st.SelectedCard)
	assert.Equal(t, "b", st.SelectedCard.ID)
}

func TestLateResponseAppliesToCurrentState(t *testing.T) {
	api := &fakeAPI{cards: []models.Card{cardA}, user: me}
	s, _ := loaded(t, api)

	s.OpenAddPlace()
	cmd := s.AddCard(models.NewCard{Name: "Elbrus", Link: "https://img/e.jpg"})
	s.CloseAllPopups()
	s.OpenEditAvatar()

	run(t, s, cmd)

	st := s.State()
	assert.Equal(t, []string{"new-Elbrus", "a"}, ids(st.Cards))
	assert.False(t, st.EditAvatarOpen)
}

func TestDoubleSubmitIsNotDeduplicated(t *testing.T) {
	api := &fakeAPI{user: me}
	s, _ := loaded(t, api)

	first := s.AddCard(models.NewCard{Name: "Altai", Link: "https://img/a.jpg"})
	second := s.AddCard(models.NewCard{Name: "Altai", Link: "https://img/a.jpg"})
	run(t, s, first)
	run(t, s, second)

	assert.Equal(t, []string{"new-Altai", "new-Altai"}, ids(s.State().Cards))
}

func TestStateSnapshotIsCopy(t *testing.T) {
	s, _ := loaded(t, &fakeAPI{cards: []models.Card{cardA, cardB}, user: me})

	st := s.State()
	st.Cards[0] = cardC

	assert.Equal(t, "a", s.State().Cards[0].ID)
}

func TestUpdateIgnoresForeignMessages(t *testing.T) {
	s, _ := newShell(t, &fakeAPI{})
	assert.False(t, s.Update(tea.KeyMsg{Type: tea.KeyEnter}))
}
