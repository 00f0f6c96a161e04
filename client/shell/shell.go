// Package shell owns the gallery client's state: the current user, the card
// sequence, which popup is open, and whether a write is in flight.
//
// The shell lives on a single event loop. Intents that need the backend
// return a tea.Cmd; the loop runs it off-thread and hands the resulting
// message back to Update, which is the only place responses touch state.
// Nothing is cancelled or de-duplicated: a response is applied to whatever
// the state is when it arrives.
package shell

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"placegallery/backend/models"
)

// API is the backend collaborator. *api.Client satisfies it.
type API interface {
	GetInitialCards(ctx context.Context) ([]models.Card, error)
	GetUsersData(ctx context.Context) (models.User, error)
	SetUsersData(ctx context.Context, p models.ProfileUpdate) (models.User, error)
	SetAvatar(ctx context.Context, a models.AvatarUpdate) (models.User, error)
	CreateCard(ctx context.Context, nc models.NewCard) (models.Card, error)
	ChangeLikeCardStatus(ctx context.Context, id string, liked bool) (models.Card, error)
	DeleteCard(ctx context.Context, id string) error
}

type State struct {
	CurrentUser models.User
	Cards       []models.Card
	Loaded      bool

	EditAvatarOpen    bool
	EditProfileOpen   bool
	AddPlaceOpen      bool
	ImagePreviewOpen  bool
	ConfirmDeleteOpen bool

	// SelectedCard is the card behind the preview or delete popup. Closing
	// popups leaves it in place.
	SelectedCard *models.Card

	// Pending is set while a profile, avatar or new-card write is outstanding.
	// It only drives the submit buttons; it does not block further requests.
	Pending bool
}

// AnyPopupOpen reports whether some popup is showing.
func (s State) AnyPopupOpen() bool {
	return s.EditAvatarOpen || s.EditProfileOpen || s.AddPlaceOpen || s.ImagePreviewOpen || s.ConfirmDeleteOpen
}

type Shell struct {
	api   API
	ctx   context.Context
	log   logrus.FieldLogger
	state State
}

type Option func(*Shell)

// WithLogger sets where swallowed request failures are reported.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Shell) { s.log = l }
}

// WithContext sets the context every backend call runs under.
func WithContext(ctx context.Context) Option {
	return func(s *Shell) { s.ctx = ctx }
}

func New(api API, opts ...Option) *Shell {
	s := &Shell{
		api:   api,
		ctx:   context.Background(),
		log:   logrus.StandardLogger(),
		state: State{Cards: []models.Card{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot; the card slice is a copy.
func (s *Shell) State() State {
	st := s.state
	st.Cards = slices.Clone(s.state.Cards)
	if s.state.SelectedCard != nil {
		c := *s.state.SelectedCard
		st.SelectedCard = &c
	}
	return st
}

// Init loads the profile and cards once, when the program starts.
func (s *Shell) Init() tea.Cmd {
	return s.LoadInitialData()
}

func (s *Shell) OpenEditAvatar()  { s.state.EditAvatarOpen = true }
func (s *Shell) OpenEditProfile() { s.state.EditProfileOpen = true }
func (s *Shell) OpenAddPlace()    { s.state.AddPlaceOpen = true }

func (s *Shell) OpenImagePreview(card models.Card) {
	s.state.SelectedCard = &card
	s.state.ImagePreviewOpen = true
}

func (s *Shell) OpenConfirmDelete(card models.Card) {
	s.state.SelectedCard = &card
	s.state.ConfirmDeleteOpen = true
}

func (s *Shell) CloseAllPopups() {
	s.state.EditAvatarOpen = false
	s.state.EditProfileOpen = false
	s.state.AddPlaceOpen = false
	s.state.ImagePreviewOpen = false
	s.state.ConfirmDeleteOpen = false
}

type (
	initialDataMsg struct {
		cards []models.Card
		user  models.User
	}
	cardLikedMsg struct {
		card models.Card
	}
	cardDeletedMsg struct {
		id        string
		confirmed bool
	}
	userUpdatedMsg struct {
		user models.User
	}
	cardCreatedMsg struct {
		card models.Card
	}
	requestFailedMsg struct {
		op    string
		err   error
		write bool
	}
)

// LoadInitialData fetches cards and the current user concurrently. Both
// must succeed for either to be applied.
func (s *Shell) LoadInitialData() tea.Cmd {
	api, ctx := s.api, s.ctx
	return func() tea.Msg {
		var (
			cards []models.Card
			user  models.User
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			cards, err = api.GetInitialCards(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			user, err = api.GetUsersData(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return requestFailedMsg{op: "load initial data", err: err}
		}
		return initialDataMsg{cards: cards, user: user}
	}
}

// ToggleLike asks for the opposite of the card's current like state for the
// current user.
func (s *Shell) ToggleLike(card models.Card) tea.Cmd {
	api, ctx := s.api, s.ctx
	liked := card.LikedBy(s.state.CurrentUser.ID)
	return func() tea.Msg {
		updated, err := api.ChangeLikeCardStatus(ctx, card.ID, !liked)
		if err != nil {
			return requestFailedMsg{op: "change like status", err: err}
		}
		return cardLikedMsg{card: updated}
	}
}

func (s *Shell) DeleteCard(id string) tea.Cmd {
	return s.deleteCard(id, false)
}

// ConfirmDelete deletes the card behind the delete popup and closes the
// popup once the server agrees. Without a selected card it does nothing.
func (s *Shell) ConfirmDelete() tea.Cmd {
	if s.state.SelectedCard == nil {
		return nil
	}
	return s.deleteCard(s.state.SelectedCard.ID, true)
}

func (s *Shell) deleteCard(id string, confirmed bool) tea.Cmd {
	api, ctx := s.api, s.ctx
	return func() tea.Msg {
		if err := api.DeleteCard(ctx, id); err != nil {
			return requestFailedMsg{op: "delete card", err: err}
		}
		return cardDeletedMsg{id: id, confirmed: confirmed}
	}
}

func (s *Shell) UpdateProfile(p models.ProfileUpdate) tea.Cmd {
	api, ctx := s.api, s.ctx
	s.state.Pending = true
	return func() tea.Msg {
		user, err := api.SetUsersData(ctx, p)
		if err != nil {
			return requestFailedMsg{op: "update profile", err: err, write: true}
		}
		return userUpdatedMsg{user: user}
	}
}

func (s *Shell) UpdateAvatar(a models.AvatarUpdate) tea.Cmd {
	api, ctx := s.api, s.ctx
	s.state.Pending = true
	return func() tea.Msg {
		user, err := api.SetAvatar(ctx, a)
		if err != nil {
			return requestFailedMsg{op: "update avatar", err: err, write: true}
		}
		return userUpdatedMsg{user: user}
	}
}

func (s *Shell) AddCard(nc models.NewCard) tea.Cmd {
	api, ctx := s.api, s.ctx
	s.state.Pending = true
	return func() tea.Msg {
		card, err := api.CreateCard(ctx, nc)
		if err != nil {
			return requestFailedMsg{op: "create card", err: err, write: true}
		}
		return cardCreatedMsg{card: card}
	}
}

// Update applies a backend response. It reports false for messages that did
// not come from a shell command.
func (s *Shell) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case initialDataMsg:
		cards := msg.cards
		if cards == nil {
			cards = []models.Card{}
		}
		s.state.Cards = cards
		s.state.CurrentUser = msg.user
		s.state.Loaded = true

	case cardLikedMsg:
		s.state.Cards = replaceCard(s.state.Cards, msg.card)

	case cardDeletedMsg:
		s.state.Cards = removeCard(s.state.Cards, msg.id)
		if msg.confirmed {
			s.CloseAllPopups()
		}

	case userUpdatedMsg:
		s.state.CurrentUser = msg.user
		s.CloseAllPopups()
		s.state.Pending = false

	case cardCreatedMsg:
		s.state.Cards = append([]models.Card{msg.card}, s.state.Cards...)
		s.CloseAllPopups()
		s.state.Pending = false

	case requestFailedMsg:
		s.log.WithError(msg.err).WithField("op", msg.op).Error("gallery request failed")
		if msg.write {
			s.state.Pending = false
		}

	default:
		return false
	}
	return true
}

// replaceCard swaps in updated for the card with the same ID. Linear scan;
// galleries are small.
func replaceCard(cards []models.Card, updated models.Card) []models.Card {
	out := slices.Clone(cards)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
		}
	}
	return out
}

func removeCard(cards []models.Card, id string) []models.Card {
	return slices.DeleteFunc(slices.Clone(cards), func(c models.Card) bool {
		return c.ID == id
	})
}
