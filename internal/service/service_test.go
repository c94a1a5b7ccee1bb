package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pokemon-tcg/internal/catalog"
	"github.com/pokemon-tcg/internal/catalog/catalogtest"
	"github.com/pokemon-tcg/internal/config"
	"github.com/pokemon-tcg/internal/database"
	"github.com/pokemon-tcg/internal/models"
	"github.com/pokemon-tcg/internal/repository"
	"github.com/pokemon-tcg/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.FavoriteEvent
}

func (p *recordingPublisher) Publish(ev models.FavoriteEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

type env struct {
	auth      *AuthService
	users     *UserService
	cards     *CardService
	favorites *FavoriteService

	userRepo     *repository.UserRepository
	cardRepo     *repository.CardRepository
	favoriteRepo *repository.FavoriteRepository
	sessions     *session.MemoryStore
	catalog      *catalogtest.Fake
	published    *recordingPublisher
}

var jwtConfig = config.JWTConfig{Secret: "test-secret", ExpireHours: 1}

func setup(t *testing.T) *env {
	t.Helper()

	db := database.OpenTest(t)
	e := &env{
		userRepo:     repository.NewUserRepository(db),
		cardRepo:     repository.NewCardRepository(db),
		favoriteRepo: repository.NewFavoriteRepository(db),
		sessions:     session.NewMemoryStore(time.Hour),
		catalog: catalogtest.New(
			catalogtest.Card("base1-4", "Charizard"),
			catalogtest.Card("base1-58", "Pikachu"),
			catalogtest.Card("swsh4-25", "Charmander"),
		),
		published: &recordingPublisher{},
	}

	e.auth = NewAuthService(e.userRepo, e.sessions, jwtConfig)
	e.users = NewUserService(e.userRepo, e.favoriteRepo, e.sessions)
	e.cards = NewCardService(e.catalog, e.cardRepo, e.favoriteRepo)
	e.favorites = NewFavoriteService(e.catalog, e.cardRepo, e.favoriteRepo, e.published)
	return e
}

func (e *env) signup(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.auth.Signup(&SignupRequest{Username: username, Email: username + "@test.com", Password: "secret1"})
	require.NoError(t, err)
	return user
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   SignupRequest
		field string
	}{
		{name: "empty username", req: SignupRequest{Username: "  ", Email: "a@test.com", Password: "secret1"}, field: "username"},
		{name: "empty email", req: SignupRequest{Username: "ash", Password: "secret1"}, field: "email"},
		{name: "malformed email", req: SignupRequest{Username: "ash", Email: "not-an-email", Password: "secret1"}, field: "email"},
		{name: "short password", req: SignupRequest{Username: "ash", Email: "a@test.com", Password: "12345"}, field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t)

			_, err := e.auth.Signup(&tt.req)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)

			count, err := e.userRepo.Count()
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestSignupHashesPasswordAndSetsDefaultImage(t *testing.T) {
	e := setup(t)
	user := e.signup(t, "ash")

	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.Equal(t, models.DefaultProfileImage, user.ProfileImage)
}

func TestSignupDuplicateUsername(t *testing.T) {
	e := setup(t)
	first := e.signup(t, "ash")

	_, err := e.auth.Signup(&SignupRequest{Username: "ash", Email: "other@test.com", Password: "different"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	count, err := e.userRepo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// the original credentials still work
	user, ok, err := e.auth.Authenticate("ash", "secret1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, user.ID)
}

func TestAuthenticate(t *testing.T) {
	e := setup(t)
	e.signup(t, "ash")

	_, ok, err := e.auth.Authenticate("ash", "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = e.auth.Authenticate("gary", "secret1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = e.auth.Authenticate("ASH", "secret1")
	require.NoError(t, err)
	assert.False(t, ok, "usernames are case-sensitive")

	user, ok, err := e.auth.Authenticate("ash", "secret1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ash", user.Username)
}

func TestLoginResolveLogout(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.signup(t, "ash")

	_, _, err := e.auth.Login(ctx, &LoginRequest{Username: "ash", Password: "nope123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, token, err := e.auth.Login(ctx, &LoginRequest{Username: "ash", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, 1, e.sessions.Len())

	resolved, err := e.auth.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	require.NoError(t, e.auth.Logout(ctx, token))
	assert.Zero(t, e.sessions.Len())

	_, err = e.auth.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveTokenRejectsForgedTokens(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	user := e.signup(t, "ash")

	token, err := e.auth.StartSession(ctx, user)
	require.NoError(t, err)

	other := NewAuthService(e.userRepo, e.sessions, config.JWTConfig{Secret: "other-secret", ExpireHours: 1})
	_, err = other.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = e.auth.ResolveToken(ctx, token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// a validly signed token whose claims point at someone else's session
	claims, err := e.auth.ParseToken(token)
	require.NoError(t, err)
	claims.UserID = user.ID + 1
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtConfig.Secret))
	require.NoError(t, err)
	_, err = e.auth.ResolveToken(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = e.auth.ResolveToken(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutWithGarbageToken(t *testing.T) {
	e := setup(t)
	assert.NoError(t, e.auth.Logout(context.Background(), "garbage"))
}

func TestUpdateProfile(t *testing.T) {
	e := setup(t)
	user := e.signup(t, "ash")
	e.signup(t, "misty")

	_, err := e.users.UpdateProfile(user.ID, &UpdateProfileRequest{Username: "ashk", Email: "ashk@test.com", Password: "wrong12"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.users.UpdateProfile(user.ID, &UpdateProfileRequest{Username: "misty", Email: "ashk@test.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = e.users.UpdateProfile(user.ID, &UpdateProfileRequest{Username: "ashk", Email: "ashk@test.com", ProfileImage: "not a url", Password: "secret1"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "profile_image", verr.Field)

	updated, err := e.users.UpdateProfile(user.ID, &UpdateProfileRequest{
		Username:     "ashk",
		Email:        "ashk@test.com",
		ProfileImage: "https://example.com/ash.png",
		Password:     "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ashk", updated.Username)
	assert.Equal(t, "https://example.com/ash.png", updated.ProfileImage)

	updated, err = e.users.UpdateProfile(user.ID, &UpdateProfileRequest{Username: "ashk", Email: "ashk@test.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProfileImage, updated.ProfileImage)

	_, ok, err := e.auth.Authenticate("ashk", "secret1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteAccountRemovesFavoritesAndSessions(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	user := e.signup(t, "ash")

	token, err := e.auth.StartSession(ctx, user)
	require.NoError(t, err)
	_, err = e.favorites.Toggle(ctx, user.ID, "base1-4")
	require.NoError(t, err)

	require.NoError(t, e.users.DeleteAccount(ctx, user.ID))

	_, err = e.auth.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	count, err := e.favoriteRepo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	// the card cache outlives its favorites
	_, err = e.cardRepo.GetByID("base1-4")
	assert.NoError(t, err)

	assert.ErrorIs(t, e.users.DeleteAccount(ctx, user.ID), ErrUserNotFound)
}

func TestProfileIncludesFavorites(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	user := e.signup(t, "ash")

	_, err := e.favorites.Toggle(ctx, user.ID, "base1-58")
	require.NoError(t, err)

	profile, err := e.users.Profile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ash", profile.User.Username)
	require.Len(t, profile.Favorites, 1)
	assert.Equal(t, "Pikachu", profile.Favorites[0].Name)
}

func TestToggleIsAnInvolution(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	user := e.signup(t, "ash")

	res, err := e.favorites.Toggle(ctx, user.ID, "swsh4-25")
	require.NoError(t, err)
	assert.True(t, res.Favorited)
	assert.Equal(t, "Charmander", res.CardName)

	res, err = e.favorites.Toggle(ctx, user.ID, "swsh4-25")
	require.NoError(t, err)
	assert.False(t, res.Favorited)
	assert.Equal(t, "Charmander", res.CardName)

	// the second toggle used the stored card instead of asking the catalog
	assert.Equal(t, 1, e.catalog.Fetches())

	favorites, err := e.favorites.List(user.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)
	assert.NotNil(t, favorites)

	require.Len(t, e.published.events, 2)
	assert.True(t, e.published.events[0].Favorited)
	assert.False(t, e.published.events[1].Favorited)
	assert.Equal(t, user.ID, e.published.events[1].UserID)
}

func TestToggleUnknownCard(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	user := e.signup(t, "ash")

	_, err := e.favorites.Toggle(ctx, user.ID, "nope-1")
	assert.ErrorIs(t, err, catalog.ErrCardNotFound)

	_, err = e.favorites.Toggle(ctx, user.ID, "../etc/passwd")
	assert.ErrorIs(t, err, catalog.ErrCardNotFound)
	assert.Equal(t, 1, e.catalog.Fetches(), "malformed ids never reach the catalog")

	cards, err := e.cardRepo.Count()
	require.NoError(t, err)
	assert.Zero(t, cards)
	assert.Empty(t, e.published.events)
}

func TestToggleUpstreamFailureLeavesNoRows(t *testing.T) {
	e := setup(t)
	user := e.signup(t, "ash")
	e.catalog.Err = catalog.ErrUpstream

	_, err := e.favorites.Toggle(context.Background(), user.ID, "base1-4")
	assert.ErrorIs(t, err, catalog.ErrUpstream)

	favorites, err := e.favoriteRepo.Count()
	require.NoError(t, err)
	assert.Zero(t, favorites)
}

func TestToggleForDeletedUser(t *testing.T) {
	e := setup(t)
	_, err := e.favorites.Toggle(context.Background(), 999, "base1-4")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearch(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	cards, err := e.cards.Search(ctx, "char")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Charizard", cards[0].Name)
	assert.Equal(t, "Charmander", cards[1].Name)

	cards, err = e.cards.Search(ctx, "mewtwo")
	require.NoError(t, err)
	assert.Empty(t, cards)

	for _, q := range []string{"", "   ", "pika chu", "mew2", "'; drop table"} {
		_, err := e.cards.Search(ctx, q)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), "query %q", q)
		assert.ErrorIs(t, err, catalog.ErrInvalidQuery, "query %q", q)
	}
	assert.Equal(t, 2, e.catalog.Searches())
}

func TestDetail(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	user := e.signup(t, "ash")

	view, err := e.cards.Detail(ctx, 0, "base1-58")
	require.NoError(t, err)
	assert.Equal(t, "Pikachu", view.Name)
	assert.False(t, view.Favorited)

	stored, err := e.cardRepo.GetByID("base1-58")
	require.NoError(t, err)
	assert.Equal(t, "Pikachu", stored.Name)

	_, err = e.favorites.Toggle(ctx, user.ID, "base1-58")
	require.NoError(t, err)

	view, err = e.cards.Detail(ctx, user.ID, "base1-58")
	require.NoError(t, err)
	assert.True(t, view.Favorited)
	assert.EqualValues(t, 1, view.FavoriteCount)

	_, err = e.cards.Detail(ctx, user.ID, "missing-1")
	assert.ErrorIs(t, err, catalog.ErrCardNotFound)
}
