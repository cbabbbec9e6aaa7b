package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/cookquest/internal/client/config"
	"github.com/dmitrijs2005/cookquest/internal/client/models"
	"github.com/dmitrijs2005/cookquest/internal/client/services"
	"github.com/dmitrijs2005/cookquest/internal/client/tokens"
)

type fakeAuth struct {
	loginEmail, loginPass string
	loginUser             models.User
	loginErr              error

	regEmail, regPass, regName string
	regErr                     error

	logoutCalled bool
	logoutErr    error

	loggedIn bool
	pingErr  error
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (models.User, error) {
	f.loginEmail, f.loginPass = email, password
	return f.loginUser, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, email, password, name string) (models.User, error) {
	f.regEmail, f.regPass, f.regName = email, password, name
	return models.User{ID: "u1", Email: email, DisplayName: name}, f.regErr
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}

func (f *fakeAuth) Session(context.Context) (tokens.Pair, error) { return tokens.Pair{}, nil }
func (f *fakeAuth) IsLoggedIn(context.Context) (bool, error)     { return f.loggedIn, nil }
func (f *fakeAuth) Ping(context.Context) error                   { return f.pingErr }

type fakeRecipes struct {
	listQuery string
	list      models.RecipeList
	get       models.Recipe
	err       error

	created models.RecipeInput
	deleted string
	faved   string
	unfaved string

	photoID   string
	photoData []byte
	photoType string
}

func (f *fakeRecipes) List(_ context.Context, q string) (models.RecipeList, error) {
	f.listQuery = q
	return f.list, f.err
}

func (f *fakeRecipes) Get(_ context.Context, id string) (models.Recipe, error) {
	return f.get, f.err
}

func (f *fakeRecipes) Create(_ context.Context, in models.RecipeInput) (models.Recipe, error) {
	f.created = in
	return models.Recipe{ID: "r9", Title: in.Title}, f.err
}

func (f *fakeRecipes) Update(_ context.Context, id string, in models.RecipeInput) (models.Recipe, error) {
	return models.Recipe{ID: id, Title: in.Title}, f.err
}

func (f *fakeRecipes) Delete(_ context.Context, id string) error {
	f.deleted = id
	return f.err
}

func (f *fakeRecipes) Favorite(_ context.Context, id string) error {
	f.faved = id
	return f.err
}

func (f *fakeRecipes) Unfavorite(_ context.Context, id string) error {
	f.unfaved = id
	return f.err
}

func (f *fakeRecipes) Favorites(context.Context) (models.RecipeList, error) { return f.list, f.err }

func (f *fakeRecipes) UploadPhoto(_ context.Context, id string, data []byte, ct string) (string, error) {
	f.photoID, f.photoData, f.photoType = id, data, ct
	return "https://cdn.example.com/" + id + ".png", f.err
}

type fakeGamification struct {
	progress models.Progress
	xp       models.AddXPResponse
	streak   services.StreakResult
	err      error

	xpAction string
	xpAmount int
}

func (f *fakeGamification) Progress(context.Context) (models.Progress, error) {
	return f.progress, f.err
}

func (f *fakeGamification) AddXP(_ context.Context, action string, amount int) (models.AddXPResponse, error) {
	f.xpAction, f.xpAmount = action, amount
	return f.xp, f.err
}

func (f *fakeGamification) IncrementStreak(context.Context) (services.StreakResult, error) {
	return f.streak, f.err
}

type testApp struct {
	*App
	auth    *fakeAuth
	recipes *fakeRecipes
	game    *fakeGamification
	out     *bytes.Buffer
}

// newTestApp builds an App over fakes. lines feed the prompt reader.
func newTestApp(lines ...string) *testApp {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	ta := &testApp{
		auth:    &fakeAuth{},
		recipes: &fakeRecipes{},
		game:    &fakeGamification{},
		out:     &bytes.Buffer{},
	}
	ta.App = newApp(cfg, &services.Services{Auth: ta.auth, Recipes: ta.recipes, Gamification: ta.game}, nil)
	ta.App.out = ta.out
	ta.App.reader = readerFromLines(lines...)
	return ta
}

func readerFromLines(lines ...string) *bufio.Reader {
	if len(lines) == 0 || lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}
