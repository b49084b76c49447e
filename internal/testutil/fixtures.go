package testutil

import (
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/dom/whats-cookin/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with random values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		name:     gofakeit.Name(),
		email:    gofakeit.Email(),
		password: gofakeit.Password(true, true, true, false, false, 16),
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Name:         b.name,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildAndAuthenticate registers the user through the API, logs in and returns the user and token.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	resp := ts.Do(t, http.MethodPost, "/register", "", map[string]string{
		"name":     b.name,
		"email":    b.email,
		"password": b.password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected register status code: %d", resp.StatusCode)
	}

	var registered struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	AssertJSONResponse(t, resp, &registered)

	resp = ts.Do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    b.email,
		"password": b.password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var login struct {
		Token string `json:"token"`
	}
	AssertJSONResponse(t, resp, &login)

	user := &domain.User{
		ID:    registered.ID,
		Name:  registered.Name,
		Email: registered.Email,
	}
	return user, login.Token
}

// RecipeBuilder creates test recipes with a builder pattern
type RecipeBuilder struct {
	owner       *domain.User
	name        string
	ingredients []string
}

func NewRecipeBuilder() *RecipeBuilder {
	return &RecipeBuilder{
		name:        gofakeit.Dessert(),
		ingredients: []string{gofakeit.Fruit(), gofakeit.Vegetable(), gofakeit.Fruit()},
	}
}

func (b *RecipeBuilder) WithOwner(owner *domain.User) *RecipeBuilder {
	b.owner = owner
	return b
}

func (b *RecipeBuilder) WithName(name string) *RecipeBuilder {
	b.name = name
	return b
}

func (b *RecipeBuilder) WithIngredients(ingredients ...string) *RecipeBuilder {
	b.ingredients = ingredients
	return b
}

// Build creates the recipe in the database. An owner is required.
func (b *RecipeBuilder) Build(t *testing.T, db *gorm.DB) *domain.Recipe {
	t.Helper()

	if b.owner == nil {
		t.Fatal("recipe builder needs an owner")
	}

	recipe := &domain.Recipe{
		Name:        b.name,
		Ingredients: b.ingredients,
		UserID:      b.owner.ID,
	}

	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	return recipe
}

// CreateRecipes inserts n recipes for owner and returns them in insertion order.
func CreateRecipes(t *testing.T, db *gorm.DB, owner *domain.User, n int) []*domain.Recipe {
	t.Helper()

	recipes := make([]*domain.Recipe, 0, n)
	for i := 0; i < n; i++ {
		recipes = append(recipes, NewRecipeBuilder().WithOwner(owner).Build(t, db))
	}
	return recipes
}
