package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

var (
	ErrEmptyRecipeID       = errors.New("recipe id is required")
	ErrEmptyTitle          = errors.New("recipe title is required")
	ErrIncorrectIngredient = errors.New("ingredient must be name=quantity")
)

type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
}

// ParseIngredients turns "name=quantity" items into ingredients. A bare name
// is accepted without a quantity.
func ParseIngredients(items []string) ([]Ingredient, error) {
	out := make([]Ingredient, 0, len(items))
	for _, item := range items {
		name, qty, _ := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if name == "" || strings.Contains(qty, "=") {
			return nil, fmt.Errorf("%w: %q", ErrIncorrectIngredient, item)
		}
		out = append(out, Ingredient{Name: name, Quantity: strings.TrimSpace(qty)})
	}
	return out, nil
}

type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Steps       []string     `json:"steps,omitempty"`
	PrepMinutes int          `json:"prep_minutes,omitempty"`
	CookMinutes int          `json:"cook_minutes,omitempty"`
	Servings    int          `json:"servings,omitempty"`
	Difficulty  Difficulty   `json:"difficulty,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	AuthorID    string       `json:"author_id,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	IsFavorite  bool         `json:"is_favorite,omitempty"`
	CreatedAt   time.Time    `json:"created_at,omitzero"`
}

func (r Recipe) Validate() error {
	if r.ID == "" {
		return ErrEmptyRecipeID
	}
	if r.Title == "" {
		return ErrEmptyTitle
	}
	if r.PrepMinutes < 0 || r.CookMinutes < 0 || r.Servings < 0 {
		return fmt.Errorf("recipe %s: negative timing or servings", r.ID)
	}
	if !r.Difficulty.Valid() {
		return fmt.Errorf("recipe %s: unknown difficulty %q", r.ID, r.Difficulty)
	}
	return nil
}

// TotalMinutes is preparation plus cooking time.
func (r Recipe) TotalMinutes() int { return r.PrepMinutes + r.CookMinutes }

// RecipeInput is the create/update body.
type RecipeInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Steps       []string     `json:"steps,omitempty"`
	PrepMinutes int          `json:"prep_minutes,omitempty"`
	CookMinutes int          `json:"cook_minutes,omitempty"`
	Servings    int          `json:"servings,omitempty"`
	Difficulty  Difficulty   `json:"difficulty,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

func (in RecipeInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrEmptyTitle
	}
	if in.PrepMinutes < 0 || in.CookMinutes < 0 || in.Servings < 0 {
		return errors.New("timing and servings must not be negative")
	}
	if !in.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %q", in.Difficulty)
	}
	return nil
}

type RecipeList struct {
	Recipes []Recipe `json:"recipes"`
	Total   int      `json:"total"`
}

func (l RecipeList) Validate() error {
	for i, r := range l.Recipes {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("recipes[%d]: %w", i, err)
		}
	}
	if l.Total < 0 {
		return errors.New("total must not be negative")
	}
	return nil
}

// PhotoUpload is the presigned upload target issued for a recipe photo.
type PhotoUpload struct {
	UploadURL string `json:"upload_url"`
	PhotoURL  string `json:"photo_url"`
}

func (p PhotoUpload) Validate() error {
	if p.UploadURL == "" {
		return errors.New("upload_url is required")
	}
	return nil
}
