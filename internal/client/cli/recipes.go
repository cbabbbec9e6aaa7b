package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/cookquest/internal/client/models"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

func (a *App) Recipes(ctx context.Context, query string) error {
	list, err := a.services.Recipes.List(ctx, query)
	if err != nil {
		return err
	}
	a.printRecipeList(list)
	return nil
}

func (a *App) Favorites(ctx context.Context) error {
	list, err := a.services.Recipes.Favorites(ctx)
	if err != nil {
		return err
	}
	a.printRecipeList(list)
	return nil
}

func (a *App) printRecipeList(list models.RecipeList) {
	if len(list.Recipes) == 0 {
		fmt.Fprintln(a.out, "No recipes found")
		return
	}
	for _, r := range list.Recipes {
		fav := " "
		if r.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(a.out, "%s %-12s %-32s %3d min  %s\n", fav, r.ID, r.Title, r.TotalMinutes(), r.Difficulty)
	}
	if list.Total > len(list.Recipes) {
		fmt.Fprintf(a.out, "(%d of %d shown)\n", len(list.Recipes), list.Total)
	}
}

func (a *App) ShowRecipe(ctx context.Context, id string) error {
	r, err := a.services.Recipes.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s [%s]\n", r.Title, r.ID)
	if r.Description != "" {
		fmt.Fprintln(a.out, r.Description)
	}
	fmt.Fprintf(a.out, "Prep %d min, cook %d min, serves %d, %s\n", r.PrepMinutes, r.CookMinutes, r.Servings, r.Difficulty)
	if len(r.Ingredients) > 0 {
		fmt.Fprintln(a.out, "Ingredients:")
		for _, in := range r.Ingredients {
			if in.Quantity != "" {
				fmt.Fprintf(a.out, "  - %s: %s\n", in.Name, in.Quantity)
			} else {
				fmt.Fprintf(a.out, "  - %s\n", in.Name)
			}
		}
	}
	for i, step := range r.Steps {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, step)
	}
	if r.ImageURL != "" {
		fmt.Fprintln(a.out, "Photo:", r.ImageURL)
	}
	return nil
}

// NewRecipe prompts for every recipe field and creates it.
func (a *App) NewRecipe(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}

	description, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}

	lines, err := GetLines(a.reader, "Ingredients, one per line as name=quantity", a.out)
	if err != nil {
		return err
	}
	ingredients, err := models.ParseIngredients(lines)
	if err != nil {
		return err
	}

	steps, err := GetLines(a.reader, "Steps, one per line", a.out)
	if err != nil {
		return err
	}

	prep, err := GetInt(a.reader, "Preparation minutes", a.out)
	if err != nil {
		return err
	}
	cook, err := GetInt(a.reader, "Cooking minutes", a.out)
	if err != nil {
		return err
	}
	servings, err := GetInt(a.reader, "Servings", a.out)
	if err != nil {
		return err
	}

	difficulty, err := getSimpleText(a.reader, "Difficulty (easy, medium, hard)", a.out)
	if err != nil {
		return err
	}

	r, err := a.services.Recipes.Create(ctx, models.RecipeInput{
		Title:       title,
		Description: description,
		Ingredients: ingredients,
		Steps:       steps,
		PrepMinutes: prep,
		CookMinutes: cook,
		Servings:    servings,
		Difficulty:  models.Difficulty(strings.ToLower(difficulty)),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Recipe %s created\n", r.ID)
	return nil
}

func (a *App) DeleteRecipe(ctx context.Context, id string) error {
	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete recipe %s? (y/N)", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.services.Recipes.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

func (a *App) Favorite(ctx context.Context, id string) error {
	if err := a.services.Recipes.Favorite(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Added to favorites")
	return nil
}

func (a *App) Unfavorite(ctx context.Context, id string) error {
	if err := a.services.Recipes.Unfavorite(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed from favorites")
	return nil
}

// UploadPhoto reads an image from path and attaches it to the recipe.
func (a *App) UploadPhoto(ctx context.Context, id, path string) error {
	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("read photo: %w", err)
	}

	url, err := a.services.Recipes.UploadPhoto(ctx, id, data, http.DetectContentType(data))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Photo uploaded:", url)
	return nil
}
