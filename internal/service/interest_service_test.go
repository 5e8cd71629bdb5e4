package service

import (
	"context"
	"testing"

	"BubblyService/internal/models"
)

func TestInterestService(t *testing.T) {
	svc := NewInterestService(&MockInterestRepository{interests: []models.Interest{
		{ID: 1, Name: "Chess", Category: "Games"},
		{ID: 2, Name: "Running", Category: "Sports"},
		{ID: 3, Name: "Go", Category: "Games"},
	}})
	ctx := context.Background()

	all, _ := svc.All(ctx)
	if len(all) != 3 {
		t.Errorf("Expected 3 interests, got %d", len(all))
	}

	categories, _ := svc.Categories(ctx)
	if len(categories) != 2 || categories[0] != "Games" || categories[1] != "Sports" {
		t.Errorf("Unexpected categories: %v", categories)
	}

	games, _ := svc.ByCategory(ctx, "Games")
	if len(games) != 2 {
		t.Errorf("Expected 2 games, got %d", len(games))
	}
}
