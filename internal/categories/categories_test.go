package categories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/repository/memory"
)

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeededStore()
	svc := NewService(store)
	alice, bob := uuid.New(), uuid.New()

	parent, err := svc.CreateCategory(ctx, alice, CreateInput{Name: "  Pets ", CategoryGroupID: &memory.GroupNeedsID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if parent.Name != "Pets" || parent.UserID == nil || *parent.UserID != alice || !parent.IsActive {
		t.Errorf("unexpected category: %+v", parent)
	}

	missingGroup := uuid.New()
	tests := []struct {
		name   string
		userID uuid.UUID
		in     CreateInput
		want   error
	}{
		{"empty name", alice, CreateInput{Name: " "}, apperr.ErrValidation},
		{"unknown group", alice, CreateInput{Name: "Vet", CategoryGroupID: &missingGroup}, apperr.ErrNotFound},
		{"foreign parent", bob, CreateInput{Name: "Vet", ParentID: &parent.ID}, apperr.ErrForbidden},
		{"global parent", bob, CreateInput{Name: "Snacks", ParentID: &memory.CategoryGroceriesID}, nil},
		{"own parent", alice, CreateInput{Name: "Vet", ParentID: &parent.ID}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCategory(ctx, tt.userID, tt.in)
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListCategoriesScopesToUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewSeededStore())
	alice, bob := uuid.New(), uuid.New()

	if _, err := svc.CreateCategory(ctx, alice, CreateInput{Name: "Books"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	aliceList, err := svc.ListCategories(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	bobList, _ := svc.ListCategories(ctx, bob)
	if len(aliceList) != len(bobList)+1 {
		t.Fatalf("alice sees %d, bob sees %d", len(aliceList), len(bobList))
	}
	for i := 1; i < len(aliceList); i++ {
		if aliceList[i-1].Name > aliceList[i].Name {
			t.Errorf("not sorted by name at %d: %q > %q", i, aliceList[i-1].Name, aliceList[i].Name)
		}
	}
	for _, c := range bobList {
		if c.Name == "Books" {
			t.Error("bob sees alice's category")
		}
	}
}

func TestListCategoryGroupsAndCurrencies(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewSeededStore())

	groups, err := svc.ListCategoryGroups(ctx)
	if err != nil {
		t.Fatalf("groups: %v", err)
	}
	want := []string{"Income", "Needs", "Wants", "Savings"}
	if len(groups) != len(want) {
		t.Fatalf("got %d groups", len(groups))
	}
	for i, g := range groups {
		if string(g.Name) != want[i] {
			t.Errorf("group %d = %s, want %s", i, g.Name, want[i])
		}
	}

	currencies, err := svc.ListCurrencies(ctx)
	if err != nil {
		t.Fatalf("currencies: %v", err)
	}
	if len(currencies) != 5 {
		t.Errorf("got %d currencies", len(currencies))
	}
}
