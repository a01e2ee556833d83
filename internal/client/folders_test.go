package client

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"excalibur-cli/pkg/models"
)

func TestResolveFolderIsIdempotent(t *testing.T) {
	portal := newPortal(t)
	c := loggedInClient(t, portal)
	ctx := context.Background()

	first, err := c.ResolveFolder(ctx, "Fire Watch")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if !first.New || first.ID == "" {
		t.Fatalf("first resolve should create the folder: %+v", first)
	}

	second, err := c.ResolveFolder(ctx, "Fire Watch")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.New || second.ID != first.ID {
		t.Fatalf("second resolve should reuse %s: %+v", first.ID, second)
	}
	if n := portal.CallCount("/createFolder"); n != 1 {
		t.Fatalf("createFolder called %d times", n)
	}
}

func TestResolveFolderMatchesExactTitle(t *testing.T) {
	portal := newPortal(t)
	portal.AddFolder("Fire Watch 2")
	c := loggedInClient(t, portal)

	ref, err := c.ResolveFolder(context.Background(), "Fire Watch")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !ref.New {
		t.Fatal("a folder with a longer title must not match")
	}
}

func TestCreateFolderSurfacesPortalError(t *testing.T) {
	portal := newPortal(t)
	portal.FailOn("createFolder", "Folder name is invalid")
	c := loggedInClient(t, portal)

	_, err := c.ResolveFolder(context.Background(), "bad/name")
	if err == nil || !strings.Contains(err.Error(), "Folder name is invalid") {
		t.Fatalf("expected portal message, got %v", err)
	}
}

func TestFindItemInFolderFiltersExactTitle(t *testing.T) {
	portal := newPortal(t)
	folder := portal.AddFolder("Fire")
	portal.AddItem(fakeItem("Fire Project Old", models.ItemTypeImageryProject, folder))
	c := loggedInClient(t, portal)
	ctx := context.Background()

	got, err := c.FindItemInFolder(ctx, folder, "Fire Project", models.ItemTypeImageryProject)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got != nil {
		t.Fatalf("fuzzy match should be ignored, got %+v", got)
	}

	portal.AddItem(fakeItem("Fire Project", models.ItemTypeImageryProject, folder))
	got, err = c.FindItemInFolder(ctx, folder, "Fire Project", models.ItemTypeImageryProject)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got == nil || got.Title != "Fire Project" {
		t.Fatalf("expected exact match, got %+v", got)
	}

	queries := portal.SearchQueries()
	want := `ownerfolder:` + folder + ` title:"Fire Project" type:"Excalibur Imagery Project"`
	if queries[len(queries)-1] != want {
		t.Fatalf("query = %q, want %q", queries[len(queries)-1], want)
	}
}

func TestGetUserContentFollowsPages(t *testing.T) {
	portal := newPortal(t)
	folder := portal.AddFolder("Archive")
	for i := 0; i < 150; i++ {
		portal.AddItem(fakeItem("frame "+strconv.Itoa(i), models.ItemTypeWebMap, folder))
	}
	c := loggedInClient(t, portal)

	content, err := c.GetUserContent(context.Background(), folder, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(content.Items) != 150 {
		t.Fatalf("expected 150 items across pages, got %d", len(content.Items))
	}
	if content.Items[149].Title != "frame 149" {
		t.Fatalf("last item = %q", content.Items[149].Title)
	}
	if n := portal.CallCount("/content/users/operator/" + folder); n != 2 {
		t.Fatalf("expected 2 page requests, got %d", n)
	}
}

func TestFindItemInFolderSearchesEveryPage(t *testing.T) {
	portal := newPortal(t)
	folder := portal.AddFolder("Fire")
	for i := 0; i < 120; i++ {
		portal.AddItem(fakeItem("Fire Project "+strconv.Itoa(i), models.ItemTypeImageryProject, folder))
	}
	portal.AddItem(fakeItem("Fire Project", models.ItemTypeImageryProject, folder))
	c := loggedInClient(t, portal)

	got, err := c.FindItemInFolder(context.Background(), folder, "Fire Project", models.ItemTypeImageryProject)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got == nil || got.Title != "Fire Project" {
		t.Fatalf("exact match past the first page was missed, got %+v", got)
	}
	if n := len(portal.SearchQueries()); n != 2 {
		t.Fatalf("expected 2 search pages, got %d", n)
	}
}
