package client

import (
	"testing"

	"excalibur-cli/internal/testsupport"
)

func newPortal(t *testing.T) *testsupport.Portal {
	t.Helper()
	return testsupport.NewPortal(t)
}

func fakeItem(title, itemType, folder string) testsupport.FakeItem {
	return testsupport.FakeItem{Title: title, Type: itemType, Folder: folder}
}
