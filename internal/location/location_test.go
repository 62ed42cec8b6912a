// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/printgate/internal/authmask"
	apperrors "grimm.is/printgate/internal/errors"
)

func TestNewRejectsBadPath(t *testing.T) {
	_, err := New("no-leading-slash")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.GetKind(err))

	_, err = New("")
	require.Error(t, err)
}

func TestCloneDeepCopiesSlices(t *testing.T) {
	loc, err := New("/admin/")
	require.NoError(t, err)
	loc.AddAllow(authmask.NewIPMask([4]uint32{0, 0, 0, 0x0a000000}, [4]uint32{0, 0, 0, 0xff000000}))
	loc.AddPrincipal("@SYSTEM")

	clone := loc.Clone()
	clone.AddAllow(authmask.NewNamedMask("extra.example.com"))
	clone.AddPrincipal("extra")

	assert.Len(t, loc.Allow, 1, "mutating the clone must not affect the original")
	assert.Len(t, loc.Principals, 1)
	assert.Len(t, clone.Allow, 2)
	assert.Len(t, clone.Principals, 2)
}

func TestTableAddRejectsDuplicatePath(t *testing.T) {
	table := NewTable()
	a, _ := New("/admin/")
	b, _ := New("/Admin/")

	require.NoError(t, table.Add(a))
	err := table.Add(b)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.GetKind(err))
}

func TestFindBestLongestPrefixWins(t *testing.T) {
	table := NewTable()
	root, _ := New("/")
	admin, _ := New("/admin/")
	table.Add(root)
	table.Add(admin)

	best, ok := table.FindBest("/admin/config", VerbGet)
	require.True(t, ok)
	assert.Equal(t, "/admin/", best.Path)
}

func TestFindBestVerbGates(t *testing.T) {
	table := NewTable()
	admin, _ := New("/admin/")
	admin.VerbMask = VerbPost
	table.Add(admin)

	_, ok := table.FindBest("/admin/config", VerbGet)
	assert.False(t, ok, "a GET request must not match a POST-only Location")

	_, ok = table.FindBest("/admin/config", VerbPost)
	assert.True(t, ok)
}

func TestFindBestQueueNameCaseInsensitiveAndPPDStrip(t *testing.T) {
	table := NewTable()
	printer, _ := New("/printers/foo")
	table.Add(printer)

	best, ok := table.FindBest("/printers/FOO.ppd", VerbGet)
	require.True(t, ok)
	assert.Equal(t, "/printers/foo", best.Path)
}

func TestFindBestOtherPathsAreCaseSensitive(t *testing.T) {
	table := NewTable()
	adminLoc, _ := New("/admin/")
	table.Add(adminLoc)

	_, ok := table.FindBest("/Admin/x", VerbGet)
	assert.False(t, ok)
}

func TestFindBestNoMatch(t *testing.T) {
	table := NewTable()
	_, ok := table.FindBest("/unknown", VerbGet)
	assert.False(t, ok)
}

func TestTableCopyIsIndependent(t *testing.T) {
	table := NewTable()
	admin, _ := New("/admin/")
	admin.AddAllow(authmask.NewNamedMask("trusted.example.com"))
	table.Add(admin)

	dup := table.Copy()
	dup.All()[0].AddAllow(authmask.NewNamedMask("extra.example.com"))

	assert.Len(t, table.All()[0].Allow, 1)
	assert.Len(t, dup.All()[0].Allow, 2)
}

func TestTableDeleteAll(t *testing.T) {
	table := NewTable()
	root, _ := New("/")
	table.Add(root)
	table.DeleteAll()
	assert.Empty(t, table.All())
}
