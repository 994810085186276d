package record

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestPatchRoundTripUntouched(t *testing.T) {
	rec, err := Parse("rec.md", []byte(sampleRecord))
	require.NoError(t, err)

	assert.False(t, rec.Dirty())
	assert.Equal(t, sampleRecord, string(rec.Patch()))
}

func TestPatchPrependedStatusEntry(t *testing.T) {
	rec, err := Parse("rec.md", []byte(sampleRecord))
	require.NoError(t, err)

	entry := StatusEntry{
		Status: StatusDeleted,
		Time:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	rec.SetHistory(append([]StatusEntry{entry}, rec.History...))

	golden(t).Assert(t, "patched_status", rec.Patch())
}

func TestPatchInsertsIDAfterFrontmatter(t *testing.T) {
	data := "---\n" +
		"tags: [telegram]\n" +
		"---\n" +
		"username: `@mainhandle`\n" +
		"status:\n" +
		"- `active`, `2025-03-04 10:00`\n"
	rec, err := Parse("rec.md", []byte(data))
	require.NoError(t, err)

	rec.SetNumericID(555)
	golden(t).Assert(t, "inserted_id", rec.Patch())
}

func TestPatchInsertsIDAtTopWithoutFrontmatter(t *testing.T) {
	data := "username: `@mainhandle`\n" +
		"status:\n" +
		"- `active`, `2025-03-04 10:00`\n"
	rec, err := Parse("rec.md", []byte(data))
	require.NoError(t, err)

	rec.SetNumericID(9)
	want := "id: `9`\n" + data
	assert.Equal(t, want, string(rec.Patch()))
}

func TestPatchSetNumericIDNoopWhenPresent(t *testing.T) {
	rec, err := Parse("rec.md", []byte(sampleRecord))
	require.NoError(t, err)

	rec.SetNumericID(999)
	assert.Equal(t, int64(123456789), rec.NumericID)
	assert.False(t, rec.Dirty())
}

func TestPatchStatusBlockAtEndOfFile(t *testing.T) {
	data := "id: `1`\nstatus:"
	rec, err := Parse("rec.md", []byte(data))
	require.NoError(t, err)

	rec.SetHistory([]StatusEntry{{
		Status: StatusActive,
		Time:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}})

	want := "id: `1`\nstatus:\n- `active`, `2025-06-01 12:00`"
	assert.Equal(t, want, string(rec.Patch()))
}

func TestPatchPreservesOpaqueLinesBeforeFirstEntry(t *testing.T) {
	data := "id: `7`\n" +
		"status:\n" +
		"\n" +
		"- `active`, `2025-03-04 10:00`\n"
	rec, err := Parse("rec.md", []byte(data))
	require.NoError(t, err)

	entry := StatusEntry{
		Status: StatusDeleted,
		Time:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	rec.SetHistory(append([]StatusEntry{entry}, rec.History...))

	want := "id: `7`\n" +
		"status:\n" +
		"\n" +
		"- `deleted`, `2025-06-01 12:00`\n" +
		"- `active`, `2025-03-04 10:00`\n"
	assert.Equal(t, want, string(rec.Patch()))
}

func TestFormatEntryQuotesRestrictionMetadata(t *testing.T) {
	lines := FormatEntry(StatusEntry{
		Status: StatusBanned,
		Time:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Reason: "porn",
		Text:   "contains `illegal` content",
	})

	require.Len(t, lines, 3)
	assert.Equal(t, "- `banned`, `2025-06-01 12:00`", lines[0])
	assert.Equal(t, "  - reason: `porn`", lines[1])
	assert.Equal(t, "  - text: `contains 'illegal' content`", lines[2])
}
