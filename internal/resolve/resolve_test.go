package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarthJahus/telegram-fraud-network/internal/record"
)

func TestOrderMostReliableFirst(t *testing.T) {
	rec := &record.EntityRecord{
		NumericID: 123,
		Usernames: []record.Username{
			{Handle: "older_handle"},
			{Handle: "newer_handle"},
		},
		Invites: []record.InviteLink{
			{Hash: "LiveOne"},
			{Hash: "GoneOne", Expired: true},
			{Hash: "LiveTwo"},
		},
	}

	got := Order(rec)

	want := []Candidate{
		{Method: ByID, Value: "123"},
		{Method: ByUsername, Value: "newer_handle"},
		{Method: ByUsername, Value: "older_handle"},
		{Method: ByInvite, Value: "LiveOne"},
		{Method: ByInvite, Value: "LiveTwo"},
	}
	assert.Equal(t, want, got)
}

func TestOrderSkipsStruckUsernames(t *testing.T) {
	rec := &record.EntityRecord{
		Usernames: []record.Username{
			{Handle: "retired", Struck: true},
			{Handle: "current"},
		},
	}

	got := Order(rec)
	require.Len(t, got, 1)
	assert.Equal(t, Candidate{Method: ByUsername, Value: "current"}, got[0])
}

func TestOrderExpiredInvitesOnlyAsLastResort(t *testing.T) {
	rec := &record.EntityRecord{
		Invites: []record.InviteLink{{Hash: "Expired1", Expired: true}},
	}

	got := Order(rec)
	require.Len(t, got, 1)
	assert.Equal(t, Candidate{Method: ByInvite, Value: "Expired1"}, got[0])
}

func TestOrderExpiredInvitesAbsentWhenAlternativesExist(t *testing.T) {
	rec := &record.EntityRecord{
		Usernames: []record.Username{{Handle: "handle01"}},
		Invites:   []record.InviteLink{{Hash: "Expired1", Expired: true}},
	}

	got := Order(rec)
	require.Len(t, got, 1)
	assert.Equal(t, ByUsername, got[0].Method)
}

func TestOrderEmptyRecord(t *testing.T) {
	assert.Empty(t, Order(&record.EntityRecord{}))
}

func TestCandidateString(t *testing.T) {
	assert.Equal(t, "ID:42", Candidate{Method: ByID, Value: "42"}.String())
	assert.Equal(t, "@handle", Candidate{Method: ByUsername, Value: "handle"}.String())
	assert.Equal(t, "+AbC", Candidate{Method: ByInvite, Value: "AbC"}.String())
}
