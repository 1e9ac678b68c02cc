package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ufs(s Snapshot) []string {
	out := make([]string, 0, s.Len())
	for _, r := range s.Records() {
		out = append(out, r.UF)
	}
	return out
}

func TestTopN_SortsDescending(t *testing.T) {
	snap := NewSnapshot([]StateRecord{
		{UF: "RJ", Confirmed: 500},
		{UF: "SP", Confirmed: 1500},
	})

	top := TopN(snap, DefaultTopN)
	assert.Equal(t, []string{"SP", "RJ"}, ufs(top))
	assert.Equal(t, []string{"RJ", "SP"}, ufs(snap), "input untouched")
}

func TestTopN_TruncatesToN(t *testing.T) {
	records := make([]StateRecord, 0, 27)
	for i := 0; i < 27; i++ {
		records = append(records, StateRecord{UF: fmt.Sprintf("%02d", i), Confirmed: int64((i * 7919) % 101)})
	}
	snap := NewSnapshot(records)

	top := TopN(snap, DefaultTopN)
	require.Equal(t, DefaultTopN, top.Len())
	for i := 1; i < top.Len(); i++ {
		assert.GreaterOrEqual(t, top.At(i-1).Confirmed, top.At(i).Confirmed)
	}
	assert.Equal(t, 27, snap.Len())
}

func TestTopN_StableOnTies(t *testing.T) {
	snap := NewSnapshot([]StateRecord{
		{UF: "AC", Confirmed: 10},
		{UF: "AL", Confirmed: 20},
		{UF: "AP", Confirmed: 10},
		{UF: "AM", Confirmed: 20},
		{UF: "BA", Confirmed: 10},
	})

	assert.Equal(t, []string{"AL", "AM", "AC", "AP", "BA"}, ufs(TopN(snap, 10)))
	assert.Equal(t, []string{"AL", "AM", "AC"}, ufs(TopN(snap, 3)))
}

func TestTopN_FewerRowsThanN(t *testing.T) {
	snap := NewSnapshot([]StateRecord{{UF: "SP", Confirmed: 1}})
	assert.Equal(t, 1, TopN(snap, 10).Len())
	assert.Zero(t, TopN(Snapshot{}, 10).Len())
}

func TestTopN_NonPositiveN(t *testing.T) {
	snap := NewSnapshot([]StateRecord{{UF: "SP", Confirmed: 1}})
	assert.Zero(t, TopN(snap, 0).Len())
	assert.Zero(t, TopN(snap, -3).Len())
}

func TestSnapshot_Immutable(t *testing.T) {
	src := []StateRecord{{UF: "SP", Confirmed: 1}}
	snap := NewSnapshot(src)
	src[0].UF = "XX"

	got := snap.Records()
	got[0].Confirmed = 99

	assert.Equal(t, "SP", snap.At(0).UF)
	assert.Equal(t, int64(1), snap.At(0).Confirmed)
}

func TestSnapshot_JSON(t *testing.T) {
	data, err := Snapshot{}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	var snap Snapshot
	require.NoError(t, snap.UnmarshalJSON([]byte(`[{"uf":"SP","confirmed":3}]`)))
	assert.Equal(t, []string{"SP"}, ufs(snap))
}
