package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
)

var at = time.Date(2025, time.March, 10, 8, 15, 0, 0, time.UTC)

func sampleState() journal.AppState {
	return journal.AppState{
		Reflections: []journal.Reflection{
			{ID: "r1", Date: at, Content: "Delegated the release", Category: journal.CategoryProgress},
		},
		Triggers: []journal.Trigger{
			{ID: "t1", Timestamp: at.Add(time.Hour), Trigger: "Scope creep", Notes: "", Intensity: 7},
		},
		Accomplishments: []journal.Accomplishment{
			{ID: "a1", Date: at.Add(2 * time.Hour), Title: "Hired a lead", Details: "after six rounds"},
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for name, state := range map[string]journal.AppState{
		"populated": sampleState(),
		"empty":     journal.Empty(),
	} {
		t.Run(name, func(t *testing.T) {
			data, err := Encode(state)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, state, got)
		})
	}
}

func TestEncode_WritesVersionAndEmptyArrays(t *testing.T) {
	data, err := Encode(journal.AppState{})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `1`, string(raw["version"]))
	assert.JSONEq(t, `[]`, string(raw["reflections"]))
	assert.JSONEq(t, `[]`, string(raw["triggers"]))
	assert.JSONEq(t, `[]`, string(raw["accomplishments"]))
}

func TestDecode_UnversionedBlob(t *testing.T) {
	legacy := `{
		"reflections": [{"id":"1700000000000","date":"2024-11-02T10:00:00.000Z","content":"Said no","category":"Stress Management"}],
		"triggers": [],
		"accomplishments": [{"id":"1700000000001","date":"2024-11-03T10:00:00.000Z","title":"Closed Q4 plan","details":""}]
	}`

	got, err := Decode([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, got.Reflections, 1)
	assert.Equal(t, journal.CategoryStress, got.Reflections[0].Category)
	assert.NotNil(t, got.Triggers)
	assert.Equal(t, "Closed Q4 plan", got.Accomplishments[0].Title)
}

func TestDecode_MissingCollections(t *testing.T) {
	got, err := Decode([]byte(`{"version":1,"reflections":[]}`))
	require.NoError(t, err)
	assert.Equal(t, journal.Empty(), got)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		blob    string
		wantErr error
	}{
		{name: "not json", blob: `{not json`, wantErr: ErrCorrupt},
		{name: "array", blob: `[1,2,3]`, wantErr: ErrCorrupt},
		{name: "wrong field type", blob: `{"version":1,"triggers":"oops"}`, wantErr: ErrCorrupt},
		{name: "future version", blob: `{"version":2,"reflections":[]}`, wantErr: ErrUnsupportedVersion},
		{name: "negative version", blob: `{"version":-1}`, wantErr: ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.blob))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, journal.Empty(), got, "failed decode must never return partial state")
		})
	}
}

func TestDecode_TruncatedBlob(t *testing.T) {
	data, err := Encode(sampleState())
	require.NoError(t, err)

	got, err := Decode(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, journal.Empty(), got)
}
