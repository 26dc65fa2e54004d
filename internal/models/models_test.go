package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_DecodesBackendFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{`"2024-05-01T10:00:00.123456"`, time.Date(2024, time.May, 1, 10, 0, 0, 123456000, time.UTC)},
		{`"2024-05-01T10:00:00"`, time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)},
		{`"2024-05-01T12:00:00+02:00"`, time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)},
		{`"2024-05-01T10:00:00.5Z"`, time.Date(2024, time.May, 1, 10, 0, 0, 500000000, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.True(t, ts.Equal(tt.want), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_NullAndInvalid(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"created_at":"2024-05-01T10:00:00.123456","last_login":null}`), &u))
	assert.Nil(t, u.LastLogin)
	assert.Equal(t, 2024, u.CreatedAt.Year())

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestTimestamp_EncodesWithoutOffset(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	ts := NewTimestamp(time.Date(2024, time.May, 1, 12, 0, 0, 123456000, loc))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-01T10:00:00.123456"`, string(data))

	data, err = json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
