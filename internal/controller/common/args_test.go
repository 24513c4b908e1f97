package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRest(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"no args", "/requests", ""},
		{"args", "/request Go | каналы", "Go | каналы"},
		{"bot mention", "/accept@skillbot 42", "42"},
		{"extra spaces", "  /join   7  ", "7"},
		{"plain text", "hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommandRest(tt.text))
		})
	}
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "/join", CommandName("/join@skillbot 5"))
	assert.Equal(t, "/requests", CommandName("/requests"))
	assert.Equal(t, "/request", CommandName("/request Go"))
	assert.Equal(t, "", CommandName("join 5"))
	assert.Equal(t, "", CommandName(""))
}

func TestCommandArgs(t *testing.T) {
	args := CommandArgs("/schedule 12 2026-11-03 18:30 online")
	assert.Equal(t, []string{"12", "2026-11-03", "18:30", "online"}, args)
	assert.Empty(t, CommandArgs("/lessons"))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = ParseID("#7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, bad := range []string{"", "0", "-3", "abc", "1.5"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidFormat, bad)
	}
}

func TestParseDateTime(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)

	got, err := ParseDateTime("2026-11-03", "18:30", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 11, 3, 15, 30, 0, 0, time.UTC)))

	_, err = ParseDateTime("03.11.2026", "18:30", loc)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseCallback(t *testing.T) {
	prefix, id, err := ParseCallback("accept:15")
	require.NoError(t, err)
	assert.Equal(t, CallbackAccept, prefix)
	assert.Equal(t, int64(15), id)

	prefix, id, err = ParseCallback("join:3")
	require.NoError(t, err)
	assert.Equal(t, CallbackJoin, prefix)
	assert.Equal(t, int64(3), id)

	for _, bad := range []string{"accept", "accept:", "join:x", "a:b:c"} {
		_, _, err := ParseCallback(bad)
		assert.ErrorIs(t, err, ErrInvalidFormat, bad)
	}
}

func TestSplitTopic(t *testing.T) {
	skill, topic := SplitTopic(" Go | каналы и select ")
	assert.Equal(t, "Go", skill)
	assert.Equal(t, "каналы и select", topic)

	skill, topic = SplitTopic("SQL")
	assert.Equal(t, "SQL", skill)
	assert.Empty(t, topic)
}
