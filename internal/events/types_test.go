package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-tracker-api/internal/domain"
)

func TestTypeOf_ParseType_AllKinds(t *testing.T) {
	count := 0
	for _, kind := range domain.Kinds() {
		for _, action := range Actions() {
			typ := TypeOf(kind, action)
			gotKind, gotAction, err := ParseType(typ)
			require.NoError(t, err, typ)
			assert.Equal(t, kind, gotKind)
			assert.Equal(t, action, gotAction)
			count++
		}
	}
	assert.Equal(t, 45, count)
	assert.Equal(t, Type("BACKLOG_ITEM_DELETED"), TypeOf(domain.KindBacklogItem, ActionDeleted))
}

func TestParseType_Invalid(t *testing.T) {
	for _, typ := range []Type{"", "PROJECT", "PROJECT_", "_CREATED", "WIDGET_CREATED", "PROJECT_ARCHIVED", "project_created"} {
		t.Run(string(typ), func(t *testing.T) {
			_, _, err := ParseType(typ)
			assert.Error(t, err)
		})
	}
}

func TestDecode(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"TASK_UPDATED","payload":{"id":"t1","status":"DONE"}}`))
	require.NoError(t, err)
	assert.Equal(t, Type("TASK_UPDATED"), msg.Type)
	id, ok := msg.Payload.String("id")
	assert.True(t, ok)
	assert.Equal(t, "t1", id)

	msg, err = Decode([]byte(`{"type":"PROJECT_DELETED"}`))
	require.NoError(t, err)
	assert.NotNil(t, msg.Payload)

	for _, bad := range []string{`not json`, `{}`, `{"type":42}`, `{"type":"NOPE_CREATED"}`, `{"type":"TASK_CREATED","payload":[1]}`} {
		_, err := Decode([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestPayload_String(t *testing.T) {
	p := Payload{"id": "x", "empty": "", "num": 3.0}
	v, ok := p.String("id")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = p.String("empty")
	assert.False(t, ok)
	_, ok = p.String("num")
	assert.False(t, ok)
	_, ok = p.String("missing")
	assert.False(t, ok)
}

func TestMessage_EncodeRoundTrip(t *testing.T) {
	msg := NewMessage(domain.KindEpic, ActionCreated, Payload{"id": "e1", "projectId": "p1"})
	data, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
}
