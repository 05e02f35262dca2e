package stream

import (
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	msg := redis.XMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"key":     "98765432100:1700000000000",
			"payload": `{"id":"ext-1","doc":"98765432100","name":"José dos Santos","email":"jose@farm.example","phone":"+5571988880000","defaulting":"2026-01-15"}`,
		},
	}

	evt, err := decodeEvent(msg)
	require.NoError(t, err)
	require.Equal(t, "98765432100", evt.Doc)
	require.Equal(t, "José dos Santos", evt.Name)
	require.Equal(t, "jose@farm.example", evt.Email)
	require.NotNil(t, evt.Defaulting)
	require.Equal(t, "2026-01-15", *evt.Defaulting)
}

func TestDecodeEvent_NullDefaulting(t *testing.T) {
	msg := redis.XMessage{
		Values: map[string]interface{}{
			"payload": `{"id":"ext-1","doc":"98765432100","name":"José","email":"jose@farm.example","defaulting":null}`,
		},
	}

	evt, err := decodeEvent(msg)
	require.NoError(t, err)
	require.Nil(t, evt.Defaulting)
}

func TestDecodeEvent_MissingPayload(t *testing.T) {
	_, err := decodeEvent(redis.XMessage{Values: map[string]interface{}{"key": "x"}})
	require.Error(t, err)
}

func TestDecodeEvent_BadJSON(t *testing.T) {
	_, err := decodeEvent(redis.XMessage{Values: map[string]interface{}{"payload": "{not json"}})
	require.Error(t, err)
}

func TestDecodeEvent_MissingDoc(t *testing.T) {
	_, err := decodeEvent(redis.XMessage{Values: map[string]interface{}{"payload": `{"name":"José"}`}})
	require.Error(t, err)
}
