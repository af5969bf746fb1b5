package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTodoObjectID(t *testing.T) {
	todo, err := DecodeTodo([]byte(`{"_id":{"$oid":"abc123"},"title":"x","done":false}`))
	require.NoError(t, err)
	assert.Equal(t, Todo{ID: "abc123", Title: "x", Done: false}, todo)
}

func TestDecodeTodoStringID(t *testing.T) {
	todo, err := DecodeTodo([]byte(`{"_id":"abc123","title":"x","done":true}`))
	require.NoError(t, err)
	assert.Equal(t, "abc123", todo.ID)
	assert.True(t, todo.Done)
}

func TestDecodeTodoAbsentID(t *testing.T) {
	todo, err := DecodeTodo([]byte(`{"title":"x","done":false}`))
	require.NoError(t, err)
	assert.Empty(t, todo.ID)
}

func TestDecodeTodoUnusableID(t *testing.T) {
	// wrong types never fail the parse; they mean "not yet assigned"
	for _, body := range []string{
		`{"_id":42,"title":"x","done":false}`,
		`{"_id":null,"title":"x","done":false}`,
		`{"_id":{"other":"y"},"title":"x","done":false}`,
		`{"_id":["abc"],"title":"x","done":false}`,
	} {
		todo, err := DecodeTodo([]byte(body))
		require.NoError(t, err, body)
		assert.Empty(t, todo.ID, body)
	}
}

func TestDecodeTodoMissingTitle(t *testing.T) {
	_, err := DecodeTodo([]byte(`{"_id":"abc123","done":false}`))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "title", pe.Field)
}

func TestDecodeTodoMissingDone(t *testing.T) {
	_, err := DecodeTodo([]byte(`{"_id":"abc123","title":"x"}`))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "done", pe.Field)
}

func TestDecodeTodoMistyped(t *testing.T) {
	_, err := DecodeTodo([]byte(`{"title":7,"done":false}`))
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = DecodeTodo([]byte(`{"title":"x","done":"nope"}`))
	assert.ErrorAs(t, err, &pe)
}

func TestDecodeTodos(t *testing.T) {
	todos, err := DecodeTodos([]byte(`[{"_id":{"$oid":"1"},"title":"a","done":false},{"_id":"2","title":"b","done":true}]`))
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "1", todos[0].ID)
	assert.Equal(t, "2", todos[1].ID)
}

func TestDecodeTodosEmpty(t *testing.T) {
	todos, err := DecodeTodos([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestDecodeTodosBadElement(t *testing.T) {
	_, err := DecodeTodos([]byte(`[{"done":false}]`))
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}
