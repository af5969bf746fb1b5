package model

import (
	"encoding/json"
	"fmt"
)

// Todo is the domain model for a todo entry. The ID is assigned by the
// server; an empty ID means the record has not round-tripped through a
// create response yet.
type Todo struct {
	ID    string
	Title string
	Done  bool
}

// ParseError reports a response body that does not match the wire contract.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse todo: %s: %s", e.Field, e.Reason)
}

// objectID accepts the two identifier encodings the backend emits: a
// BSON-style document {"$oid": "<hex>"} or a bare string. Anything else
// (absent, null, wrong type) decodes to the empty string, never to an
// error.
type objectID string

func (o *objectID) UnmarshalJSON(b []byte) error {
	var doc struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(b, &doc); err == nil && doc.OID != "" {
		*o = objectID(doc.OID)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*o = objectID(s)
		return nil
	}
	*o = ""
	return nil
}

// wireTodo is the response shape. title and done are pointers so that a
// missing field is distinguishable from a zero value.
type wireTodo struct {
	ID    objectID `json:"_id"`
	Title *string  `json:"title"`
	Done  *bool    `json:"done"`
}

func (w wireTodo) toTodo() (Todo, error) {
	if w.Title == nil {
		return Todo{}, &ParseError{Field: "title", Reason: "missing or not a string"}
	}
	if w.Done == nil {
		return Todo{}, &ParseError{Field: "done", Reason: "missing or not a bool"}
	}
	return Todo{ID: string(w.ID), Title: *w.Title, Done: *w.Done}, nil
}

// DecodeTodo maps one wire object to a Todo.
func DecodeTodo(data []byte) (Todo, error) {
	var w wireTodo
	if err := json.Unmarshal(data, &w); err != nil {
		return Todo{}, &ParseError{Field: "body", Reason: err.Error()}
	}
	return w.toTodo()
}

// DecodeTodos maps a wire array to Todos, preserving server order.
func DecodeTodos(data []byte) ([]Todo, error) {
	var ws []wireTodo
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, &ParseError{Field: "body", Reason: err.Error()}
	}
	todos := make([]Todo, 0, len(ws))
	for _, w := range ws {
		t, err := w.toTodo()
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// CreatePayload is the create request body. The identifier is never sent
// on create; the server assigns it.
type CreatePayload struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// UpdatePayload is the update request body. The identifier travels in
// the URL path, not here.
type UpdatePayload struct {
	Done bool `json:"done"`
}
