// Package sqlexec runs read-only SQL over the observation dataset. Each call
// gets a fresh private in-memory SQLite database holding one table.
package sqlexec

import (
	"fmt"
	"strings"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/apperr"
)

// Messages returned to the caller. They are part of the tool contract seen by
// the language model and are kept verbatim.
const (
	MsgSuccess       = "Query successful"
	MsgEmpty         = "No records found based on your query."
	MsgInvalidInput  = "Error: Invalid input for SQL query. Must be string or dictionary"
	MsgMissingQuery  = "Error: No SQL query found in the dictionary"
	MsgUnsafeQuery   = "Error: Invalid SQL query. Must contain SELECT and FROM keywords."
	msgExecutePrefix = "Error executing SQL query: "
)

// QueryKey is the mapping key that carries the query text.
const QueryKey = "sql_query"

// Request is a query request normalized from either a raw string or a
// mapping holding QueryKey. A request built from a malformed input carries
// the error and is rejected by the executor before anything runs.
type Request struct {
	query string
	err   *apperr.E
}

// Raw builds a request from query text.
func Raw(query string) Request { return Request{query: query} }

// Mapping builds a request from a key/value mapping. Only QueryKey is read;
// other keys are ignored.
func Mapping(m map[string]any) Request {
	v, ok := m[QueryKey]
	if !ok || v == nil {
		return Request{err: apperr.New(apperr.MalformedInput, MsgMissingQuery)}
	}
	s, ok := v.(string)
	if !ok {
		return Request{err: apperr.New(apperr.MalformedInput, MsgInvalidInput)}
	}
	if s == "" {
		return Request{err: apperr.New(apperr.MalformedInput, MsgMissingQuery)}
	}
	return Request{query: s}
}

// ParseRequest normalizes an arbitrary decoded value into a Request.
func ParseRequest(v any) Request {
	switch t := v.(type) {
	case Request:
		return t
	case string:
		return Raw(t)
	case map[string]any:
		return Mapping(t)
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return Mapping(m)
	default:
		return Request{err: apperr.Wrap(apperr.MalformedInput, MsgInvalidInput, fmt.Errorf("unsupported request type %T", v))}
	}
}

// Query returns the trimmed query text.
func (r Request) Query() string { return strings.TrimSpace(r.query) }

// Err returns the shape error for a malformed request, or nil.
func (r Request) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// CheckPolicy applies the read-only policy: the query must contain both
// "select" and "from" as case-insensitive substrings. It is a coarse guard,
// not a parser; "SELECT 1 FROM x; DROP TABLE y" passes and relies on the
// engine rejecting multiple statements.
func CheckPolicy(query string) error {
	q := strings.ToLower(query)
	if !strings.Contains(q, "select") || !strings.Contains(q, "from") {
		return apperr.New(apperr.UnsafeQuery, MsgUnsafeQuery)
	}
	return nil
}
