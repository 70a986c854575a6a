// Package models contains the resource model of the form store: forms and
// their component trees, submissions, roles, actions, projects and the
// paginated result pages returned by index requests.
//
// Every entity keeps the JSON fields it does not model in an Extra map, so a
// value that was loaded, modified and saved again carries all untouched
// fields back to the server unchanged.
package models
