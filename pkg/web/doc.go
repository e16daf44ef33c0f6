// Package web serves the csvdash dashboard over HTTP.
//
// Each browser gets a session, identified by a cookie, that holds at most
// one loaded table. Pages are rendered server-side with html/template and
// charts are rendered to SVG by package plot.
package web
