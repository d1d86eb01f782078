// Package notes holds the note types shared by the note sinks.
package notes

import (
	"strings"
	"time"
)

const (
	enmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` +
		`<!DOCTYPE en-note SYSTEM "http://xml.evernote.com/pub/enml2.dtd">` +
		`<en-note>`
	enmlFooter = `</en-note>`
)

// Note is a rendered daily note ready to be stored.
type Note struct {
	Title        string
	Body         string    // HTML fragment, not yet wrapped
	Created      time.Time // midnight of the day the note is about
	NotebookGUID string    // optional parent notebook
}

// Memory is an earlier journal note surfaced in the new one.
type Memory struct {
	Link  string
	Title string
}

// WrapENML wraps an HTML fragment in the ENML document preamble.
// A body that is already wrapped is returned unchanged.
func WrapENML(body string) string {
	if strings.HasPrefix(body, enmlHeader) {
		return body
	}
	return enmlHeader + body + enmlFooter
}
