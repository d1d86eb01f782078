// Package evernote talks to the note store: it searches the journal for
// earlier notes and creates the daily note.
package evernote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mrwolf/daybook/internal/dates"
	"github.com/mrwolf/daybook/internal/notes"
	"github.com/mrwolf/daybook/internal/transport"
)

// OrderCreated sorts search hits by creation time.
const OrderCreated = "CREATED"

// MemoryLimit caps how many earlier notes are surfaced.
const MemoryLimit = 10

// NoteMetadata is one search hit.
type NoteMetadata struct {
	GUID  string `json:"guid"`
	Title string `json:"title"`
}

// SearchRequest is the body of POST /notes/search.
type SearchRequest struct {
	Words     string `json:"words"`
	Order     string `json:"order"`
	Ascending bool   `json:"ascending"`
	Offset    int    `json:"offset"`
	MaxNotes  int    `json:"maxNotes"`
}

// SearchResponse is the reply of POST /notes/search.
type SearchResponse struct {
	TotalNotes int            `json:"totalNotes"`
	Notes      []NoteMetadata `json:"notes"`
}

// CreateRequest is the body of POST /notes.
type CreateRequest struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	Created      int64  `json:"created"` // unix milliseconds
	NotebookGUID string `json:"notebookGuid,omitempty"`
}

// CreateResponse is the reply of POST /notes.
type CreateResponse struct {
	GUID string `json:"guid"`
}

// Client is a note store client for one account.
type Client struct {
	http            *transport.Client
	baseURL         string
	userID          string
	shardID         string
	journalNotebook string
}

// Config identifies the account and note store.
type Config struct {
	BaseURL         string
	AccessToken     string
	UserID          string
	ShardID         string
	JournalNotebook string
}

// NewClient creates a note store client. opts configures the shared transport;
// the bearer token is added to its headers.
func NewClient(cfg Config, opts transport.Options) *Client {
	opts.Name = "evernote"
	header := opts.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set("Authorization", "Bearer "+cfg.AccessToken)
	opts.Header = header

	return &Client{
		http:            transport.New(opts),
		baseURL:         cfg.BaseURL,
		userID:          cfg.UserID,
		shardID:         cfg.ShardID,
		journalNotebook: cfg.JournalNotebook,
	}
}

// Search runs a note store search and returns the matching notes' metadata.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]NoteMetadata, error) {
	var resp SearchResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/notes/search", req, &resp); err != nil {
		return nil, fmt.Errorf("searching notes: %w", err)
	}
	return resp.Notes, nil
}

// Memories returns journal notes whose title carries day's day and month,
// newest first. These are the same date in earlier years.
func (c *Client) Memories(ctx context.Context, day dates.Date) ([]notes.Memory, error) {
	found, err := c.Search(ctx, SearchRequest{
		Words:     MemoryQuery(c.journalNotebook, day),
		Order:     OrderCreated,
		Ascending: false,
		MaxNotes:  MemoryLimit,
	})
	if err != nil {
		return nil, err
	}

	memories := make([]notes.Memory, 0, len(found))
	for _, n := range found {
		memories = append(memories, notes.Memory{
			Link:  c.NoteLink(n.GUID),
			Title: n.Title,
		})
	}
	return memories, nil
}

// CreateNote uploads note, wrapping its body in ENML, and returns the new GUID.
func (c *Client) CreateNote(ctx context.Context, note notes.Note) (string, error) {
	req := CreateRequest{
		Title:        note.Title,
		Content:      notes.WrapENML(note.Body),
		NotebookGUID: note.NotebookGUID,
	}
	if !note.Created.IsZero() {
		req.Created = note.Created.UnixMilli()
	}

	var resp CreateResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/notes", req, &resp); err != nil {
		return "", fmt.Errorf("creating note: %w", err)
	}
	if resp.GUID == "" {
		return "", fmt.Errorf("creating note: empty guid in response")
	}
	return resp.GUID, nil
}

// NoteLink is the in-app link that opens a note.
func (c *Client) NoteLink(guid string) string {
	return fmt.Sprintf("evernote:///view/%s/%s/%s/%s/", c.userID, c.shardID, guid, guid)
}

// MemoryQuery builds the search grammar for notes in notebook titled with day's DD/MM/.
func MemoryQuery(notebook string, day dates.Date) string {
	return "notebook:" + notebook + " intitle:" + day.Format("02/01/")
}
