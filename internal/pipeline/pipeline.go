// Package pipeline runs one daily note: fetch memories, mood and storyline
// for yesterday in parallel, render them, and store the note.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mrwolf/daybook/internal/dates"
	"github.com/mrwolf/daybook/internal/mood"
	"github.com/mrwolf/daybook/internal/notes"
	"github.com/mrwolf/daybook/internal/render"
	"github.com/mrwolf/daybook/internal/storyline"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TitleLayout formats the target day as the note title, e.g. "18/10/2026 Sun".
const TitleLayout = "02/01/2006 Mon"

// Fetch sources, as reported in FetchError.
const (
	SourceMemories  = "memories"
	SourceMood      = "mood"
	SourceStoryline = "storyline"
)

// ErrNoteCreate wraps any failure of the note sink.
var ErrNoteCreate = errors.New("creating note")

// FetchError reports which data source failed.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MemorySource finds earlier notes for a day.
type MemorySource interface {
	Memories(ctx context.Context, day dates.Date) ([]notes.Memory, error)
}

// MoodSource returns the most recent mood samples.
type MoodSource interface {
	RecentSamples(ctx context.Context) ([]mood.Sample, error)
}

// StorylineSource returns a day's raw storyline.
type StorylineSource interface {
	Storyline(ctx context.Context, day dates.Date, trackPoints bool) (*storyline.Day, error)
}

// NoteSink stores the finished note and returns its id.
type NoteSink interface {
	CreateNote(ctx context.Context, note notes.Note) (string, error)
}

// Renderer turns the bound data into the note body.
type Renderer interface {
	Render(ctx render.Context) (string, error)
}

// Deps are the collaborators of a run.
type Deps struct {
	Memories  MemorySource
	Mood      MoodSource
	Storyline StorylineSource
	Sink      NoteSink
	Renderer  Renderer
}

// Options are the run settings taken from the configuration.
type Options struct {
	Location     *time.Location
	NotebookGUID string
}

// Document is a rendered note that has not been stored yet.
type Document struct {
	RunID string
	Day   dates.Date
	Title string
	Body  string
}

// Result describes a stored note.
type Result struct {
	Document
	NoteID string
}

// Pipeline runs the daily note. It keeps no state between runs.
type Pipeline struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
}

// New creates a pipeline.
func New(deps Deps, opts Options, logger *zap.Logger) *Pipeline {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{deps: deps, opts: opts, logger: logger}
}

// Run builds the note for the day before now and stores it.
// Any failure aborts the run; nothing is stored unless every step succeeded.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (*Result, error) {
	doc, err := p.Preview(ctx, now)
	if err != nil {
		return nil, err
	}
	log := p.logger.With(zap.String("run_id", doc.RunID), zap.Stringer("day", doc.Day))

	note := notes.Note{
		Title:        doc.Title,
		Body:         doc.Body,
		Created:      doc.Day.Midnight(p.opts.Location),
		NotebookGUID: p.opts.NotebookGUID,
	}
	id, err := p.deps.Sink.CreateNote(ctx, note)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrNoteCreate, err)
		log.Error("note creation failed", zap.Error(err))
		return nil, err
	}

	log.Info("daily note created", zap.String("note_id", id), zap.String("title", doc.Title))
	return &Result{Document: *doc, NoteID: id}, nil
}

// Preview builds the note for the day before now without storing it.
func (p *Pipeline) Preview(ctx context.Context, now time.Time) (*Document, error) {
	runID := uuid.NewString()
	today := dates.In(now, p.opts.Location)
	target := today.AddDays(-1)
	log := p.logger.With(zap.String("run_id", runID), zap.Stringer("day", target))

	log.Info("fetching day")
	fetched, err := p.fetch(ctx, target)
	if err != nil {
		log.Error("fetch failed", zap.Error(err))
		return nil, err
	}

	summary := mood.Aggregate(fetched.samples, today, p.opts.Location)
	story, err := storyline.Transform(fetched.day)
	if err != nil {
		log.Error("storyline transform failed", zap.Error(err))
		return nil, fmt.Errorf("transforming storyline: %w", err)
	}

	title := target.Format(TitleLayout)
	body, err := p.deps.Renderer.Render(render.Context{
		Title:     title,
		Memories:  fetched.memories,
		Mood:      &summary,
		Storyline: story,
	})
	if err != nil {
		log.Error("render failed", zap.Error(err))
		return nil, err
	}

	log.Debug("document rendered",
		zap.Int("memories", len(fetched.memories)),
		zap.Int("mood_logs", summary.Logs),
		zap.Int("segments", len(story.Segments)))

	return &Document{RunID: runID, Day: target, Title: title, Body: body}, nil
}

type fetched struct {
	memories []notes.Memory
	samples  []mood.Sample
	day      *storyline.Day
}

// fetch loads the three sources concurrently. The first failure cancels
// the others and is returned.
func (p *Pipeline) fetch(ctx context.Context, day dates.Date) (*fetched, error) {
	var out fetched
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m, err := p.deps.Memories.Memories(gctx, day)
		if err != nil {
			return &FetchError{Source: SourceMemories, Err: err}
		}
		out.memories = m
		return nil
	})
	g.Go(func() error {
		s, err := p.deps.Mood.RecentSamples(gctx)
		if err != nil {
			return &FetchError{Source: SourceMood, Err: err}
		}
		out.samples = s
		return nil
	})
	g.Go(func() error {
		d, err := p.deps.Storyline.Storyline(gctx, day, true)
		if err != nil {
			return &FetchError{Source: SourceStoryline, Err: err}
		}
		out.day = d
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
