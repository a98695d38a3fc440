// Package demo runs the fixed create/read/update/query/delete walkthrough.
package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/kailas-cloud/vecrud/internal/domain/metadata"
	"github.com/kailas-cloud/vecrud/internal/domain/query/request"
	"github.com/kailas-cloud/vecrud/internal/domain/query/result"
	domrec "github.com/kailas-cloud/vecrud/internal/domain/record"
	"github.com/kailas-cloud/vecrud/internal/plot"
)

// Records is the subset of usecase/record.Service the walkthrough drives.
type Records interface {
	Create(ctx context.Context, id, text string, md metadata.Metadata) (domrec.Record, error)
	Read(ctx context.Context, id string) (domrec.Lookup, error)
	Update(ctx context.Context, id, text string, md metadata.Metadata) (domrec.Record, error)
	Delete(ctx context.Context, id string) error
	NewQuery(text string, where metadata.Metadata, topK int) (request.Request, error)
	Query(ctx context.Context, req request.Request) (result.Set, error)
}

// Entry is one record of the walkthrough.
type Entry struct {
	ID       string
	Text     string
	Metadata metadata.Metadata
}

// Fixed walkthrough data.
var (
	Seed = []Entry{
		{ID: "1", Text: "ChromaDB es una base de datos vectorial",
			Metadata: metadata.Metadata{"categoria": metadata.String("base de datos")}},
		{ID: "2", Text: "Hugging Face provee modelos de IA",
			Metadata: metadata.Metadata{"categoria": metadata.String("IA")}},
	}
	Revision = Entry{ID: "1", Text: "ChromaDB es una potente base de datos vectorial",
		Metadata: metadata.Metadata{
			"categoria":   metadata.String("base de datos"),
			"actualizado": metadata.Bool(true),
		}}
	QueryText   = "¿Qué es ChromaDB?"
	QueryFilter = metadata.Metadata{"categoria": metadata.String("base de datos")}
	QueryTopK   = 5
)

// Options control the walkthrough output.
type Options struct {
	// Plot draws the query results after printing them.
	Plot bool
	// UseScores sizes plotted bars by similarity.
	UseScores bool
}

// Runner prints the walkthrough progress to out.
type Runner struct {
	records Records
	out     io.Writer
	opts    Options
}

// New creates a Runner.
func New(records Records, out io.Writer, opts Options) *Runner {
	return &Runner{records: records, out: out, opts: opts}
}

// Run executes create x2, read, update, read, query, delete, read.
// The first failing step aborts the run.
func (r *Runner) Run(ctx context.Context) error {
	for _, e := range Seed {
		if err := r.create(ctx, e); err != nil {
			return err
		}
	}

	r.section("Read entry " + Revision.ID)
	if err := r.read(ctx, Revision.ID); err != nil {
		return err
	}

	r.section("Update entry " + Revision.ID)
	if _, err := r.records.Update(ctx, Revision.ID, Revision.Text, Revision.Metadata); err != nil {
		return fmt.Errorf("update %s: %w", Revision.ID, err)
	}
	r.printf("Entry %s updated.\n", Revision.ID)
	if err := r.read(ctx, Revision.ID); err != nil {
		return err
	}

	r.section("Filtered query")
	if err := r.query(ctx); err != nil {
		return err
	}

	r.section("Delete entry " + Revision.ID)
	r.printf("Deleting entry %s...\n", Revision.ID)
	if err := r.records.Delete(ctx, Revision.ID); err != nil {
		return fmt.Errorf("delete %s: %w", Revision.ID, err)
	}
	r.printf("Entry %s deleted.\n", Revision.ID)
	return r.read(ctx, Revision.ID)
}

func (r *Runner) create(ctx context.Context, e Entry) error {
	if _, err := r.records.Create(ctx, e.ID, e.Text, e.Metadata); err != nil {
		return fmt.Errorf("create %s: %w", e.ID, err)
	}
	r.printf("Entry %s created.\n", e.ID)
	return nil
}

func (r *Runner) read(ctx context.Context, id string) error {
	r.printf("Reading entry %s...\n", id)
	lookup, err := r.records.Read(ctx, id)
	if err != nil {
		return fmt.Errorf("read %s: %w", id, err)
	}
	r.printf("%s\n", lookup)
	return nil
}

func (r *Runner) query(ctx context.Context) error {
	r.printf("Querying %q with filter %s\n", QueryText, QueryFilter)
	req, err := r.records.NewQuery(QueryText, QueryFilter, QueryTopK)
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	set, err := r.records.Query(ctx, req)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	r.printf("%s\n", set)

	if r.opts.Plot {
		if err := plot.Render(r.out, set, plot.Options{UseScores: r.opts.UseScores}); err != nil {
			return fmt.Errorf("plot: %w", err)
		}
	}
	return nil
}

func (r *Runner) section(title string) {
	r.printf("\n--- %s ---\n", title)
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}
