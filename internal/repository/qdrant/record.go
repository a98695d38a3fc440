package qdrant

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/vecrud/internal/domain"
	"github.com/kailas-cloud/vecrud/internal/domain/metadata"
	"github.com/kailas-cloud/vecrud/internal/domain/query/filter"
	"github.com/kailas-cloud/vecrud/internal/domain/query/result"
	domrec "github.com/kailas-cloud/vecrud/internal/domain/record"
)

// RecordRepo implements usecase/record.Repository.
type RecordRepo struct {
	api api
}

// Insert adds a record. Qdrant only upserts, so the id is probed first.
func (r *RecordRepo) Insert(ctx context.Context, collectionName string, rec domrec.Record) error {
	found, err := r.exists(ctx, collectionName, rec.ID())
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("record %q: %w", rec.ID(), domain.ErrAlreadyExists)
	}
	return r.upsert(ctx, collectionName, rec)
}

// Get returns a record by id.
func (r *RecordRepo) Get(ctx context.Context, collectionName, id string) (domrec.Record, error) {
	points, err := r.get(ctx, collectionName, id, true)
	if err != nil {
		return domrec.Record{}, err
	}
	if len(points) == 0 {
		return domrec.Record{}, fmt.Errorf("record %q: %w", id, domain.ErrNotFound)
	}
	p := points[0]
	doc, md, err := fromPayload(p.GetPayload())
	if err != nil {
		return domrec.Record{}, fmt.Errorf("record %q: %w", id, err)
	}
	return domrec.Reconstruct(id, doc, denseVector(p.GetVectors()), md), nil
}

// Replace overwrites an existing record.
func (r *RecordRepo) Replace(ctx context.Context, collectionName string, rec domrec.Record) error {
	found, err := r.exists(ctx, collectionName, rec.ID())
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("record %q: %w", rec.ID(), domain.ErrNotFound)
	}
	return r.upsert(ctx, collectionName, rec)
}

// Delete removes a record. Deleting a missing id is not an error.
func (r *RecordRepo) Delete(ctx context.Context, collectionName, id string) error {
	wait := true
	_, err := r.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Wait:           &wait,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{pointID(id)}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	return nil
}

// Search returns up to topK records matching where, closest first.
func (r *RecordRepo) Search(
	ctx context.Context, collectionName string,
	vector []float32, where filter.Where, topK int,
) ([]result.Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	limit := uint64(topK)
	points, err := r.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		Filter:         buildFilter(where),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collectionName, err)
	}

	matches := make([]result.Match, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		id := payload[payloadID].GetStringValue()
		doc, md, err := fromPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", id, err)
		}
		matches = append(matches, result.NewMatch(id, float64(p.GetScore()), doc, md, denseVector(p.GetVectors())))
	}
	return matches, nil
}

func (r *RecordRepo) exists(ctx context.Context, collectionName, id string) (bool, error) {
	points, err := r.get(ctx, collectionName, id, false)
	if err != nil {
		return false, err
	}
	return len(points) > 0, nil
}

func (r *RecordRepo) get(ctx context.Context, collectionName, id string, full bool) ([]*qdrant.RetrievedPoint, error) {
	points, err := r.api.Get(ctx, &qdrant.GetPoints{
		CollectionName: collectionName,
		Ids:            []*qdrant.PointId{pointID(id)},
		WithPayload:    qdrant.NewWithPayload(full),
		WithVectors:    qdrant.NewWithVectors(full),
	})
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", id, err)
	}
	return points, nil
}

func (r *RecordRepo) upsert(ctx context.Context, collectionName string, rec domrec.Record) error {
	wait := true
	_, err := r.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{{
			Id:      pointID(rec.ID()),
			Vectors: qdrant.NewVectors(rec.Embedding()...),
			Payload: toPayload(rec),
		}},
	})
	if err != nil {
		return fmt.Errorf("upsert %q: %w", rec.ID(), err)
	}
	return nil
}

func toPayload(rec domrec.Record) map[string]*qdrant.Value {
	md := rec.Metadata()
	payload := make(map[string]*qdrant.Value, len(md)+2)
	payload[payloadID] = qdrant.NewValueString(rec.ID())
	payload[payloadDocument] = qdrant.NewValueString(rec.Text())
	for k, v := range md {
		payload[k] = toValue(v)
	}
	return payload
}

func toValue(v metadata.Value) *qdrant.Value {
	switch v.Kind() {
	case metadata.KindNumber:
		return qdrant.NewValueDouble(v.Num())
	case metadata.KindBool:
		return qdrant.NewValueBool(v.Boolean())
	default:
		return qdrant.NewValueString(v.Str())
	}
}

// fromPayload splits a payload into the document and the metadata map.
func fromPayload(payload map[string]*qdrant.Value) (string, metadata.Metadata, error) {
	doc := payload[payloadDocument].GetStringValue()
	var md metadata.Metadata
	for k, v := range payload {
		if k == payloadID || k == payloadDocument {
			continue
		}
		val, err := fromValue(v)
		if err != nil {
			return "", nil, fmt.Errorf("payload %q: %w", k, err)
		}
		if md == nil {
			md = make(metadata.Metadata, len(payload))
		}
		md[k] = val
	}
	return doc, md, nil
}

func fromValue(v *qdrant.Value) (metadata.Value, error) {
	switch k := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return metadata.String(k.StringValue), nil
	case *qdrant.Value_DoubleValue:
		return metadata.Number(k.DoubleValue), nil
	case *qdrant.Value_IntegerValue:
		return metadata.Number(float64(k.IntegerValue)), nil
	case *qdrant.Value_BoolValue:
		return metadata.Bool(k.BoolValue), nil
	default:
		return metadata.Value{}, fmt.Errorf("unsupported payload value %T", k)
	}
}

// buildFilter turns equalities into Must conditions; numbers use a closed range.
func buildFilter(where filter.Where) *qdrant.Filter {
	if where.IsEmpty() {
		return nil
	}
	conds := make([]*qdrant.Condition, 0, len(where.Conditions()))
	for _, c := range where.Conditions() {
		v := c.Value()
		switch v.Kind() {
		case metadata.KindNumber:
			n := v.Num()
			conds = append(conds, qdrant.NewRange(c.Key(), &qdrant.Range{Gte: &n, Lte: &n}))
		case metadata.KindBool:
			conds = append(conds, qdrant.NewMatchBool(c.Key(), v.Boolean()))
		default:
			conds = append(conds, qdrant.NewMatch(c.Key(), v.Str()))
		}
	}
	return &qdrant.Filter{Must: conds}
}

// denseVector reads the unnamed dense vector of a point.
func denseVector(v *qdrant.VectorsOutput) []float32 {
	out := v.GetVector()
	if out == nil {
		return nil
	}
	if dense := out.GetDense(); dense != nil {
		return dense.GetData()
	}
	return out.GetData()
}
