package qdrant

import (
	"context"
	"errors"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// fakeAPI keeps points in memory and records the last query.
type fakeAPI struct {
	collections map[string]uint64
	points      map[string]*qdrant.PointStruct

	lastQuery *qdrant.QueryPoints
	queryFn   func(req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	upsertErr error
	getErr    error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		collections: map[string]uint64{},
		points:      map[string]*qdrant.PointStruct{},
	}
}

func (f *fakeAPI) HealthCheck(context.Context) (*qdrant.HealthCheckReply, error) {
	return &qdrant.HealthCheckReply{Title: "qdrant", Version: "test"}, nil
}

func (f *fakeAPI) CollectionExists(_ context.Context, name string) (bool, error) {
	_, ok := f.collections[name]
	return ok, nil
}

func (f *fakeAPI) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	if _, ok := f.collections[req.GetCollectionName()]; ok {
		return errors.New("collection already exists")
	}
	f.collections[req.GetCollectionName()] = req.GetVectorsConfig().GetParams().GetSize()
	return nil
}

func (f *fakeAPI) GetCollectionInfo(_ context.Context, name string) (*qdrant.CollectionInfo, error) {
	size, ok := f.collections[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return &qdrant.CollectionInfo{
		Config: &qdrant.CollectionConfig{
			Params: &qdrant.CollectionParams{
				VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
					Size:     size,
					Distance: qdrant.Distance_Cosine,
				}),
			},
		},
	}, nil
}

func (f *fakeAPI) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	for _, p := range req.GetPoints() {
		f.points[p.GetId().GetUuid()] = p
	}
	return &qdrant.UpdateResult{Status: qdrant.UpdateStatus_Completed}, nil
}

func (f *fakeAPI) Get(_ context.Context, req *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []*qdrant.RetrievedPoint
	for _, id := range req.GetIds() {
		p, ok := f.points[id.GetUuid()]
		if !ok {
			continue
		}
		out = append(out, &qdrant.RetrievedPoint{
			Id:      p.GetId(),
			Payload: p.GetPayload(),
			Vectors: vectorsOutput(p),
		})
	}
	return out, nil
}

func (f *fakeAPI) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.lastQuery = req
	if f.queryFn != nil {
		return f.queryFn(req)
	}
	return nil, nil
}

func (f *fakeAPI) Delete(_ context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
	for _, id := range req.GetPoints().GetPoints().GetIds() {
		delete(f.points, id.GetUuid())
	}
	return &qdrant.UpdateResult{Status: qdrant.UpdateStatus_Completed}, nil
}

func vectorsOutput(p *qdrant.PointStruct) *qdrant.VectorsOutput {
	in := p.GetVectors().GetVector()
	data := in.GetDense().GetData()
	if data == nil {
		data = in.GetData()
	}
	return &qdrant.VectorsOutput{
		VectorsOptions: &qdrant.VectorsOutput_Vector{
			Vector: &qdrant.VectorOutput{
				Vector: &qdrant.VectorOutput_Dense{
					Dense: &qdrant.DenseVector{Data: data},
				},
			},
		},
	}
}
