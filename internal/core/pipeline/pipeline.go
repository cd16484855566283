package pipeline

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TargetSystem identifies which datastore a plan runs against.
type TargetSystem string

const (
	TargetMySQL   TargetSystem = "mysql"
	TargetMongoDB TargetSystem = "mongodb"
)

// Stage is one aggregation stage as a tagged variant, so the synthesizer's
// validator can pattern-match exhaustively instead of probing nested maps.
type Stage interface {
	// Render produces the driver-level stage document.
	Render() bson.D
}

// Match filters documents.
type Match struct {
	Filter bson.D
}

func (s Match) Render() bson.D { return bson.D{{Key: "$match", Value: s.Filter}} }

// Group aggregates documents. ID is the group key expression, Accumulators
// the output fields (field name -> accumulator document).
type Group struct {
	ID           interface{}
	Accumulators bson.D
}

func (s Group) Render() bson.D {
	doc := bson.D{{Key: "_id", Value: s.ID}}
	doc = append(doc, s.Accumulators...)
	return bson.D{{Key: "$group", Value: doc}}
}

// Sort orders documents. Keys preserve declaration order.
type Sort struct {
	Keys bson.D
}

func (s Sort) Render() bson.D { return bson.D{{Key: "$sort", Value: s.Keys}} }

// Limit bounds the result size.
type Limit struct {
	N int64
}

func (s Limit) Render() bson.D { return bson.D{{Key: "$limit", Value: s.N}} }

// Lookup joins another collection.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
}

func (s Lookup) Render() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: s.From},
		{Key: "localField", Value: s.LocalField},
		{Key: "foreignField", Value: s.ForeignField},
		{Key: "as", Value: s.As},
	}}}
}

// Unwind flattens an array field.
type Unwind struct {
	Path                       string
	PreserveNullAndEmptyArrays bool
}

func (s Unwind) Render() bson.D {
	if !s.PreserveNullAndEmptyArrays {
		return bson.D{{Key: "$unwind", Value: s.Path}}
	}
	return bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: s.Path},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}}
}

// Project reshapes documents.
type Project struct {
	Spec bson.D
}

func (s Project) Render() bson.D { return bson.D{{Key: "$project", Value: s.Spec}} }

// Count emits a single document with the result count.
type Count struct {
	Field string
}

func (s Count) Render() bson.D { return bson.D{{Key: "$count", Value: s.Field}} }

// Pipeline is an ordered stage sequence against one MongoDB collection.
type Pipeline struct {
	Collection string
	Stages     []Stage
}

// Render produces the driver pipeline.
func (p *Pipeline) Render() mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(p.Stages))
	for _, s := range p.Stages {
		out = append(out, s.Render())
	}
	return out
}

// HasLimit reports whether any stage bounds the row count.
func (p *Pipeline) HasLimit() bool {
	for _, s := range p.Stages {
		switch s.(type) {
		case Limit, Count:
			return true
		}
	}
	return false
}

// SQLQuery is the MySQL counterpart of a pipeline.
type SQLQuery struct {
	SQL  string
	Args []interface{}
}

// Plan is the executable union handed to the Query Executor: exactly one of
// Mongo or SQL is set, according to Target.
type Plan struct {
	Target TargetSystem
	Mongo  *Pipeline
	SQL    *SQLQuery
}
