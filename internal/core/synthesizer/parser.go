package synthesizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ludapartners/luda-mind/internal/core/pipeline"
)

// parseMongoResponse decodes the model's JSON answer into typed stages.
// Extended JSON is used so {"$date": ...} values arrive as real timestamps and
// key order is preserved for the structural GMV comparison.
func parseMongoResponse(raw string) (*pipeline.Pipeline, error) {
	cleaned, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(cleaned), false, &doc); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	var collection string
	var rawStages bson.A
	for _, e := range doc {
		switch e.Key {
		case "collection":
			collection, _ = e.Value.(string)
		case "stages":
			rawStages, _ = e.Value.(bson.A)
		}
	}
	if collection == "" {
		return nil, fmt.Errorf("response is missing the collection name")
	}
	if len(rawStages) == 0 {
		return nil, fmt.Errorf("response contains no stages")
	}

	stages := make([]pipeline.Stage, 0, len(rawStages))
	for i, rawStage := range rawStages {
		stageDoc, ok := rawStage.(bson.D)
		if !ok || len(stageDoc) == 0 {
			return nil, fmt.Errorf("stage %d is not an object", i)
		}
		stage, err := toStage(stageDoc[0].Key, stageDoc[0].Value)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		stages = append(stages, stage)
	}

	return &pipeline.Pipeline{Collection: collection, Stages: stages}, nil
}

// parseSQLResponse decodes the MySQL answer shape {"sql": "SELECT ..."}.
func parseSQLResponse(raw string) (*pipeline.SQLQuery, error) {
	cleaned, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var payload struct {
		SQL string `json:"sql"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if strings.TrimSpace(payload.SQL) == "" {
		return nil, fmt.Errorf("response is missing the sql statement")
	}

	return &pipeline.SQLQuery{SQL: strings.TrimSpace(payload.SQL)}, nil
}

func toStage(operator string, value interface{}) (pipeline.Stage, error) {
	switch operator {
	case "$match":
		filter, ok := value.(bson.D)
		if !ok {
			return nil, fmt.Errorf("$match value must be an object")
		}
		return pipeline.Match{Filter: filter}, nil

	case "$group":
		doc, ok := value.(bson.D)
		if !ok {
			return nil, fmt.Errorf("$group value must be an object")
		}
		group := pipeline.Group{}
		hasID := false
		for _, e := range doc {
			if e.Key == "_id" {
				group.ID = e.Value
				hasID = true
				continue
			}
			group.Accumulators = append(group.Accumulators, e)
		}
		if !hasID {
			return nil, fmt.Errorf("$group is missing _id")
		}
		return group, nil

	case "$sort":
		keys, ok := value.(bson.D)
		if !ok {
			return nil, fmt.Errorf("$sort value must be an object")
		}
		return pipeline.Sort{Keys: keys}, nil

	case "$limit":
		n, ok := toInt64(value)
		if !ok || n <= 0 {
			return nil, fmt.Errorf("$limit must be a positive integer")
		}
		return pipeline.Limit{N: n}, nil

	case "$lookup":
		doc, ok := value.(bson.D)
		if !ok {
			return nil, fmt.Errorf("$lookup value must be an object")
		}
		lookup := pipeline.Lookup{}
		for _, e := range doc {
			s, _ := e.Value.(string)
			switch e.Key {
			case "from":
				lookup.From = s
			case "localField":
				lookup.LocalField = s
			case "foreignField":
				lookup.ForeignField = s
			case "as":
				lookup.As = s
			}
		}
		if lookup.From == "" || lookup.As == "" {
			return nil, fmt.Errorf("$lookup is missing from/as")
		}
		return lookup, nil

	case "$unwind":
		switch t := value.(type) {
		case string:
			return pipeline.Unwind{Path: t}, nil
		case bson.D:
			unwind := pipeline.Unwind{}
			for _, e := range t {
				switch e.Key {
				case "path":
					unwind.Path, _ = e.Value.(string)
				case "preserveNullAndEmptyArrays":
					unwind.PreserveNullAndEmptyArrays, _ = e.Value.(bool)
				}
			}
			if unwind.Path == "" {
				return nil, fmt.Errorf("$unwind is missing path")
			}
			return unwind, nil
		default:
			return nil, fmt.Errorf("$unwind value must be a string or object")
		}

	case "$project":
		spec, ok := value.(bson.D)
		if !ok {
			return nil, fmt.Errorf("$project value must be an object")
		}
		return pipeline.Project{Spec: spec}, nil

	case "$count":
		field, ok := value.(string)
		if !ok || field == "" {
			return nil, fmt.Errorf("$count value must be a field name")
		}
		return pipeline.Count{Field: field}, nil

	default:
		return nil, fmt.Errorf("unsupported stage %q", operator)
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	}
	return 0, false
}

// extractJSON tolerates markdown code fences and prose around the JSON body.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return raw[start : end+1], nil
}
