package gmv

import (
	"bytes"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// CanonicalExpr is the pipeline-side rendering of the hybrid rule for one
// booking document. {$gt: [field, null]} is true only when the field exists
// and is non-null, which is exactly the "present and non-null" condition.
func CanonicalExpr() bson.D {
	return bson.D{{Key: "$cond", Value: bson.D{
		{Key: "if", Value: bson.D{{Key: "$gt", Value: bson.A{"$thirdUser.price", nil}}}},
		{Key: "then", Value: "$thirdUser.price"},
		{Key: "else", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$map", Value: bson.D{
			{Key: "input", Value: "$items"},
			{Key: "as", Value: "item"},
			{Key: "in", Value: bson.D{{Key: "$multiply", Value: bson.A{"$$item.unitPrice", "$$item.quantity"}}}},
		}}}}}},
	}}}
}

// CanonicalAccumulator is the $group accumulator form of the rule.
func CanonicalAccumulator() bson.D {
	return bson.D{{Key: "$sum", Value: CanonicalExpr()}}
}

// IsCanonicalAccumulator compares an accumulator structurally, byte-for-byte
// after BSON marshalling. Anything that is not an exact match gets substituted
// by the validator rather than trusted.
func IsCanonicalAccumulator(v interface{}) bool {
	got, err := marshalWrapped(v)
	if err != nil {
		return false
	}
	want, err := marshalWrapped(CanonicalAccumulator())
	if err != nil {
		return false
	}
	return bytes.Equal(got, want)
}

// LooksLikeGMV reports whether an accumulator expression references monetary
// booking fields, i.e. is trying to compute GMV in some shape.
func LooksLikeGMV(v interface{}) bool {
	found := false
	walkExpr(v, func(s string) {
		switch {
		case strings.Contains(s, "thirdUser.price"),
			strings.Contains(s, "unitPrice"),
			strings.Contains(s, "totalAmount"),
			s == "$price":
			found = true
		}
	})
	return found
}

func marshalWrapped(v interface{}) ([]byte, error) {
	return bson.Marshal(bson.D{{Key: "v", Value: v}})
}

func walkExpr(v interface{}, visit func(string)) {
	switch t := v.(type) {
	case string:
		visit(t)
	case bson.D:
		for _, e := range t {
			walkExpr(e.Value, visit)
		}
	case bson.M:
		for _, val := range t {
			walkExpr(val, visit)
		}
	case bson.A:
		for _, item := range t {
			walkExpr(item, visit)
		}
	case []interface{}:
		for _, item := range t {
			walkExpr(item, visit)
		}
	}
}
