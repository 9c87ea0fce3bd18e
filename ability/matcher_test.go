package ability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	now := time.Now()
	doc := map[string]any{
		"id":     int64(42),
		"status": "published",
		"score":  7.5,
		"tags":   []any{"go", "authz"},
		"author": map[string]any{"id": 1, "name": "ada"},
		"comments": []any{
			map[string]any{"by": 1, "likes": 3},
			map[string]any{"by": 2, "likes": 10},
		},
		"created": now,
	}

	tests := []struct {
		name  string
		query map[string]any
		want  bool
	}{
		{"empty", map[string]any{}, true},
		{"equality int normalised", map[string]any{"id": 42}, true},
		{"equality mismatch", map[string]any{"status": "draft"}, false},
		{"missing field", map[string]any{"nope": 1}, false},
		{"dotted path", map[string]any{"author.name": "ada"}, true},
		{"array contains", map[string]any{"tags": "go"}, true},
		{"array index", map[string]any{"tags.1": "authz"}, true},
		{"array fan out", map[string]any{"comments.by": 2}, true},
		{"$ne", map[string]any{"status": map[string]any{"$ne": "draft"}}, true},
		{"$ne missing", map[string]any{"nope": map[string]any{"$ne": 1}}, true},
		{"$gt", map[string]any{"score": map[string]any{"$gt": 7}}, true},
		{"$gte $lte range", map[string]any{"id": map[string]any{"$gte": 40, "$lte": 42}}, true},
		{"$lt fails", map[string]any{"score": map[string]any{"$lt": 7}}, false},
		{"$lt time", map[string]any{"created": map[string]any{"$lt": now.Add(time.Hour)}}, true},
		{"$in", map[string]any{"status": map[string]any{"$in": []any{"draft", "published"}}}, true},
		{"$in array attr", map[string]any{"tags": map[string]any{"$in": []string{"rust", "go"}}}, true},
		{"$nin", map[string]any{"status": map[string]any{"$nin": []any{"draft"}}}, true},
		{"$exists true", map[string]any{"author": map[string]any{"$exists": true}}, true},
		{"$exists false", map[string]any{"editor": map[string]any{"$exists": false}}, true},
		{"$regex", map[string]any{"author.name": map[string]any{"$regex": "^a"}}, true},
		{"$not", map[string]any{"score": map[string]any{"$not": map[string]any{"$gt": 10}}}, true},
		{"$elemMatch object", map[string]any{"comments": map[string]any{"$elemMatch": map[string]any{"by": 2, "likes": map[string]any{"$gt": 5}}}}, true},
		{"$elemMatch no match", map[string]any{"comments": map[string]any{"$elemMatch": map[string]any{"by": 1, "likes": map[string]any{"$gt": 5}}}}, false},
		{"$and", map[string]any{"$and": []any{map[string]any{"id": 42}, map[string]any{"status": "published"}}}, true},
		{"$or", map[string]any{"$or": []any{map[string]any{"id": 1}, map[string]any{"status": "published"}}}, true},
		{"$or none", map[string]any{"$or": []any{map[string]any{"id": 1}, map[string]any{"status": "draft"}}}, false},
		{"$nor", map[string]any{"$nor": []any{map[string]any{"id": 1}}}, true},
		{"compiled permission shape", map[string]any{
			"$and": []any{map[string]any{"$or": []any{map[string]any{"author.id": 3}, map[string]any{"author.id": 1}}}},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.query, doc))
		})
	}
}

func TestValidateConditions(t *testing.T) {
	assert.NoError(t, ValidateConditions(nil))
	assert.NoError(t, ValidateConditions(map[string]any{
		"$and": []any{map[string]any{"$or": []any{map[string]any{"a": map[string]any{"$in": []any{1}}}}}},
	}))
	assert.ErrorIs(t, ValidateConditions(map[string]any{"$where": "1"}), ErrInvalidCondition)
	assert.ErrorIs(t, ValidateConditions(map[string]any{"$or": map[string]any{}}), ErrInvalidCondition)
	assert.ErrorIs(t, ValidateConditions(map[string]any{"$or": []any{"x"}}), ErrInvalidCondition)
	assert.ErrorIs(t, ValidateConditions(map[string]any{"a": map[string]any{"$regex": "("}}), ErrInvalidCondition)
	assert.ErrorIs(t, ValidateConditions(map[string]any{"a": map[string]any{"$size": 1}}), ErrInvalidCondition)
}
