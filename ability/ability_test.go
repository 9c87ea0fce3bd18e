package ability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/permit/permission"
)

func build(t *testing.T, fn func(b *RuleBuilder)) *Ability {
	t.Helper()
	b := NewRuleBuilder()
	fn(b)
	a, err := b.BuildAbility()
	require.NoError(t, err)
	return a
}

func TestCanUnconditional(t *testing.T) {
	a := build(t, func(b *RuleBuilder) {
		require.NoError(t, b.Allow("read", "article", nil, nil))
	})

	assert.True(t, a.Can("read", "article"))
	assert.False(t, a.Can("update", "article"))
	assert.False(t, a.Can("read", "comment"))
	assert.True(t, a.Cannot("delete", "article"))
}

func TestManageAndAllWildcards(t *testing.T) {
	a := build(t, func(b *RuleBuilder) {
		require.NoError(t, b.Allow(ActionManage, SubjectAll, nil, nil))
	})

	assert.True(t, a.Can("anything", "whatever"))
	assert.True(t, a.Can("read", nil))
}

func TestConditionalGrant(t *testing.T) {
	a := build(t, func(b *RuleBuilder) {
		require.NoError(t, b.Allow("read", "article", nil, map[string]any{"createdBy": 42}))
	})

	assert.True(t, a.Can("read", "article"), "type checks pass when some instance may match")
	assert.True(t, a.Can("read", Object("article", map[string]any{"createdBy": 42})))
	assert.False(t, a.Can("read", Object("article", map[string]any{"createdBy": 7})))
}

func TestLaterRulesWin(t *testing.T) {
	a := build(t, func(b *RuleBuilder) {
		require.NoError(t, b.Allow("read", "article", nil, nil))
		require.NoError(t, b.Forbid("read", "article", nil, map[string]any{"private": true}))
	})

	assert.True(t, a.Can("read", "article"))
	assert.True(t, a.Can("read", Object("article", map[string]any{"private": false})))
	assert.False(t, a.Can("read", Object("article", map[string]any{"private": true})))

	r := a.RelevantRuleFor("read", Object("article", map[string]any{"private": true}), "")
	require.NotNil(t, r)
	assert.True(t, r.Inverted)
}

func TestFieldRules(t *testing.T) {
	a := build(t, func(b *RuleBuilder) {
		require.NoError(t, b.Allow("read", "user", []string{"name", "address.*"}, nil))
		require.NoError(t, b.Forbid("read", "user", []string{"address.zip"}, nil))
	})

	assert.True(t, a.CanField("read", "user", "name"))
	assert.True(t, a.CanField("read", "user", "address.city"))
	assert.False(t, a.CanField("read", "user", "address.zip"))
	assert.False(t, a.CanField("read", "user", "password"))
	assert.True(t, a.Can("read", "user"))

	fields := a.PermittedFields("read", "user", []string{"name", "password"})
	assert.Equal(t, []string{"name"}, fields)
}

func TestPermittedFieldsFromUnrestrictedRule(t *testing.T) {
	a := build(t, func(b *RuleBuilder) {
		require.NoError(t, b.Allow("read", "user", nil, nil))
		require.NoError(t, b.Forbid("read", "user", []string{"password"}, nil))
	})

	fields := a.PermittedFields("read", "user", []string{"name", "email", "password"})
	assert.Equal(t, []string{"name", "email"}, fields)
}

func TestBuilderCanFromPermission(t *testing.T) {
	p := permission.New("update", "", permission.WithFields("title"))
	p.AndCondition(map[string]any{"createdBy": 1})

	b := NewRuleBuilder()
	require.NoError(t, b.Can(p))
	a, err := b.BuildAbility()
	require.NoError(t, err)

	rules := a.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, SubjectAll, rules[0].Subject)
	assert.Equal(t, []string{"title"}, rules[0].Fields)
	assert.True(t, a.CanField("update", Object("article", map[string]any{"createdBy": 1}), "title"))
	assert.False(t, a.CanField("update", Object("article", map[string]any{"createdBy": 2}), "title"))
}

func TestBuilderRejectsInvalidRules(t *testing.T) {
	b := NewRuleBuilder()
	assert.ErrorIs(t, b.Allow("", "article", nil, nil), ErrInvalidRule)
	assert.ErrorIs(t, b.Forbid("read", "article", nil, map[string]any{"title": map[string]any{"$containsi": "x"}}), ErrInvalidCondition)
	assert.ErrorIs(t, b.Allow("read", "article", nil, map[string]any{"age": map[string]any{"$in": 3}}), ErrInvalidCondition)

	c, err := b.Build()
	require.NoError(t, err)
	assert.False(t, c.Can("read", "article"))
}

func TestRulesAreCopied(t *testing.T) {
	cond := map[string]any{"createdBy": 1}
	a := build(t, func(b *RuleBuilder) {
		require.NoError(t, b.Allow("read", "article", nil, cond))
	})
	cond["createdBy"] = 2

	assert.True(t, a.Can("read", Object("article", map[string]any{"createdBy": 1})))
	rules := a.Rules()
	rules[0].Conditions["createdBy"] = 3
	assert.True(t, a.Can("read", Object("article", map[string]any{"createdBy": 1})))
}

func TestQuery(t *testing.T) {
	a := build(t, func(b *RuleBuilder) {
		require.NoError(t, b.Allow("read", "article", nil, map[string]any{"createdBy": 1}))
		require.NoError(t, b.Allow("read", "article", nil, map[string]any{"published": true}))
		require.NoError(t, b.Forbid("read", "article", nil, map[string]any{"archived": true}))
	})

	q, err := a.Query("read", "article")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"$or": []any{
			map[string]any{"published": true},
			map[string]any{"createdBy": 1},
		},
		"$and": []any{
			map[string]any{"$nor": []any{map[string]any{"archived": true}}},
		},
	}, q)
}

func TestQueryUnconditionalGrant(t *testing.T) {
	a := build(t, func(b *RuleBuilder) {
		require.NoError(t, b.Allow("read", "article", nil, nil))
		require.NoError(t, b.Allow("read", "article", nil, map[string]any{"createdBy": 1}))
	})

	q, err := a.Query("read", "article")
	require.NoError(t, err)
	assert.Empty(t, q)
}

func TestQueryForbidden(t *testing.T) {
	a := build(t, func(b *RuleBuilder) {
		require.NoError(t, b.Allow("read", "article", nil, nil))
		require.NoError(t, b.Forbid("read", "article", nil, nil))
	})

	_, err := a.Query("read", "article")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = a.Query("delete", "article")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUnsupportedOperatorGrantFailsClosed(t *testing.T) {
	cond := map[string]any{"title": map[string]any{"$containsi": "draft"}}
	a := build(t, func(b *RuleBuilder) {
		require.NoError(t, b.Allow("update", "article", nil, cond))
		require.NoError(t, b.Allow("update", "article", nil, map[string]any{
			"title": map[string]any{"$not": map[string]any{"$containsi": "final"}},
		}))
		require.NoError(t, b.Allow("read", "page", nil, nil))
	})

	assert.True(t, a.Can("update", "article"))
	assert.False(t, a.Can("update", Object("article", map[string]any{"title": "draft one"})))
	assert.False(t, a.Can("update", Object("article", map[string]any{"title": "other"})))
	assert.True(t, a.Can("read", "page"))

	q, err := a.Query("update", "article")
	require.NoError(t, err)
	assert.Contains(t, q["$or"], cond)
}
